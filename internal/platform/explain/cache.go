package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const cacheKeyPrefix = "ayushbridge:explain:"

// NewRedisClient connects to the Redis server at rawURL
// (redis://[:password@]host:port/db) and pings it.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// CachedExplainer stores generated text in Redis so repeated requests for the
// same mapping and language skip the model. Cache failures are logged and
// otherwise ignored.
type CachedExplainer struct {
	next   Explainer
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedExplainer wraps next with a Redis cache.
func NewCachedExplainer(next Explainer, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedExplainer {
	return &CachedExplainer{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedExplainer) ExplainMapping(ctx context.Context, req MappingExplanationRequest) (string, error) {
	req = req.withDefaults()
	key := cacheKey("mapping",
		req.Language, req.SourceSystemName, req.SourceCode, req.SourceDisplay,
		req.TargetSystemName, req.TargetCode, req.TargetDisplay)
	return c.cached(ctx, key, func() (string, error) {
		return c.next.ExplainMapping(ctx, req)
	})
}

func (c *CachedExplainer) AnalyzeDisease(ctx context.Context, req DiseaseAnalysisRequest) (string, error) {
	key := cacheKey("analysis",
		req.Language, req.TraditionalSystem, strings.ToLower(req.Condition),
		strconv.FormatBool(req.IncludeMedications))
	return c.cached(ctx, key, func() (string, error) {
		return c.next.AnalyzeDisease(ctx, req)
	})
}

// Ping checks the wrapped explainer only; Redis is optional.
func (c *CachedExplainer) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

func (c *CachedExplainer) cached(ctx context.Context, key string, fill func() (string, error)) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return val, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Msg("explanation cache read failed")
	}

	text, err := fill()
	if err != nil || text == "" {
		return text, err
	}
	if err := c.rdb.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("explanation cache write failed")
	}
	return text, nil
}

func cacheKey(kind string, fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return cacheKeyPrefix + kind + ":" + hex.EncodeToString(h.Sum(nil))
}
