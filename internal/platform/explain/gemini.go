package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.5-flash"
)

// ErrMissingAPIKey is returned by NewGeminiClient without an API key.
var ErrMissingAPIKey = errors.New("gemini api key is required")

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	Timeout      time.Duration // per HTTP attempt
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       zerolog.Logger
}

// GeminiClient talks to the Gemini generateContent REST endpoint.
type GeminiClient struct {
	http     *retryablehttp.Client
	endpoint string
	apiKey   string
	logger   zerolog.Logger
}

// Generation settings. Explanations are short and low temperature; the
// analysis asks for several hundred words and gets a larger budget.
var (
	explanationConfig = generationConfig{Temperature: 0.3, TopP: 0.8, TopK: 40, MaxOutputTokens: 500, ResponseMimeType: "text/plain"}
	analysisConfig    = generationConfig{Temperature: 0.3, TopP: 0.8, TopK: 40, MaxOutputTokens: 2048, ResponseMimeType: "text/plain"}
	pingConfig        = generationConfig{Temperature: 0, MaxOutputTokens: 5, ResponseMimeType: "text/plain"}
)

var safetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// NewGeminiClient builds a client with retries on 429 and 5xx responses.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = cfg.RetryWaitMax
	}
	retryClient.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	retryClient.Logger = retryLogger{cfg.Logger}

	return &GeminiClient{
		http:     retryClient,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/v1beta/models/" + cfg.Model + ":generateContent",
		apiKey:   cfg.APIKey,
		logger:   cfg.Logger,
	}, nil
}

// ExplainMapping asks the model for a short explanation of one mapping.
func (g *GeminiClient) ExplainMapping(ctx context.Context, req MappingExplanationRequest) (string, error) {
	prompt, err := explanationPrompt(req)
	if err != nil {
		return "", fmt.Errorf("build explanation prompt: %w", err)
	}
	text, err := g.generate(ctx, prompt, explanationConfig)
	if err != nil {
		return "", fmt.Errorf("explain %s -> %s: %w", req.SourceCode, req.TargetCode, err)
	}
	return text, nil
}

// AnalyzeDisease asks the model for a structured analysis of a condition.
func (g *GeminiClient) AnalyzeDisease(ctx context.Context, req DiseaseAnalysisRequest) (string, error) {
	prompt, err := analysisPrompt(req)
	if err != nil {
		return "", fmt.Errorf("build analysis prompt: %w", err)
	}
	text, err := g.generate(ctx, prompt, analysisConfig)
	if err != nil {
		return "", fmt.Errorf("analyze %q: %w", req.Condition, err)
	}
	return text, nil
}

// Ping sends a trivial prompt and expects "OK" back.
func (g *GeminiClient) Ping(ctx context.Context) error {
	text, err := g.generate(ctx, pingPrompt, pingConfig)
	if err != nil {
		return err
	}
	if !strings.Contains(text, "OK") {
		return fmt.Errorf("unexpected ping reply %q", text)
	}
	return nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *GeminiClient) generate(ctx context.Context, prompt string, cfg generationConfig) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
		SafetySettings:   safetySettings,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Error.Message != "" {
			return "", fmt.Errorf("gemini returned %d %s: %s", resp.StatusCode, ae.Error.Status, ae.Error.Message)
		}
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		g.logger.Warn().Str("block_reason", out.PromptFeedback.BlockReason).Msg("prompt blocked by model")
		return "", nil
	}

	var b strings.Builder
	for _, c := range out.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		g.logger.Warn().Msg("empty response from model")
	}
	return text, nil
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.log.Error().Fields(kv).Msg(msg) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.log.Debug().Fields(kv).Msg(msg) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.log.Trace().Fields(kv).Msg(msg) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.log.Warn().Fields(kv).Msg(msg) }
