package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayushbridge/ayushbridge/internal/config"
	"github.com/ayushbridge/ayushbridge/internal/mapping"
	"github.com/ayushbridge/ayushbridge/internal/platform/db"
)

// storeSource builds mapping stores from the configured source. It is used
// once at startup and again on every reload.
type storeSource struct {
	file   string
	table  string
	pool   *pgxpool.Pool
	policy mapping.DuplicatePolicy
}

func newStoreSource(ctx context.Context, cfg *config.Config) (*storeSource, error) {
	policy, err := mapping.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	src := &storeSource{file: cfg.MappingsFile, policy: policy}
	if !cfg.UsesDatabase() {
		return src, nil
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
		AppName:  "ayushbridge",
	})
	if err != nil {
		return nil, err
	}
	src.pool = pool
	src.table = cfg.MappingsTable
	if cfg.DBSchema != "" && cfg.DBSchema != db.DefaultSchema {
		src.table = cfg.DBSchema + "." + cfg.MappingsTable
	}
	return src, nil
}

// Load reads the whole source and builds a new Store.
func (s *storeSource) Load(ctx context.Context) (*mapping.Store, error) {
	opts := []mapping.LoadOption{mapping.WithDuplicatePolicy(s.policy)}
	if s.pool != nil {
		store, err := mapping.LoadTable(ctx, s.pool, s.table, opts...)
		if err != nil {
			return nil, fmt.Errorf("load mappings from %s: %w", s.table, err)
		}
		return store, nil
	}
	return mapping.LoadFile(s.file, opts...)
}

// Describe names the source for log lines.
func (s *storeSource) Describe() string {
	if s.pool != nil {
		return "table " + s.table
	}
	return "file " + s.file
}

// Pool returns the database pool, or nil for a file source.
func (s *storeSource) Pool() *pgxpool.Pool { return s.pool }

func (s *storeSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
