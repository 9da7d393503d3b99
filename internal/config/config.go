package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Mapping sources.
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	MappingsFile    string `mapstructure:"MAPPINGS_FILE"`
	MappingsSource  string `mapstructure:"MAPPINGS_SOURCE"`
	MappingsTable   string `mapstructure:"MAPPINGS_TABLE"`
	DuplicatePolicy string `mapstructure:"DUPLICATE_POLICY"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DBSchema        string `mapstructure:"DB_SCHEMA"`
	DBMaxConns      int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32  `mapstructure:"DB_MIN_CONNS"`

	BaseURL        string        `mapstructure:"BASE_URL"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	GeminiAPIKey        string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string        `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL       string        `mapstructure:"GEMINI_BASE_URL"`
	ExplanationTimeout  time.Duration `mapstructure:"EXPLANATION_TIMEOUT"`
	AnalysisTimeout     time.Duration `mapstructure:"ANALYSIS_TIMEOUT"`
	RedisURL            string        `mapstructure:"REDIS_URL"`
	ExplanationCacheTTL time.Duration `mapstructure:"EXPLANATION_CACHE_TTL"`

	TLSEnabled  bool   `mapstructure:"TLS_ENABLED"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"MAPPINGS_FILE", "MAPPINGS_SOURCE", "MAPPINGS_TABLE", "DUPLICATE_POLICY",
	"DATABASE_URL", "DB_SCHEMA", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"BASE_URL", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "EXPLANATION_TIMEOUT", "ANALYSIS_TIMEOUT",
	"REDIS_URL", "EXPLANATION_CACHE_TTL",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
}

// Load reads configuration from the environment. Variables in envFile are
// applied first without overriding the real environment; a missing file is
// not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAPPINGS_FILE", "mappings/namaste_icd11_mappings.json")
	v.SetDefault("MAPPINGS_SOURCE", SourceFile)
	v.SetDefault("MAPPINGS_TABLE", "namaste_icd11_mappings")
	v.SetDefault("DUPLICATE_POLICY", "reject")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("BASE_URL", "http://ayushbridge.org/fhir")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("EXPLANATION_TIMEOUT", "8s")
	v.SetDefault("ANALYSIS_TIMEOUT", "25s")
	v.SetDefault("EXPLANATION_CACHE_TTL", "24h")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDatabase reports whether mappings are read from Postgres.
func (c *Config) UsesDatabase() bool {
	return c.MappingsSource == SourceDatabase
}

// ExplanationsEnabled reports whether a model key is configured.
func (c *Config) ExplanationsEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	switch c.MappingsSource {
	case SourceFile:
		if c.MappingsFile == "" {
			return fmt.Errorf("MAPPINGS_FILE is required when MAPPINGS_SOURCE is %q", SourceFile)
		}
	case SourceDatabase:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when MAPPINGS_SOURCE is %q", SourceDatabase)
		}
		if c.MappingsTable == "" {
			return fmt.Errorf("MAPPINGS_TABLE must not be empty")
		}
	default:
		return fmt.Errorf("MAPPINGS_SOURCE must be %q or %q, got %q", SourceFile, SourceDatabase, c.MappingsSource)
	}

	switch strings.ToLower(c.DuplicatePolicy) {
	case "reject", "last-wins", "overwrite":
	default:
		return fmt.Errorf("DUPLICATE_POLICY must be \"reject\" or \"last-wins\", got %q", c.DuplicatePolicy)
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"REQUEST_TIMEOUT", c.RequestTimeout},
		{"EXPLANATION_TIMEOUT", c.ExplanationTimeout},
		{"ANALYSIS_TIMEOUT", c.AnalysisTimeout},
		{"EXPLANATION_CACHE_TTL", c.ExplanationCacheTTL},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
