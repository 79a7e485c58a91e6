package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	WordSourceEmbedded = "embedded"
	WordSourceCSV      = "csv"
	WordSourcePostgres = "postgres"
)

type Config struct {
	Port           int
	DatabaseURL    string
	AllowedOrigins []string
	LogLevel       string
	LogPretty      bool
	WordSource     string
	WordsFile      string
	PublicURL      string
	EventRate      float64
	EventBurst     int
	PersistTimeout time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function so tests can feed values
// without touching the process environment.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		DatabaseURL: get("DB_URL", ""),
		LogLevel:    get("LOG_LEVEL", "info"),
		WordSource:  strings.ToLower(get("WORD_SOURCE", WordSourceEmbedded)),
		WordsFile:   get("WORDS_FILE", ""),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(get("PORT", "3001")); err != nil || cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid PORT %q", get("PORT", ""))
	}
	if cfg.LogPretty, err = strconv.ParseBool(get("LOG_PRETTY", "false")); err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}
	if cfg.EventRate, err = strconv.ParseFloat(get("EVENT_RATE", "10"), 64); err != nil || cfg.EventRate <= 0 {
		return nil, fmt.Errorf("invalid EVENT_RATE %q", get("EVENT_RATE", ""))
	}
	if cfg.EventBurst, err = strconv.Atoi(get("EVENT_BURST", "20")); err != nil || cfg.EventBurst <= 0 {
		return nil, fmt.Errorf("invalid EVENT_BURST %q", get("EVENT_BURST", ""))
	}
	if cfg.PersistTimeout, err = time.ParseDuration(get("PERSIST_TIMEOUT", "5s")); err != nil || cfg.PersistTimeout <= 0 {
		return nil, fmt.Errorf("invalid PERSIST_TIMEOUT %q", get("PERSIST_TIMEOUT", ""))
	}

	for _, origin := range strings.Split(get("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	cfg.PublicURL = strings.TrimRight(get("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")

	switch cfg.WordSource {
	case WordSourceEmbedded, WordSourcePostgres:
	case WordSourceCSV:
		if cfg.WordsFile == "" {
			return nil, fmt.Errorf("WORD_SOURCE=csv requires WORDS_FILE")
		}
	default:
		return nil, fmt.Errorf("unknown WORD_SOURCE %q", cfg.WordSource)
	}
	if cfg.WordSource == WordSourcePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("WORD_SOURCE=postgres requires DB_URL")
	}

	return cfg, nil
}

// AllowsOrigin reports whether origin may talk to the server. "*" allows all.
func (c *Config) AllowsOrigin(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
