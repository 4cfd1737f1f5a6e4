// Package config loads application configuration from environment variables
// and an optional .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

// CredentialEnv is the variable holding the hosted model API key.
const CredentialEnv = "GROQ_API_KEY"

// DefaultEnvFile is read when present in the working directory.
const DefaultEnvFile = ".env"

// Config holds the application configuration.
type Config struct {
	APIKey         model.Credential
	GroqBaseURL    string
	DefaultModel   model.ModelID
	ListenAddr     string
	DBPath         string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	SecretKey      []byte // nil when CODELENS_SECRET_KEY is unset.
	LogLevel       slog.Level
	LogFormat      string
}

// HasCredential reports whether the API key is configured. Without it the
// server still starts but refuses every analysis.
func (c *Config) HasCredential() bool {
	return c.APIKey.Present()
}

// Load reads configuration from the process environment, falling back to
// values in ./.env. The environment always wins over the file.
func Load() (*Config, error) {
	return LoadFile(DefaultEnvFile)
}

// LoadFile is Load with an explicit settings file path. A missing file is not
// an error. GROQ_API_KEY is optional; every CODELENS_ variable has a default:
// CODELENS_LISTEN_ADDR (127.0.0.1:8080), CODELENS_DB_PATH (codelens.db),
// CODELENS_GROQ_BASE_URL (https://api.groq.com/openai/v1),
// CODELENS_DEFAULT_MODEL (llama-3.3-70b-versatile), CODELENS_SESSION_TTL (2h),
// CODELENS_MAX_UPLOAD_BYTES (1 MiB), CODELENS_LOG_LEVEL (info),
// CODELENS_LOG_FORMAT (text). CODELENS_SECRET_KEY must be 64 hex characters
// when set.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("CODELENS_LISTEN_ADDR", "127.0.0.1:8080")
	v.SetDefault("CODELENS_DB_PATH", "codelens.db")
	v.SetDefault("CODELENS_GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("CODELENS_DEFAULT_MODEL", string(model.DefaultModel))
	v.SetDefault("CODELENS_SESSION_TTL", "2h")
	v.SetDefault("CODELENS_MAX_UPLOAD_BYTES", "1048576")
	v.SetDefault("CODELENS_LOG_LEVEL", "info")
	v.SetDefault("CODELENS_LOG_FORMAT", "text")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read settings file %s: %w", path, err)
		}
	}

	defaultModel, err := model.ParseModelID(v.GetString("CODELENS_DEFAULT_MODEL"))
	if err != nil {
		return nil, fmt.Errorf("CODELENS_DEFAULT_MODEL: %w", err)
	}

	rawTTL := v.GetString("CODELENS_SESSION_TTL")
	ttl, err := time.ParseDuration(rawTTL)
	if err != nil {
		return nil, fmt.Errorf("CODELENS_SESSION_TTL has invalid duration %q: %w", rawTTL, err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("CODELENS_SESSION_TTL must be positive, got %s", ttl)
	}

	rawMax := v.GetString("CODELENS_MAX_UPLOAD_BYTES")
	maxUpload, err := strconv.ParseInt(rawMax, 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("CODELENS_MAX_UPLOAD_BYTES must be a positive integer, got %q", rawMax)
	}

	var secretKey []byte
	if raw := v.GetString("CODELENS_SECRET_KEY"); raw != "" {
		secretKey, err = hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("CODELENS_SECRET_KEY is not valid hex: %w", err)
		}
		if len(secretKey) != 32 {
			return nil, fmt.Errorf("CODELENS_SECRET_KEY must decode to 32 bytes, got %d", len(secretKey))
		}
	}

	level, err := parseLevel(v.GetString("CODELENS_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(v.GetString("CODELENS_LOG_FORMAT"))
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("CODELENS_LOG_FORMAT must be text or json, got %q", format)
	}

	return &Config{
		APIKey:         model.Credential(strings.TrimSpace(v.GetString(CredentialEnv))),
		GroqBaseURL:    strings.TrimRight(v.GetString("CODELENS_GROQ_BASE_URL"), "/"),
		DefaultModel:   defaultModel,
		ListenAddr:     v.GetString("CODELENS_LISTEN_ADDR"),
		DBPath:         v.GetString("CODELENS_DB_PATH"),
		SessionTTL:     ttl,
		MaxUploadBytes: maxUpload,
		SecretKey:      secretKey,
		LogLevel:       level,
		LogFormat:      format,
	}, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("CODELENS_LOG_LEVEL has invalid level %q: %w", raw, err)
	}
	return level, nil
}
