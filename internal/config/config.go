package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the Namesmith server.
type Config struct {
	DBPath         string
	ServerPort     int
	LogLevel       string
	LLMEndpoint    string
	LLMAPIKey      string
	LLMModel       string
	AllowedOrigins []string
	SentryDSN      string
	Environment    string
	ShutdownGrace  time.Duration
}

const (
	defaultDBPath        = "./data/namesmith.db"
	defaultServerPort    = 8080
	defaultLogLevel      = "info"
	defaultLLMModel      = "gpt-4o-mini"
	defaultEnvironment   = "development"
	defaultShutdownGrace = 10 * time.Second
)

// Origins browsers use when the frontend runs locally. Only appended outside
// production and exempt from the HTTPS requirement.
var devOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
		LLMEndpoint:   os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		LLMModel:      getEnv("LLM_MODEL", defaultLLMModel),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Environment:   getEnv("ENV", defaultEnvironment),
		ShutdownGrace: defaultShutdownGrace,
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	origins, err := parseAllowedOrigins(os.Getenv("ALLOWED_ORIGINS"), cfg.Environment)
	if err != nil {
		return nil, eris.Wrap(err, "parsing ALLOWED_ORIGINS")
	}
	cfg.AllowedOrigins = origins

	return cfg, nil
}

// Validate checks the values that must be present before serving traffic.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		return eris.New("LLM_API_KEY is required")
	}
	if len(c.AllowedOrigins) == 0 {
		return eris.New("ALLOWED_ORIGINS must list at least one origin")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw, environment string) ([]string, error) {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if !strings.HasPrefix(origin, "https://") {
			return nil, eris.Errorf("origin %s must use HTTPS", origin)
		}
		origins = append(origins, origin)
	}

	if environment != "production" {
		origins = append(origins, devOrigins...)
	}

	return origins, nil
}
