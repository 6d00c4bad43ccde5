package config

import (
	"strings"
	"time"

	"notesweb/utils"
)

const (
	DefaultBaseURL = "http://localhost:3001"
	DefaultTimeout = 15 * time.Second
	DefaultPort    = "3000"
)

// Base URL sources, highest precedence first.
const (
	EnvAPIBase    = "NOTES_API_BASE"
	EnvBackendURL = "NOTES_BACKEND_URL"
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type WebConfig struct {
	Port          string
	LogLevel      string
	LogFormat     string
	MutationRPS   float64
	MutationBurst int
	MaxBodyBytes  int64
}

type Config struct {
	Client ClientConfig
	Web    WebConfig
}

// Load reads the configuration from the environment. It is meant to run once
// at startup; the result is passed to constructors.
func Load() Config {
	return Config{
		Client: LoadClientConfig(),
		Web:    LoadWebConfig(),
	}
}

func LoadClientConfig() ClientConfig {
	baseURL, _ := utils.LookupFirst(EnvAPIBase, EnvBackendURL)
	return ClientConfig{
		BaseURL: ResolveBaseURL(baseURL),
		Timeout: utils.GetEnvAsDuration("NOTES_API_TIMEOUT", DefaultTimeout),
	}
}

func LoadWebConfig() WebConfig {
	return WebConfig{
		Port:          utils.GetEnvAsString("PORT", DefaultPort),
		LogLevel:      utils.GetEnvAsString("LOG_LEVEL", "info"),
		LogFormat:     utils.GetEnvAsString("LOG_FORMAT", "text"),
		MutationRPS:   utils.GetEnvAsFloat("MUTATION_RATE_RPS", 5),
		MutationBurst: utils.GetEnvAsInt("MUTATION_RATE_BURST", 20),
		MaxBodyBytes:  utils.GetEnvAsInt64("MAX_BODY_BYTES", 1<<20),
	}
}

// ResolveBaseURL returns the first non-blank candidate without its trailing
// slash, or DefaultBaseURL.
func ResolveBaseURL(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return strings.TrimRight(c, "/")
		}
	}
	return DefaultBaseURL
}
