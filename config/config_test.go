package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadClientConfigPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		second  string
		want    string
	}{
		{"primary wins", "http://api.example:8000/", "http://backend.example", "http://api.example:8000"},
		{"secondary when primary blank", "  ", "http://backend.example", "http://backend.example"},
		{"default when both unset", "", "", DefaultBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIBase, tt.primary)
			t.Setenv(EnvBackendURL, tt.second)
			assert.Equal(t, tt.want, LoadClientConfig().BaseURL)
		})
	}
}

func TestLoadClientConfigTimeout(t *testing.T) {
	t.Setenv("NOTES_API_TIMEOUT", "")
	assert.Equal(t, DefaultTimeout, LoadClientConfig().Timeout)

	t.Setenv("NOTES_API_TIMEOUT", "2s")
	assert.Equal(t, 2*time.Second, LoadClientConfig().Timeout)
}

func TestLoadWebConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "MUTATION_RATE_RPS", "MUTATION_RATE_BURST", "MAX_BODY_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := LoadWebConfig()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5.0, cfg.MutationRPS)
	assert.Equal(t, 20, cfg.MutationBurst)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestResolveBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, ResolveBaseURL())
	assert.Equal(t, "http://x", ResolveBaseURL("", "http://x//"))
}
