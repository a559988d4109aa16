package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/figmachat")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("AUTH_DEV_HEADER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 10*time.Minute, cfg.Figma.CacheTTL)
	assert.Equal(t, 4, cfg.Demo.MaxConcurrency)
	assert.True(t, cfg.Firebase.DevHeader)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/figmachat")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "/secrets/firebase.json")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEMO_TIMEOUT", "45s")
	t.Setenv("DEMO_MAX_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 45*time.Second, cfg.Demo.Timeout)
	assert.Equal(t, 4, cfg.Demo.MaxConcurrency)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{DSN: "postgres://x"},
			AI:       AIConfig{Provider: "gemini", GeminiAPIKey: "k"},
			Firebase: FirebaseConfig{DevHeader: true},
			Demo:     DemoConfig{MaxConcurrency: 1},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing dsn", func(t *testing.T) {
		c := valid()
		c.Database.DSN = ""
		assert.EqualError(t, c.Validate(), "DB_DSN is required")
	})

	t.Run("unknown provider", func(t *testing.T) {
		c := valid()
		c.AI.Provider = "llama"
		assert.Error(t, c.Validate())
	})

	t.Run("auth must be configured", func(t *testing.T) {
		c := valid()
		c.Firebase.DevHeader = false
		assert.Error(t, c.Validate())
	})
}
