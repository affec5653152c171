package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "smtp", cfg.EmailProvider)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.APIURL)
	assert.Equal(t, "mistralai/mistral-7b-instruct", cfg.APIModel)

	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.UseTLS)
	assert.False(t, cfg.SMTP.UseSSL)
	assert.Equal(t, 30*time.Second, cfg.SMTP.Timeout)

	assert.False(t, cfg.APIConfigured())
	assert.False(t, cfg.SMTPConfigured())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(envFrom(map[string]string{
		"SERVER_PORT":    "9090",
		"EMAIL_API_KEY":  "sk-test",
		"EMAIL_API_URL":  "https://api.anthropic.com/v1/messages",
		"SMTP_HOST":      "smtp.example.com",
		"SMTP_PORT":      "465",
		"SMTP_USERNAME":  "mailer@example.com",
		"SMTP_PASSWORD":  "secret",
		"EMAIL_FROM":     "mailer@example.com",
		"SMTP_USE_TLS":   "false",
		"SMTP_USE_SSL":   "true",
		"SMTP_TIMEOUT":   "10",
		"EMAIL_PROVIDER": "postmark",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.APIConfigured())
	assert.True(t, cfg.SMTPConfigured())
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.UseTLS)
	assert.True(t, cfg.SMTP.UseSSL)
	assert.Equal(t, 10*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, "postmark", cfg.EmailProvider)
}

func TestLoad_BadValuesKeepDefaults(t *testing.T) {
	cfg, err := Load(envFrom(map[string]string{
		"SERVER_PORT":  "not-a-number",
		"SMTP_USE_TLS": "maybe",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.SMTP.UseTLS)
}

func TestLoad_InvalidProvider(t *testing.T) {
	_, err := Load(envFrom(map[string]string{"EMAIL_PROVIDER": "carrier-pigeon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_PROVIDER")
}

func TestDatabaseURL(t *testing.T) {
	cfg, err := Load(envFrom(map[string]string{
		"DB_USER":     "courier",
		"DB_PASSWORD": "pw",
		"DB_HOSTNAME": "db.internal",
		"DB_PORT":     "5433",
		"DB_NAME":     "courier",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgresql://courier:pw@db.internal:5433/courier", cfg.DatabaseURL())
}

func TestMaskedAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "..."},
		{"sk-verysecretkey12345", "sk-verys..."},
	}
	for _, tt := range tests {
		cfg := &Settings{APIKey: tt.key}
		assert.Equal(t, tt.want, cfg.MaskedAPIKey())
	}
}
