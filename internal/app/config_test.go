package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.AppAddr)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 30, cfg.JWTCookieExpire)
	assert.EqualValues(t, 1000000, cfg.MaxFileUpload)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.RateWindow)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.UsesS3())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"JWT_SECRET": " "},
		"unknown env":    {"JWT_SECRET": "x", "APP_ENV": "staging"},
		"zero rate":      {"JWT_SECRET": "x", "RATE_LIMIT": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("S3_BUCKET", "photos")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.UsesS3())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestInTestMode(t *testing.T) {
	t.Setenv(TestModeEnv, "1")
	assert.True(t, InTestMode())
	t.Setenv(TestModeEnv, "")
	assert.False(t, InTestMode())
}
