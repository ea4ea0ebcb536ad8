package config

import (
	"errors"
	"testing"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("PGSQL_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.15", cfg.GSTRate.String())
	assert.Equal(t, "Bank", cfg.BankAccountName)
	assert.Equal(t, "30-M", cfg.RateLimit)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("GST_RATE", "0.125")
	t.Setenv("BANK_ACCOUNT_NAME", "ANZ Business")
	t.Setenv("IS_PRODUCTION", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.125", cfg.GSTRate.String())
	assert.Equal(t, "ANZ Business", cfg.BankAccountName)
	assert.True(t, cfg.IsProduction)
}

func TestLoadConfig_BadRate(t *testing.T) {
	viper.Reset()
	t.Setenv("GST_RATE", "fifteen")

	_, err := LoadConfig()
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))

	viper.Reset()
	t.Setenv("GST_RATE", "-0.15")
	_, err = LoadConfig()
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}
