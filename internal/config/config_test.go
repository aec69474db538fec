package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"NEWEBPAY_MERCHANT_ID":  "MS100000001",
		"NEWEBPAY_HASH_KEY":     "abcdefghijklmnopqrstuvwxyz012345",
		"NEWEBPAY_HASH_IV":      "0123456789abcdef",
		"ANALYSIS_WEBHOOK_URL":  "http://analysis.local/webhook",
		"BACKEND_URL":           "https://api.example.com/",
		"FRONTEND_URL":          "https://app.example.com/",
		"ORDER_AMOUNT":          "250",
		"ANALYSIS_TIMEOUT":      "30s",
		"NEWEBPAY_TRUST_RETURN": "true",
	}
}

func TestParseAndResolve(t *testing.T) {
	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{Environment: requiredEnv()})
	require.NoError(t, err)

	cfg.Resolve()

	assert.Equal(t, "MS100000001", cfg.Newebpay.MerchantID)
	assert.Equal(t, "2.0", cfg.Newebpay.Version)
	assert.True(t, cfg.Newebpay.TrustReturn)
	assert.Equal(t, "https://api.example.com/api/payment-callback", cfg.Newebpay.NotifyURL)
	assert.Equal(t, "https://api.example.com/api/payment-return", cfg.Newebpay.ReturnURL)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, int64(250), cfg.Order.Amount)
	assert.Equal(t, "test@example.com", cfg.Order.DefaultEmail)
	assert.Equal(t, 30*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}

func TestResolveKeepsExplicitURLs(t *testing.T) {
	vars := requiredEnv()
	vars["NEWEBPAY_NOTIFY_URL"] = "https://hooks.example.com/notify"

	cfg := &Config{}
	require.NoError(t, env.ParseWithOptions(cfg, env.Options{Environment: vars}))
	cfg.Resolve()

	assert.Equal(t, "https://hooks.example.com/notify", cfg.Newebpay.NotifyURL)
	assert.Equal(t, "https://api.example.com/api/payment-return", cfg.Newebpay.ReturnURL)
}

func TestParseMissingSecrets(t *testing.T) {
	vars := requiredEnv()
	delete(vars, "NEWEBPAY_HASH_KEY")

	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{Environment: vars})
	require.Error(t, err)
}
