package main

import (
	"context"
	"testing"

	"github.com/lokalku/lokalku/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProvider_Gemini(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.APIKey = "gk-test"
	cfg.Model = "gemini-2.5-pro"
	p, err := resolveProvider(context.Background(), &cfg)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestResolveProvider_GeminiMissingKey(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	_, err := resolveProvider(context.Background(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY not set")
}

func TestResolveProvider_Anthropic(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Provider = config.ProviderAnthropic
	cfg.AnthropicAPIKey = "sk-ant"
	p, err := resolveProvider(context.Background(), &cfg)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestResolveProvider_AnthropicMissingKey(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Provider = config.ProviderAnthropic
	cfg.GeminiAPIKey = "gk-wrong-provider"
	_, err := resolveProvider(context.Background(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY not set")
}

func TestResolveProvider_HTTP(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Provider = config.ProviderHTTP
	cfg.Endpoint = "http://127.0.0.1:8080"
	p, err := resolveProvider(context.Background(), &cfg)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestResolveProvider_HTTPMissingEndpoint(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Provider = config.ProviderHTTP
	_, err := resolveProvider(context.Background(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint not set")
}

func TestResolveProvider_UnknownProvider(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Provider = "openai"
	_, err := resolveProvider(context.Background(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
