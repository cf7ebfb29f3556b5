package main

import (
	"context"
	"fmt"

	"github.com/lokalku/lokalku"
	"github.com/lokalku/lokalku/anthropic"
	"github.com/lokalku/lokalku/config"
	"github.com/lokalku/lokalku/gemini"
	lkhttp "github.com/lokalku/lokalku/http"
)

// resolveProvider constructs the provider named by cfg. Model providers
// need an API key; the http provider needs an endpoint.
func resolveProvider(ctx context.Context, cfg *config.Config) (lokalku.Provider, error) {
	key := cfg.ProviderKey()
	switch cfg.Provider {
	case config.ProviderGemini:
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key flag or environment variable)")
		}
		var opts []gemini.Option
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	case config.ProviderAnthropic:
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key flag or environment variable)")
		}
		var opts []anthropic.Option
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		return anthropic.New(key, opts...), nil
	case config.ProviderHTTP:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("endpoint not set (use --endpoint flag or LOKALKU_ENDPOINT)")
		}
		var opts []lkhttp.Option
		if key != "" {
			opts = append(opts, lkhttp.WithAPIKey(key))
		}
		return lkhttp.NewClient(cfg.Endpoint, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be %q, %q or %q", cfg.Provider,
			config.ProviderGemini, config.ProviderAnthropic, config.ProviderHTTP)
	}
}
