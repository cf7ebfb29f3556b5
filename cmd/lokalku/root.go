package main

import (
	"fmt"
	"io"
	"time"

	"github.com/lokalku/lokalku/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by all subcommands once flags and config are
// resolved.
type app struct {
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger

	// Flag values; applied over the loaded config only when set.
	provider    string
	model       string
	apiKey      string
	endpoint    string
	timeout     time.Duration
	storage     string
	storagePath string
	redisURL    string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "lokalku",
		Short:         "Chat with the LokalKu local-business assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Path to config file (default ~/.lokalku/config.yaml)")
	f.StringVar(&a.provider, "provider", "", "Provider: gemini, anthropic or http")
	f.StringVar(&a.model, "model", "", "Model ID (gemini or anthropic)")
	f.StringVar(&a.apiKey, "api-key", "", "API key (overrides GEMINI_API_KEY and ANTHROPIC_API_KEY)")
	f.StringVar(&a.endpoint, "endpoint", "", "Gateway URL (http provider)")
	f.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout")
	f.StringVar(&a.storage, "storage", "", "Session storage: memory, file, sqlite or redis")
	f.StringVar(&a.storagePath, "storage-path", "", "Directory (file) or database file (sqlite)")
	f.StringVar(&a.redisURL, "redis-url", "", "Redis URL (redis storage)")
	f.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("provider", &cfg.Provider, a.provider)
	set("model", &cfg.Model, a.model)
	set("api-key", &cfg.APIKey, a.apiKey)
	set("endpoint", &cfg.Endpoint, a.endpoint)
	set("storage", &cfg.Storage.Backend, a.storage)
	set("storage-path", &cfg.Storage.Path, a.storagePath)
	set("redis-url", &cfg.Storage.URL, a.redisURL)
	set("log-level", &cfg.LogLevel, a.logLevel)
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}
