package cmd

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/config"
	"github.com/tekus/provider-console/internal/logging"
)

func commandLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	return logging.NewConsole(cfg.LogLevel, w).With().Str("component", "cli").Logger()
}

// clientFor resolves the config and returns a client logging to stderr.
func clientFor(stderr io.Writer) (*config.Config, *api.Client, error) {
	cfg, err := config.Resolve()
	if err != nil {
		return nil, nil, err
	}
	client := cfg.Client()
	client.SetLogger(commandLogger(cfg, stderr))
	return cfg, client, nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
