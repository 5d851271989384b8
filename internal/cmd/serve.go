package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tekus/provider-console/internal/backend"
	"github.com/tekus/provider-console/internal/config"
)

// APIPrefix is where the emulator mounts the backend routes, matching the
// default client base URL.
const APIPrefix = "/api"

// ServeCmd returns the `tekus serve` command.
func ServeCmd() *cobra.Command {
	var (
		addr string
		db   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local provider backend backed by sqlite",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Resolve()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(contextOrBackground(c.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			logger := commandLogger(cfg, c.ErrOrStderr()).With().Str("component", "backend").Logger()
			return Serve(ctx, ln, db, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5080", "listen address")
	cmd.Flags().StringVar(&db, "db", filepath.Join(config.Dir(), "backend.db"), "sqlite database path")
	return cmd
}

// Serve runs the emulator on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, dbPath string, logger zerolog.Logger) error {
	store, err := backend.NewStore(dbPath)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer store.Close()

	server := backend.NewServer(store, logger)
	mux := http.NewServeMux()
	mux.Handle(APIPrefix+"/", http.StripPrefix(APIPrefix, server.Handler()))
	mux.Handle("/metrics", server.Handler())

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info().Str("addr", ln.Addr().String()).Str("db", dbPath).Msg("backend listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("backend stopped")
	return nil
}
