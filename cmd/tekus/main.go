package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tekus/provider-console/internal/cmd"
	"github.com/tekus/provider-console/internal/config"
	"github.com/tekus/provider-console/internal/logging"
	"github.com/tekus/provider-console/internal/ui"
)

var errNotInteractive = errors.New("the console needs an interactive terminal; use 'tekus providers' or 'tekus countries' in scripts")

func main() {
	root := &cobra.Command{
		Use:   "tekus",
		Short: "Tekus - provider administration console",
		Long:  "Tekus console: browse, create and edit providers with their services and countries.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.ProvidersCmd())
	root.AddCommand(cmd.CountriesCmd())
	root.AddCommand(cmd.ServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI() error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
		return errNotInteractive
	}

	logFile, err := logging.OpenFile(config.Dir())
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.New(cfg.LogLevel, logFile).With().Str("component", "tui").Logger()

	client := cfg.Client()
	client.SetLogger(logger)
	app := ui.NewApp(client, cfg, logger)

	logger.Info().Str("api_url", cfg.APIURL).Msg("console started")
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
