package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tekus/provider-console/internal/config"
	"github.com/tekus/provider-console/internal/draft"
)

// RunInteractiveLogin prompts for credentials, syncs the country directory
// and persists the config.
func RunInteractiveLogin(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if res := draft.Check(draft.FieldLoginEmail, email); !res.OK {
		return fmt.Errorf("%s", strings.ToLower(draft.Message(draft.FieldLoginEmail, res)))
	}

	fmt.Fprint(out, "password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimRight(password, "\r\n")
	if res := draft.Check(draft.FieldLoginPassword, password); !res.OK {
		return fmt.Errorf("%s", strings.ToLower(draft.Message(draft.FieldLoginPassword, res)))
	}

	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	logger := commandLogger(cfg, os.Stderr)
	client := cfg.Client()
	client.SetLogger(logger)

	if _, err := client.SyncCountries(ctx); err != nil {
		logger.Warn().Err(err).Msg("country sync failed")
		fmt.Fprintf(out, "warning: country sync failed: %v\n", err)
	} else {
		fmt.Fprintln(out, "country directory synced")
	}

	cfg.Email = email
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in as %s\n", email)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// LoginCmd returns the `tekus login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and sync the country directory",
		RunE: func(c *cobra.Command, _ []string) error {
			return RunInteractiveLogin(contextOrBackground(c.Context()), c.InOrStdin(), c.OutOrStdout())
		},
	}
}
