package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tekus/provider-console/internal/directory"
)

// CountriesCmd returns the `tekus countries` command group.
func CountriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "Inspect and sync the country directory",
	}
	cmd.AddCommand(countriesListCmd())
	cmd.AddCommand(countriesSyncCmd())
	return cmd
}

func countriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the country directory",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, client, err := clientFor(c.ErrOrStderr())
			if err != nil {
				return err
			}
			loader := directory.NewLoader(client, commandLogger(cfg, c.ErrOrStderr()))
			listing := loader.Countries(contextOrBackground(c.Context()))
			out := c.OutOrStdout()
			for _, country := range listing.Entries {
				fmt.Fprintf(out, "  %s  %-20s %s\n", country.Key(), country.Name, directory.Flag(country))
			}
			fmt.Fprintf(out, "%d countries (%s)\n", len(listing.Entries), listing.Source)
			return nil
		},
	}
}

func countriesSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ask the backend to refresh its country directory",
		RunE: func(c *cobra.Command, _ []string) error {
			_, client, err := clientFor(c.ErrOrStderr())
			if err != nil {
				return err
			}
			resp, err := client.SyncCountries(contextOrBackground(c.Context()))
			if err != nil {
				return fmt.Errorf("sync countries: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), resp.Message)
			return nil
		},
	}
}
