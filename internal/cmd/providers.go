package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tekus/provider-console/internal/api"
)

// ProvidersCmd returns the `tekus providers` command group.
func ProvidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List and delete providers",
	}
	cmd.AddCommand(providersListCmd())
	cmd.AddCommand(providersDeleteCmd())
	return cmd
}

func providersListCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List providers with their services",
		RunE: func(c *cobra.Command, _ []string) error {
			_, client, err := clientFor(c.ErrOrStderr())
			if err != nil {
				return err
			}
			providers, err := client.ListProviders(contextOrBackground(c.Context()))
			if err != nil {
				return fmt.Errorf("list providers: %w", err)
			}
			printProviders(c.OutOrStdout(), providers, filter)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "match name, email, NIT or service name")
	return cmd
}

func printProviders(out io.Writer, providers []api.Provider, filter string) {
	shown := 0
	for _, p := range providers {
		if !p.Matches(filter) {
			continue
		}
		shown++
		fmt.Fprintf(out, "  #%d  %s  nit:%s  %s\n", p.ID, p.Name, p.NIT, p.Email)
		for _, f := range p.CustomFields {
			fmt.Fprintf(out, "      %s: %s\n", f.FieldName, f.FieldValue)
		}
		for _, s := range p.Services {
			codes := make([]string, 0, len(s.Countries))
			for _, c := range s.Countries {
				codes = append(codes, c.Key())
			}
			fmt.Fprintf(out, "      - %s  %s/h  [%s]\n", s.Name, api.FormatUSD(s.ValuePerHourUSD), strings.Join(codes, " "))
		}
	}
	if shown == 0 {
		fmt.Fprintln(out, "no providers found")
	}
}

func providersDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid provider id %q", args[0])
			}
			if !yes {
				fmt.Fprintf(c.OutOrStdout(), "delete provider #%d? [y/N]: ", id)
				answer, _ := bufio.NewReader(c.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(c.OutOrStdout(), "cancelled")
					return nil
				}
			}
			_, client, err := clientFor(c.ErrOrStderr())
			if err != nil {
				return err
			}
			resp, err := client.DeleteProvider(contextOrBackground(c.Context()), id)
			if err != nil {
				return fmt.Errorf("delete provider: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), resp.Message)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
