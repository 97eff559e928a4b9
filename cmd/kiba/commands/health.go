package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmi-labs/kiba/internal/api"
	"github.com/kmi-labs/kiba/internal/config"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the procurement backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(projectDir)
			if err != nil {
				return err
			}
			client := api.New(cfg.BaseURL(), cfg.Timeout())
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout())
			defer cancel()
			if err := client.Health(ctx); err != nil {
				return fmt.Errorf("backend %s unreachable: %w", cfg.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", cfg.BaseURL())
			return nil
		},
	}
}
