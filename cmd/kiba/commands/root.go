// Package commands wires the kiba CLI. The bare `kiba` command launches the
// wizard TUI; the subcommands expose the non-interactive pieces (backend
// health, the decision gate, the vendor prose parser) for scripts and CI.
package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kmi-labs/kiba/internal/config"
	"github.com/kmi-labs/kiba/internal/tui"
)

var projectDir string

func Execute() error {
	root := &cobra.Command{
		Use:           "kiba",
		Short:         "AI-assisted procurement wizard",
		Long:          "kiba walks a purchase from a free-text need to spec variants, vendor research, a decision gate and RFQ generation.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if projectDir == "" {
				dir, err := os.Getwd()
				if err != nil {
					return err
				}
				projectDir = dir
			}
			return config.InitKibaDir(projectDir)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := tui.NewApp(projectDir)
			if err != nil {
				return fmt.Errorf("start wizard: %w", err)
			}
			program := tea.NewProgram(app, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("run wizard: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&projectDir, "project", "", "project directory (default: current directory)")

	root.AddCommand(healthCmd(), gateCmd(), parseCmd())
	return root.Execute()
}
