package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kmi-labs/kiba/internal/vendors"
)

func parseCmd() *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract vendors from research prose",
		Long:  "Reads vendor research output (a file, or stdin with -f -) and prints the extracted vendors as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if inputFile == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(inputFile)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			parsed := vendors.Parse(string(data))
			if parsed == nil {
				parsed = []vendors.Vendor{}
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(parsed)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "-", "research output file (- for stdin)")
	return cmd
}
