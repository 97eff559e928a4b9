package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmi-labs/kiba/internal/gate"
)

// errGateFailed makes the command exit non-zero without re-printing the
// checklist as an error message.
var errGateFailed = errors.New("gate: cart is not ready for approvals")

func gateCmd() *cobra.Command {
	var cartFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Evaluate a cart file against the decision gate",
		Long:  "Reads a cart JSON file, runs the decision gate and prints the checklist. Exits 1 when the cart is not ready for approvals.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(cartFile)
			if err != nil {
				return fmt.Errorf("read cart: %w", err)
			}
			var input gate.Context
			if err := json.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("parse cart: %w", err)
			}

			decision := gate.Decide(input)
			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(decision); err != nil {
					return err
				}
			} else {
				printDecision(out, decision)
			}

			if decision.Recommendation != gate.ProceedToApprovals {
				cmd.SilenceErrors = true
				return errGateFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cartFile, "file", "f", "cart.json", "cart JSON file to evaluate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full decision as JSON")
	return cmd
}

func printDecision(out io.Writer, decision gate.Decision) {
	fmt.Fprintf(out, "Readiness: %.0f%%\n", decision.Readiness)
	for _, item := range decision.Checklist {
		fmt.Fprintf(out, "  [%s] %s: %s\n", item.Status, item.Label, item.Message)
	}
	fmt.Fprintf(out, "Recommendation: %s\n", decision.Recommendation)
	fmt.Fprintf(out, "Reason: %s\n", decision.Reason)
	if approvers := decision.Result.RequiredApprovers; len(approvers) > 0 {
		fmt.Fprintf(out, "Approvers: %s\n", strings.Join(approvers, ", "))
	}
	for _, exp := range gate.Explain(decision.Result) {
		fmt.Fprintf(out, "  fix %s: %s\n", exp.Code, exp.Fix)
	}
}
