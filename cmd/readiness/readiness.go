// Package readiness reports whether an owner's transactions are reviewed.
package readiness

import (
	"fmt"

	"fjacquet/bank-import/cmd/root"

	"github.com/spf13/cobra"
)

// NewCommand builds the readiness command.
func NewCommand(app *root.App) *cobra.Command {
	return &cobra.Command{
		Use:   "readiness",
		Short: "Check whether every transaction has been reviewed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Container().GetImporter().BusinessReadiness(cmd.Context(), app.Owner())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transactions: %d\n", r.Total)
			fmt.Fprintf(out, "Pending review: %d\n", r.Pending)
			fmt.Fprintf(out, "Business: %d, personal: %d, undecided: %d\n", r.Business, r.Personal, r.Unknown)
			if r.Ready {
				fmt.Fprintln(out, "Ready")
			} else {
				fmt.Fprintln(out, "Not ready")
			}
			return nil
		},
	}
}
