// Package export writes persisted bank transactions as CSV.
package export

import (
	"fmt"
	"time"

	"fjacquet/bank-import/cmd/root"
	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/dateutils"
	"fjacquet/bank-import/internal/models"

	"github.com/spf13/cobra"
)

// NewCommand builds the export command.
func NewCommand(app *root.App) *cobra.Command {
	var output, from, to string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export imported transactions as CSV",
		Long: `Export the owner's bank transactions with their review state. Output goes
to stdout unless --output names a file. --from and --to limit the range
(inclusive) and need to be given together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Container().GetStore()
			ctx := cmd.Context()

			var (
				txs []models.PersistedTransaction
				err error
			)
			if from != "" || to != "" {
				start, end, perr := parseRange(from, to)
				if perr != nil {
					return perr
				}
				txs, err = st.FindByDateRange(ctx, app.Owner(), start, end)
			} else {
				txs, err = st.FindByOwnerID(ctx, app.Owner())
			}
			if err != nil {
				return err
			}

			if output != "" {
				if err := common.WriteTransactionsToCSV(txs, output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(txs), output)
				return nil
			}
			return common.WriteTransactions(txs, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file")
	cmd.Flags().StringVar(&from, "from", "", "First date to include")
	cmd.Flags().StringVar(&to, "to", "", "Last date to include")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := dateutils.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := dateutils.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return start, end, nil
}
