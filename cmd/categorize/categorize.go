// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"
	"io"

	"fjacquet/bank-import/cmd/root"
	"fjacquet/bank-import/internal/categorizer"
	"fjacquet/bank-import/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewCommand builds the categorize command. Without flags it suggests
// categories for every pending transaction of the owner; with
// --description it evaluates a single ad-hoc transaction.
func NewCommand(app *root.App) *cobra.Command {
	var description, amount string
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Suggest categories for pending transactions",
		Long: `Suggest an expense category, confidence and SA103F box for each pending
transaction that has not been scored yet. Transfers and other
non-business movements are marked excluded.

Use --description and --amount to try the rules on a single line without
touching the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			engine := app.Container().GetEngine()

			if description != "" {
				amt, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				PrintRecommendation(out, engine.RecommendParts(amt, description))
				return nil
			}

			n, err := app.Container().GetImporter().CategorizePending(cmd.Context(), app.Owner())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Categorized %d pending transactions\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description to categorize")
	cmd.Flags().StringVarP(&amount, "amount", "a", "-1", "Signed amount; negative is money out")
	return cmd
}

// PrintRecommendation writes a recommendation as key: value lines.
func PrintRecommendation(w io.Writer, rec models.Recommendation) {
	if rec.Excluded {
		fmt.Fprintf(w, "Excluded: %s\n", rec.ExclusionReason)
	} else {
		fmt.Fprintf(w, "Direction: %s\n", rec.Direction)
		fmt.Fprintf(w, "Category: %s\n", categorizer.SuggestedCategory(rec))
		if rec.HasBox() {
			fmt.Fprintf(w, "SA103 box: %d\n", rec.SA103Box)
		}
	}
	fmt.Fprintf(w, "Confidence: %s (%s)\n", rec.Confidence.StringFixed(2), rec.Level)
}
