// Package review holds the commands that move transactions through review.
package review

import (
	"fmt"
	"strings"

	"fjacquet/bank-import/cmd/root"
	"fjacquet/bank-import/internal/currencyutils"
	"fjacquet/bank-import/internal/dateutils"
	"fjacquet/bank-import/internal/importer"
	"fjacquet/bank-import/internal/models"

	"github.com/spf13/cobra"
)

// NewCommand builds the review command group.
func NewCommand(app *root.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "List and confirm transactions awaiting review",
	}
	cmd.AddCommand(
		newListCommand(app),
		newConfirmExpenseCommand(app),
		newConfirmIncomeCommand(app),
		newBusinessCommand(app),
	)
	return cmd
}

func newListCommand(app *root.App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending transactions with their suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := app.Container().GetStore().FindByOwnerID(cmd.Context(), app.Owner())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tx := range txs {
				if !all && tx.ReviewStatus != models.ReviewPending {
					continue
				}
				fmt.Fprintf(out, "%s  %s  %10s  %-40s  %s\n",
					tx.ID, dateutils.ToISODate(tx.Date), currencyutils.FormatAmount(tx.Amount, "GBP"), tx.Description, suggestion(tx))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include reviewed and excluded transactions")
	return cmd
}

func suggestion(tx models.PersistedTransaction) string {
	var parts []string
	switch {
	case tx.ReviewStatus == models.ReviewExcluded && tx.ExclusionReason != nil:
		parts = append(parts, "EXCLUDED:"+*tx.ExclusionReason)
	case tx.ReviewStatus != models.ReviewPending:
		parts = append(parts, string(tx.ReviewStatus))
	case tx.SuggestedCategory != nil:
		parts = append(parts, *tx.SuggestedCategory)
	}
	if tx.ConfidenceScore != nil {
		parts = append(parts, tx.ConfidenceScore.StringFixed(2))
	}
	return strings.Join(parts, " ")
}

func newConfirmExpenseCommand(app *root.App) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "confirm-expense <transaction-id>",
		Short: "Book a money-out transaction as a business expense",
		Long: `Book a money-out transaction as a business expense. Without --category
the suggested category is used, falling back to OTHER_EXPENSES.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container().GetImporter().ConfirmAsExpense(cmd.Context(), app.Owner(), args[0],
				models.ExpenseCategory(strings.ToUpper(strings.TrimSpace(category))))
			if err != nil {
				return err
			}
			printConfirmation(cmd, c)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Expense category, e.g. OFFICE_COSTS")
	return cmd
}

func newConfirmIncomeCommand(app *root.App) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "confirm-income <transaction-id>",
		Short: "Book a money-in transaction as business income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container().GetImporter().ConfirmAsIncome(cmd.Context(), app.Owner(), args[0],
				models.IncomeCategory(strings.ToUpper(strings.TrimSpace(category))))
			if err != nil {
				return err
			}
			printConfirmation(cmd, c)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Income category, SALES (default) or OTHER_INCOME")
	return cmd
}

func printConfirmation(cmd *cobra.Command, c importer.Confirmation) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Booked %s %s as %s %s\n",
		c.Transaction.ID, currencyutils.FormatAmount(c.Record.Amount, "GBP"), strings.ToLower(string(c.Record.Kind)), c.Record.Category)
	if c.SA103Box > 0 {
		fmt.Fprintf(out, "SA103 box: %d\n", c.SA103Box)
	}
}

func newBusinessCommand(app *root.App) *cobra.Command {
	return &cobra.Command{
		Use:   "business <transaction-id> <true|false|unknown>",
		Short: "Mark a transaction as business or personal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, err := models.ParseBusinessFlag(args[1])
			if err != nil {
				return err
			}
			tx, err := app.Container().GetImporter().SetBusinessFlag(cmd.Context(), app.Owner(), args[0], flag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s business: %s\n", tx.ID, tx.IsBusiness)
			return nil
		},
	}
}
