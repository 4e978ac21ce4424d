// Package preview holds the dry-run import command.
package preview

import (
	"fmt"

	"fjacquet/bank-import/cmd/root"

	"github.com/spf13/cobra"
)

// NewCommand builds the preview command.
func NewCommand(app *root.App) *cobra.Command {
	var encoding string
	var showUnique bool
	cmd := &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Show which rows of a statement are new without importing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if encoding == "" {
				encoding = app.Config().Import.DefaultEncoding
			}
			p, err := app.Container().GetImporter().PreviewDuplicates(cmd.Context(), app.Owner(), args[0], encoding)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bank: %s\n", p.BankName)
			fmt.Fprintf(out, "New: %d, duplicates: %d, errors: %d\n", len(p.Unique), len(p.Duplicates), len(p.Errors))
			for _, tx := range p.Duplicates {
				fmt.Fprintf(out, "  duplicate  %s\n", tx)
			}
			if showUnique {
				for _, tx := range p.Unique {
					fmt.Fprintf(out, "  new        %s\n", tx)
				}
			}
			for _, rowErr := range p.Errors {
				fmt.Fprintf(out, "  %s\n", rowErr.Error())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "Input charset (default: import.default_encoding)")
	cmd.Flags().BoolVar(&showUnique, "show-new", false, "Also list the rows that would be imported")
	return cmd
}
