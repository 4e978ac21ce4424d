// Package batch handles batch processing of files
package batch

import (
	"fmt"
	"path/filepath"

	"fjacquet/bank-import/cmd/root"
	"fjacquet/bank-import/internal/batch"

	"github.com/spf13/cobra"
)

// NewCommand builds the batch command.
func NewCommand(app *root.App) *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Import every CSV statement in a directory",
		Long: `Import every .csv file in a directory, in file name order. Each file is
detected and imported on its own; a file that cannot be imported is
reported and the rest still go in.

Example:
  bank-import batch statements/2025/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if encoding == "" {
				encoding = app.Config().Import.DefaultEncoding
			}
			c := app.Container()
			summary, err := batch.NewImporter(c.GetImporter(), c.GetLogger()).
				ImportDirectory(cmd.Context(), app.Owner(), args[0], encoding)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range summary.Files {
				name := filepath.Base(f.Path)
				if f.Err != nil {
					fmt.Fprintf(out, "FAILED  %s: %v\n", name, f.Err)
					continue
				}
				a := f.Result.Audit
				fmt.Fprintf(out, "OK      %s: %d imported, %d skipped, %d errors\n",
					name, a.ImportedCount, a.SkippedCount, a.ErrorCount())
			}
			fmt.Fprintf(out, "Total: %d imported, %d skipped, %d row errors, %d files failed\n",
				summary.Imported, summary.Skipped, summary.RowErrors, summary.Failed)
			if r := summary.DateRange.String(); r != "" {
				fmt.Fprintf(out, "Range: %s\n", r)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Files))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "Input charset (default: import.default_encoding)")
	return cmd
}
