// Package detect reports which bank a statement comes from.
package detect

import (
	"fmt"
	"strings"

	"fjacquet/bank-import/cmd/root"
	"fjacquet/bank-import/internal/factory"
	"fjacquet/bank-import/internal/fileutils"

	"github.com/spf13/cobra"
)

// NewCommand builds the detect command and its banks subcommand.
func NewCommand(app *root.App) *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "detect <file.csv>",
		Short: "Detect the bank a CSV statement was exported from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if encoding == "" {
				encoding = app.Config().Import.DefaultEncoding
			}
			rc, err := fileutils.OpenDecoded(args[0], encoding)
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			headers, err := factory.ExtractHeaders(rc)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(headers) == 0 {
				fmt.Fprintln(out, "File is empty")
				return nil
			}
			p, ok, err := app.Container().GetDetector().DetectHeaders(headers)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "No matching bank format\nHeaders: %s\n", strings.Join(headers, ", "))
				return nil
			}
			fmt.Fprintf(out, "Detected: %s\n", p.BankName())
			return nil
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "Input charset (default: import.default_encoding)")
	cmd.AddCommand(newBanksCommand(app))
	return cmd
}

func newBanksCommand(app *root.App) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List the banks that can be detected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range app.Container().GetDetector().AvailableBankNames() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
