// Package imports holds the import command.
package imports

import (
	"fmt"
	"io"

	"fjacquet/bank-import/cmd/root"
	"fjacquet/bank-import/internal/importer"
	"fjacquet/bank-import/internal/manualparser"

	"github.com/spf13/cobra"
)

type flags struct {
	encoding       string
	bank           string
	tolerant       bool
	autoCategorize bool

	profile     string
	saveProfile string
	dateCol     int
	dateFormat  string
	descCol     int
	amountCol   int
	debitCol    int
	creditCol   int
	balanceCol  int
	refCol      int
	invertSign  bool
	bankName    string
	skipHeader  bool
}

// NewCommand builds the import command.
func NewCommand(app *root.App) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank statement CSV",
		Long: `Import a bank statement. The bank is detected from the header row unless
--bank names it. Banks without a dedicated parser are imported with a
column mapping, given inline (--date-col, --desc-col, ...) or as a saved
--profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, f, args[0])
		},
	}

	cmd.Flags().StringVarP(&f.encoding, "encoding", "e", "", "Input charset, e.g. windows-1252 (default: import.default_encoding)")
	cmd.Flags().StringVarP(&f.bank, "bank", "b", "", "Skip detection and use this bank's parser")
	cmd.Flags().BoolVar(&f.tolerant, "tolerant", false, "Record unparsable rows in the audit instead of failing")
	cmd.Flags().BoolVar(&f.autoCategorize, "auto-categorize", false, "Apply category suggestions to imported rows")

	cmd.Flags().StringVar(&f.profile, "profile", "", "Use a saved column-mapping profile")
	cmd.Flags().StringVar(&f.saveProfile, "save-profile", "", "Save the inline column mapping under this name")
	cmd.Flags().IntVar(&f.dateCol, "date-col", -1, "Zero-based date column")
	cmd.Flags().StringVar(&f.dateFormat, "date-format", "", "Date pattern such as dd/MM/yyyy")
	cmd.Flags().IntVar(&f.descCol, "desc-col", -1, "Zero-based description column")
	cmd.Flags().IntVar(&f.amountCol, "amount-col", -1, "Zero-based signed amount column")
	cmd.Flags().IntVar(&f.debitCol, "debit-col", -1, "Zero-based money-out column")
	cmd.Flags().IntVar(&f.creditCol, "credit-col", -1, "Zero-based money-in column")
	cmd.Flags().IntVar(&f.balanceCol, "balance-col", -1, "Zero-based balance column")
	cmd.Flags().IntVar(&f.refCol, "ref-col", -1, "Zero-based reference column")
	cmd.Flags().BoolVar(&f.invertSign, "invert-sign", false, "Negate amounts (money out shown as positive)")
	cmd.Flags().StringVar(&f.bankName, "bank-name", "", "Bank name recorded for a mapped import")
	cmd.Flags().BoolVar(&f.skipHeader, "skip-header", true, "The mapped file starts with a header row")
	cmd.MarkFlagsMutuallyExclusive("bank", "profile")
	cmd.MarkFlagsMutuallyExclusive("bank", "date-col")
	cmd.MarkFlagsMutuallyExclusive("profile", "date-col")
	return cmd
}

func run(cmd *cobra.Command, app *root.App, f *flags, path string) error {
	c := app.Container()
	cfg := app.Config()
	ctx := cmd.Context()

	opts := importer.Options{
		Tolerant:       cfg.Import.Tolerant,
		AutoCategorize: cfg.Import.AutoCategorize,
		MaxFileSize:    cfg.Import.MaxFileSize,
	}
	if cmd.Flags().Changed("tolerant") {
		opts.Tolerant = f.tolerant
	}
	if cmd.Flags().Changed("auto-categorize") {
		opts.AutoCategorize = f.autoCategorize
	}
	svc := importer.NewService(c.GetStore(), c.GetDetector(), c.GetEngine(), c.GetLogger(), importer.WithOptions(opts))

	encoding := f.encoding
	if encoding == "" {
		encoding = cfg.Import.DefaultEncoding
	}

	var (
		result *importer.Result
		err    error
	)
	switch {
	case f.profile != "":
		mapping, perr := c.GetRuleStore().Mapping(f.profile)
		if perr != nil {
			return perr
		}
		result, err = svc.ImportWithMapping(ctx, app.Owner(), path, encoding, mapping)
	case cmd.Flags().Changed("date-col"):
		mapping := f.mapping()
		if f.saveProfile != "" {
			if err := c.GetRuleStore().SaveMapping(f.saveProfile, mapping); err != nil {
				return err
			}
		}
		result, err = svc.ImportWithMapping(ctx, app.Owner(), path, encoding, mapping)
	case f.bank != "":
		result, err = svc.ImportWithParser(ctx, app.Owner(), path, encoding, f.bank)
	default:
		result, err = svc.ImportBankStatement(ctx, app.Owner(), path, encoding)
	}
	if err != nil {
		return err
	}

	PrintResult(cmd.OutOrStdout(), result)
	return nil
}

func (f *flags) mapping() manualparser.ColumnMapping {
	optional := func(i int) *int {
		if i < 0 {
			return nil
		}
		return manualparser.Column(i)
	}
	return manualparser.ColumnMapping{
		DateColumn:        f.dateCol,
		DateFormat:        f.dateFormat,
		DescriptionColumn: f.descCol,
		AmountColumn:      optional(f.amountCol),
		DebitColumn:       optional(f.debitCol),
		CreditColumn:      optional(f.creditCol),
		InvertSign:        f.invertSign,
		BalanceColumn:     optional(f.balanceCol),
		ReferenceColumn:   optional(f.refCol),
		BankName:          f.bankName,
		SkipHeader:        f.skipHeader,
	}
}

// PrintResult writes a human-readable import summary.
func PrintResult(w io.Writer, result *importer.Result) {
	a := result.Audit
	fmt.Fprintf(w, "Imported %d of %d transactions from %s (%s)\n",
		a.ImportedCount, a.TotalRecords, a.SourceIdentifier, a.SourceFormatID)
	fmt.Fprintf(w, "Skipped %d duplicates, %d errors\n", a.SkippedCount, a.ErrorCount())
	if a.IgnoredCount > 0 {
		fmt.Fprintf(w, "Ignored %d rows with no money movement\n", a.IgnoredCount)
	}
	for _, rowErr := range result.Errors {
		fmt.Fprintf(w, "  %s\n", rowErr.Error())
	}
	fmt.Fprintf(w, "Audit: %s\n", a.ID)
}
