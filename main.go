package main

import (
	"fjacquet/bank-import/cmd/batch"
	"fjacquet/bank-import/cmd/categorize"
	"fjacquet/bank-import/cmd/detect"
	"fjacquet/bank-import/cmd/export"
	"fjacquet/bank-import/cmd/imports"
	"fjacquet/bank-import/cmd/preview"
	"fjacquet/bank-import/cmd/readiness"
	"fjacquet/bank-import/cmd/review"
	"fjacquet/bank-import/cmd/root"

	"github.com/spf13/cobra"
)

func newRootCommand(app *root.App) *cobra.Command {
	cmd := root.NewCommand(app)
	cmd.AddCommand(
		imports.NewCommand(app),
		batch.NewCommand(app),
		detect.NewCommand(app),
		preview.NewCommand(app),
		categorize.NewCommand(app),
		review.NewCommand(app),
		readiness.NewCommand(app),
		export.NewCommand(app),
	)
	return cmd
}

func main() {
	app := &root.App{}
	root.Execute(app, newRootCommand(app))
}
