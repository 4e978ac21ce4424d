// Package root contains the root command for the application
package root

import (
	"fmt"
	"os"

	"fjacquet/bank-import/internal/config"
	"fjacquet/bank-import/internal/container"

	"github.com/spf13/cobra"
)

// App carries the state shared by every command: global flags and the
// dependency container built before a command runs.
type App struct {
	ConfigFile string
	OwnerID    string
	Database   string

	// Options are passed to container.NewContainer, letting tests inject stores.
	Options []container.Option

	config    *config.Config
	container *container.Container
}

// Container returns the wired dependencies. Only valid inside a command's Run.
func (a *App) Container() *container.Container {
	return a.container
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Owner is the owner id from --owner, falling back to owner.id.
func (a *App) Owner() string {
	if a.OwnerID != "" {
		return a.OwnerID
	}
	return a.config.Owner.ID
}

func (a *App) setup(cmd *cobra.Command) error {
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to load .env: %v\n", err)
	}

	cfg, err := config.Load(a.ConfigFile)
	if err != nil {
		return err
	}
	if a.Database != "" {
		cfg.Database.Path = a.Database
	}
	a.config = cfg

	c, err := container.NewContainer(cmd.Context(), cfg, a.Options...)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	a.container = c
	return nil
}

// Close releases the container. It is safe to call more than once.
func (a *App) Close() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	return err
}

// NewCommand builds the root command. Subcommands are attached by the caller.
func NewCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank-import",
		Short: "Import UK bank statement CSV exports and prepare them for SA103.",
		Long: `bank-import reads CSV statements from UK banks, detects the bank from the
header row, skips transactions that were already imported, and suggests
self-employment expense categories and SA103F boxes for review.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.bank-import, .bank-import or .)")
	cmd.PersistentFlags().StringVar(&app.OwnerID, "owner", "", "Owner id (overrides owner.id)")
	cmd.PersistentFlags().StringVar(&app.Database, "db", "", "SQLite database path (overrides database.path)")
	return cmd
}

// Execute runs cmd and exits non-zero on failure. Cobra has already
// printed the error.
func Execute(app *App, cmd *cobra.Command) {
	err := cmd.Execute()
	_ = app.Close()
	if err != nil {
		os.Exit(1)
	}
}
