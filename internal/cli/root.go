// Package cli holds the libris command line: the HTTP server and the
// maintenance commands that work directly on the data directory.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/config"
	"github.com/mrlokans/libris/internal/database"
	"github.com/mrlokans/libris/internal/logger"
)

type app struct {
	cfg *config.Config
	log *zap.Logger
}

func (a *app) openDatabase() (*database.Database, error) {
	return database.NewDatabase(a.cfg.Storage, a.cfg.Auth.BcryptCost, a.log.Named("database"))
}

// NewRootCommand builds the command tree. Running the binary without a
// subcommand starts the server.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "libris",
		Short:         "School library: catalog, borrowing and reading lists",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.NewConfig()
			log, err := logger.New(a.cfg.Log)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	serve := newServeCommand(a, version)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newSeedCommand(a),
		newCreateUserCommand(a),
		newMaturitaReportCommand(a),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute(ctx context.Context, version string) error {
	if err := NewRootCommand(version).ExecuteContext(ctx); err != nil {
		return fmt.Errorf("libris: %w", err)
	}
	return nil
}
