package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/libris/internal/entrypoint"
)

func newServeCommand(a *app, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cmd.Context(), a.cfg, a.log, version)
		},
	}
}
