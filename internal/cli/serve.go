package cli

import (
	"os/signal"
	"syscall"

	"github.com/klokku/focusweek/internal/app"
	"github.com/klokku/focusweek/internal/utils"
	"github.com/spf13/cobra"
)

func serveCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reconciliation ticker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApplication(ctx, cfg, utils.SystemClock{})
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}
}
