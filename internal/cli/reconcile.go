package cli

import (
	"encoding/json"

	"github.com/klokku/focusweek/internal/app"
	"github.com/klokku/focusweek/internal/utils"
	"github.com/klokku/focusweek/pkg/rollover"
	"github.com/spf13/cobra"
)

func reconcileCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run a single reconciliation pass and print its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			application, err := app.NewApplication(cmd.Context(), cfg, utils.SystemClock{})
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Dependencies().Reconciler.RunReconciliationPass(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rollover.ReportToDTO(report))
		},
	}
}
