package cli

import (
	"github.com/klokku/focusweek/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

// NewRootCommand builds the focusweek command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "focusweek",
		Short:         "focusweek - a weekly planner that runs one task at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration file")

	load := func() (config.Application, error) {
		return config.Load(configPath)
	}
	root.AddCommand(serveCmd(load))
	root.AddCommand(reconcileCmd(load))
	root.AddCommand(migrateCmd(load))
	return root
}

type configLoader func() (config.Application, error)
