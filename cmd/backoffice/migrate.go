package main

import (
	"github.com/spf13/cobra"

	"github.com/youthlift/backoffice/internal/app"
	"github.com/youthlift/backoffice/internal/config"
)

var migrateConfigFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, errLoad := config.Load(migrateConfigFile)
		if errLoad != nil {
			return errLoad
		}
		return app.Migrate(cfg)
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateConfigFile, "config", "c", "config.yaml", "Path to configuration file")
}
