package main

import (
	"github.com/spf13/cobra"

	"github.com/youthlift/backoffice/internal/app"
	"github.com/youthlift/backoffice/internal/config"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the back office server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, errLoad := config.Load(configFile)
	if errLoad != nil {
		return errLoad
	}
	return app.RunServer(cfg)
}
