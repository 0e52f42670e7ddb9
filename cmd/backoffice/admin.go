package main

import (
	"github.com/spf13/cobra"

	"github.com/youthlift/backoffice/internal/app"
	"github.com/youthlift/backoffice/internal/config"
)

var (
	adminConfigFile string
	adminUsername   string
	adminEmail      string
	adminPassword   string
	adminRole       string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, errLoad := config.Load(adminConfigFile)
		if errLoad != nil {
			return errLoad
		}
		return app.CreateAdmin(cfg, adminUsername, adminEmail, adminPassword, adminRole)
	},
}

func init() {
	adminCreateCmd.Flags().StringVarP(&adminConfigFile, "config", "c", "config.yaml", "Path to configuration file")
	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", "super_admin", "Admin role")

	adminCmd.AddCommand(adminCreateCmd)
}
