package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrationCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	Run: func(_ *cobra.Command, _ []string) {
		// initApp already ran AutoMigrate for every repository
		logrus.Info("[MIGRATE] Database schema is up to date")
		StopApp()
	},
}

func init() {
	rootCmd.AddCommand(migrationCmd)
}
