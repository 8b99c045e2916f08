package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benchwise/gridvault/db"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		err := db.MigrateUp(cfg.GetDatabaseParams())
		if err != nil {
			fmt.Printf("Failed to apply migrations: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("Database schema is up to date")
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		err := db.MigrateDown(cfg.GetDatabaseParams())
		if err != nil {
			fmt.Printf("Failed to roll back migrations: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("Database schema rolled back")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current migration version",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		version, dirty, err := db.MigrateVersion(cfg.GetDatabaseParams())
		if err != nil {
			fmt.Printf("Failed to read migration version: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database schema version: %d, dirty: %t\n", version, dirty)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(upCmd)
	migrateCmd.AddCommand(downCmd)
	migrateCmd.AddCommand(versionCmd)
}
