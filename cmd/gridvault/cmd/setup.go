package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benchwise/gridvault/db"
)

// setupCmd initializes a fresh gridvault database: applies the schema and
// verifies the service can connect with the configured credentials.
var setupCmd = &cobra.Command{
	Use:     "setup",
	Aliases: []string{"init"},
	Short:   "Setup a new gridvault database",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		migrator := db.NewDatabaseMigrator(cfg.GetDatabaseParams())
		if err := migrator.Migrate(cmd.Context()); err != nil {
			fmt.Printf("Failed to setup DB: %s\n", err)
			os.Exit(1)
		}

		database := cfg.ConnectDatabase()
		defer func() { _ = database.Close() }()

		fmt.Println("Setup completed")
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(setupCmd)
}
