package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			cfg.MigrationsDir = dir
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", db.Dialector.Name())
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("dir", "", "SQL migrations directory (default MIGRATIONS_DIR)")
	rootCmd.AddCommand(migrateCmd)
}
