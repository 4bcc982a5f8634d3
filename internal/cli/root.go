// Package cli implements nutrackctl, the admin command line for the
// tracker backend.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/nutrack/nutrack/backend/config"
	"github.com/nutrack/nutrack/backend/internal/database"
	"github.com/nutrack/nutrack/backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "nutrackctl",
	Short: "Admin tool for the nutrition and training tracker",
	Long: "nutrackctl migrates the database, seeds foods and recipes, " +
		"mints development tokens and checks configuration.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file whose keys become environment defaults (e.g. db_driver, sqlite_path)")
	rootCmd.PersistentFlags().String("user", "", "user id to act as")
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() {
	viper.SetEnvPrefix("NUTRACK")
	viper.AutomaticEnv()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", cfgFile, err)
		return
	}
	exportDefaults(viper.GetViper())
}

// exportDefaults copies config file keys into the environment so that
// config.LoadConfig sees them. Variables already set win.
func exportDefaults(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		if key == "user" || strings.Contains(key, ".") {
			continue
		}
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		_ = os.Setenv(name, v.GetString(key))
	}
}

// loadConfig reads configuration and installs the logger it asks for.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.InitWithConfig(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// openDB connects and brings the schema up to date.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		return nil, err
	}
	return db, nil
}
