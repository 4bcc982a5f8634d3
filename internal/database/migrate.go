package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/nutrack/nutrack/backend/internal/logger"
	"github.com/nutrack/nutrack/backend/internal/model"
)

// RunMigrations brings the schema up to date. Records are auto-migrated on
// every dialect. On postgres the vector extension is enabled first, and any
// pending SQL files from migrationsDir run afterwards.
func RunMigrations(db *gorm.DB, migrationsDir string) error {
	postgres := db.Dialector.Name() == "postgres"
	if postgres {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to enable vector extension: %w", err)
		}
	}

	logger.Info("Running auto-migration", "dialect", db.Dialector.Name())
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	if postgres && migrationsDir != "" {
		return applySQLFiles(db, migrationsDir)
	}
	return nil
}

func applySQLFiles(db *gorm.DB, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("Skipping migration (already applied)", "name", name)
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			return tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error
		})
		if err != nil {
			return err
		}

		logger.Info("Applied migration", "name", name)
	}
	return nil
}
