package db

import (
	"fmt"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	// Partial index backing ClaimNextRunnable.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_job_run_runnable
		ON job_run (status, created_at)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return fmt.Errorf("create job_run runnable index: %w", err)
	}
	return nil
}
