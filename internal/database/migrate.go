package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// Migrate creates or updates the tables used by the grading service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Assignment{},
		&models.Questionnaire{},
		&models.Question{},
		&models.AssignmentQuestionnaire{},
		&models.Participant{},
		&models.Team{},
		&models.TeamUser{},
		&models.ResponseMap{},
		&models.Response{},
		&models.Answer{},
		&models.LatePolicy{},
		&models.DueDate{},
		&models.CalculatedPenalty{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
