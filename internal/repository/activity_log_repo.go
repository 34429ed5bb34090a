package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// ActivityLogFilter narrows the audit trail of one assignment. A zero
// AssignmentID spans every assignment.
type ActivityLogFilter struct {
	AssignmentID uint
	EntityType   string
	EntityID     *uint
	Limit        int
}

// ActivityLogRepository persists the grade-change audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Scopes(forAssignment(filter.AssignmentID), forEntity(filter.EntityType, filter.EntityID), limited(filter.Limit)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

func forAssignment(assignmentID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if assignmentID == 0 {
			return db
		}
		return db.Where("assignment_id = ?", assignmentID)
	}
}

// forEntity ignores the id when no entity type is given.
func forEntity(entityType string, entityID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if entityType == "" {
			return db
		}
		db = db.Where("entity_type = ?", entityType)
		if entityID != nil {
			db = db.Where("entity_id = ?", *entityID)
		}
		return db
	}
}

func limited(limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	}
}
