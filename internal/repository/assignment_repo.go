package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// AssignmentRepository loads assignments together with their questionnaire bindings.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	ListQuestionnaires(ctx context.Context, assignmentID uint) ([]models.Questionnaire, error)
	RoundBinding(ctx context.Context, assignmentID, questionnaireID uint) (*int, error)
	ListDueDates(ctx context.Context, assignmentID uint) ([]models.DueDate, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) ListQuestionnaires(ctx context.Context, assignmentID uint) ([]models.Questionnaire, error) {
	var questionnaires []models.Questionnaire
	err := r.db.WithContext(ctx).
		Model(&models.Questionnaire{}).
		Joins("JOIN assignment_questionnaires aq ON aq.questionnaire_id = questionnaires.id").
		Where("aq.assignment_id = ?", assignmentID).
		Order("aq.position ASC, questionnaires.id ASC").
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("seq ASC, id ASC")
		}).
		Find(&questionnaires).Error
	if err != nil {
		return nil, err
	}

	return questionnaires, nil
}

// RoundBinding returns gorm.ErrRecordNotFound when the questionnaire is not bound to the assignment.
func (r *assignmentRepository) RoundBinding(ctx context.Context, assignmentID, questionnaireID uint) (*int, error) {
	var binding models.AssignmentQuestionnaire
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND questionnaire_id = ?", assignmentID, questionnaireID).
		First(&binding).Error
	if err != nil {
		return nil, err
	}

	return binding.UsedInRound, nil
}

func (r *assignmentRepository) ListDueDates(ctx context.Context, assignmentID uint) ([]models.DueDate, error) {
	var dueDates []models.DueDate
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("round ASC, due_at ASC").
		Find(&dueDates).Error; err != nil {
		return nil, err
	}

	return dueDates, nil
}
