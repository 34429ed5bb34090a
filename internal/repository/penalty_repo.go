package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// PenaltyStore is the transactional view used while persisting a penalty pass.
type PenaltyStore interface {
	// ClaimPenaltyCalculation flips the assignment's calculated flag from false
	// to true and reports whether this caller performed the flip.
	ClaimPenaltyCalculation(ctx context.Context, assignmentID uint) (bool, error)
	CreatePenalty(ctx context.Context, penalty *models.CalculatedPenalty) error
}

// PenaltyRepository persists late policies and calculated penalties.
type PenaltyRepository interface {
	GetLatePolicy(ctx context.Context, id uint) (models.LatePolicy, error)
	ListForParticipants(ctx context.Context, participantIDs []uint) ([]models.CalculatedPenalty, error)
	WithinTransaction(ctx context.Context, fn func(store PenaltyStore) error) error
}

type penaltyRepository struct {
	db *gorm.DB
}

// NewPenaltyRepository constructs the penalty repository.
func NewPenaltyRepository(db *gorm.DB) PenaltyRepository {
	return &penaltyRepository{db: db}
}

func (r *penaltyRepository) GetLatePolicy(ctx context.Context, id uint) (models.LatePolicy, error) {
	var policy models.LatePolicy
	if err := r.db.WithContext(ctx).First(&policy, id).Error; err != nil {
		return models.LatePolicy{}, err
	}

	return policy, nil
}

func (r *penaltyRepository) ListForParticipants(ctx context.Context, participantIDs []uint) ([]models.CalculatedPenalty, error) {
	if len(participantIDs) == 0 {
		return []models.CalculatedPenalty{}, nil
	}

	var penalties []models.CalculatedPenalty
	if err := r.db.WithContext(ctx).
		Where("participant_id IN ?", participantIDs).
		Order("participant_id ASC, deadline_type_id ASC").
		Find(&penalties).Error; err != nil {
		return nil, err
	}

	return penalties, nil
}

// WithinTransaction runs fn in a single transaction; any error rolls back both
// the flag and the created rows.
func (r *penaltyRepository) WithinTransaction(ctx context.Context, fn func(store PenaltyStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&penaltyStore{tx: tx})
	})
}

type penaltyStore struct {
	tx *gorm.DB
}

func (s *penaltyStore) ClaimPenaltyCalculation(ctx context.Context, assignmentID uint) (bool, error) {
	result := s.tx.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND is_penalty_calculated = ?", assignmentID, false).
		Update("is_penalty_calculated", true)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (s *penaltyStore) CreatePenalty(ctx context.Context, penalty *models.CalculatedPenalty) error {
	return s.tx.WithContext(ctx).Create(penalty).Error
}
