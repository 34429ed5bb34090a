package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// ResponseRepository reads review responses and their answers.
type ResponseRepository interface {
	ListForReviewees(ctx context.Context, assignmentID uint, mapType models.ResponseMapType, revieweeIDs []uint) ([]models.Response, error)
	LatestAuthoredAt(ctx context.Context, reviewerID uint, mapType models.ResponseMapType) (*time.Time, error)
	ListForAssignment(ctx context.Context, assignmentID uint, mapTypes ...models.ResponseMapType) ([]models.Response, error)
	SelfReviewSubmitted(ctx context.Context, participantID uint) (bool, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository constructs the response repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// ListForReviewees returns every revision received by the reviewees through maps
// of the given type, with answers and the owning map preloaded.
func (r *responseRepository) ListForReviewees(ctx context.Context, assignmentID uint, mapType models.ResponseMapType, revieweeIDs []uint) ([]models.Response, error) {
	if len(revieweeIDs) == 0 {
		return []models.Response{}, nil
	}

	var responses []models.Response
	err := r.db.WithContext(ctx).
		Joins("JOIN response_maps rm ON rm.id = responses.map_id").
		Where("rm.assignment_id = ? AND rm.type = ? AND rm.reviewee_id IN ?", assignmentID, mapType, revieweeIDs).
		Preload("Answers", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("question_id ASC")
		}).
		Preload("Map").
		Order("responses.map_id ASC, responses.version ASC, responses.id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}

	return responses, nil
}

// LatestAuthoredAt returns when the reviewer last submitted a response of the given type, or nil.
func (r *responseRepository) LatestAuthoredAt(ctx context.Context, reviewerID uint, mapType models.ResponseMapType) (*time.Time, error) {
	var response models.Response
	err := r.db.WithContext(ctx).
		Joins("JOIN response_maps rm ON rm.id = responses.map_id").
		Where("rm.reviewer_id = ? AND rm.type = ? AND responses.is_submitted = ?", reviewerID, mapType, true).
		Order("responses.updated_at DESC").
		Take(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	at := response.UpdatedAt
	return &at, nil
}

// ListForAssignment returns every revision made through the assignment's maps of
// the given types, newest first, with the owning map preloaded and no answers.
func (r *responseRepository) ListForAssignment(ctx context.Context, assignmentID uint, mapTypes ...models.ResponseMapType) ([]models.Response, error) {
	if len(mapTypes) == 0 {
		return []models.Response{}, nil
	}

	var responses []models.Response
	err := r.db.WithContext(ctx).
		Joins("JOIN response_maps rm ON rm.id = responses.map_id").
		Where("rm.assignment_id = ? AND rm.type IN ?", assignmentID, mapTypes).
		Preload("Map").
		Order("responses.created_at DESC, responses.id DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}

	return responses, nil
}

// SelfReviewSubmitted reports whether the latest revision of the participant's
// self-review is submitted. A participant without a self-review has not submitted one.
func (r *responseRepository) SelfReviewSubmitted(ctx context.Context, participantID uint) (bool, error) {
	var response models.Response
	err := r.db.WithContext(ctx).
		Joins("JOIN response_maps rm ON rm.id = responses.map_id").
		Where("rm.reviewer_id = ? AND rm.type = ?", participantID, models.ResponseMapSelfReview).
		Order("responses.version DESC, responses.id DESC").
		Take(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return response.IsSubmitted, nil
}
