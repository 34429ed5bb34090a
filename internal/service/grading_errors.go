package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
)

// storeError classifies a repository failure as missing data or a dependency outage.
func storeError(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, grading.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", grading.ErrDependency, what, err)
}

// roundBindings adapts the assignment repository to grading.RoundBindingLookup.
type roundBindings struct {
	repo repository.AssignmentRepository
}

func (r roundBindings) RoundBinding(ctx context.Context, assignmentID, questionnaireID uint) (*int, error) {
	round, err := r.repo.RoundBinding(ctx, assignmentID, questionnaireID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("round binding: %w", grading.ErrNotFound)
		}
		return nil, err
	}
	return round, nil
}
