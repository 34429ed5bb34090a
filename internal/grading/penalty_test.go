package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

func TestPenaltySetGateRequiresEveryDeadline(t *testing.T) {
	require.False(t, PenaltySet{Submission: 2, Review: 0, MetaReview: 3}.AllTriggered())
	require.True(t, PenaltySet{Submission: 2, Review: 1, MetaReview: 3}.AllTriggered())
}

func TestPenaltySetAccessors(t *testing.T) {
	var set PenaltySet
	set.Set(models.DeadlineSubmission, 1)
	set.Set(models.DeadlineReview, 2)
	set.Set(models.DeadlineMetareview, 4)

	require.Equal(t, 2.0, set.For(models.DeadlineReview))
	require.Equal(t, 7.0, set.Sum())
	require.Zero(t, set.For(models.DeadlineType(9)))
}

func TestCapPenalty(t *testing.T) {
	require.Equal(t, 10.0, CapPenalty(12, 10))
	require.Equal(t, 8.0, CapPenalty(8, 10))
}

func TestLatePoints(t *testing.T) {
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := models.LatePolicy{PenaltyPerUnit: 2, PenaltyUnit: models.PenaltyUnitHour, MaxPenalty: 5}

	require.Zero(t, LatePoints(due, due.Add(-time.Minute), policy))
	require.Zero(t, LatePoints(due, due, policy))
	require.Equal(t, 2.0, LatePoints(due, due.Add(10*time.Minute), policy))
	require.Equal(t, 4.0, LatePoints(due, due.Add(90*time.Minute), policy))
	require.Equal(t, 5.0, LatePoints(due, due.Add(10*time.Hour), policy))
	require.Zero(t, LatePoints(time.Time{}, due, policy))
}
