package grading

import (
	"math"
	"time"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// PenaltySet holds a participant's late points per deadline type.
type PenaltySet struct {
	Submission float64 `json:"submission"`
	Review     float64 `json:"review"`
	MetaReview float64 `json:"meta_review"`
}

// For returns the points recorded for a deadline type.
func (p PenaltySet) For(deadline models.DeadlineType) float64 {
	switch deadline {
	case models.DeadlineSubmission:
		return p.Submission
	case models.DeadlineReview:
		return p.Review
	case models.DeadlineMetareview:
		return p.MetaReview
	default:
		return 0
	}
}

// Set stores the points for a deadline type.
func (p *PenaltySet) Set(deadline models.DeadlineType, points float64) {
	switch deadline {
	case models.DeadlineSubmission:
		p.Submission = points
	case models.DeadlineReview:
		p.Review = points
	case models.DeadlineMetareview:
		p.MetaReview = points
	}
}

// AllTriggered reports whether every deadline type accrued points. Only then is
// a total charged.
func (p PenaltySet) AllTriggered() bool {
	return p.Submission != 0 && p.Review != 0 && p.MetaReview != 0
}

// Sum adds the three penalties.
func (p PenaltySet) Sum() float64 {
	return p.Submission + p.Review + p.MetaReview
}

// PenaltySummary is the per-participant penalty entry shown on reports.
type PenaltySummary struct {
	PenaltySet
	TotalPenalty float64 `json:"total_penalty"`
}

// CapPenalty limits total to maxPenalty.
func CapPenalty(total, maxPenalty float64) float64 {
	if total > maxPenalty {
		return maxPenalty
	}
	return total
}

// LatePoints returns the points accrued for finishing at `at` against `due`
// under policy: one PenaltyPerUnit for every started unit of lateness, capped
// at the policy maximum.
func LatePoints(due, at time.Time, policy models.LatePolicy) float64 {
	if due.IsZero() || at.IsZero() || !at.After(due) || policy.PenaltyPerUnit <= 0 {
		return 0
	}
	units := math.Ceil(float64(at.Sub(due)) / float64(policy.UnitDuration()))
	points := units * policy.PenaltyPerUnit
	if policy.MaxPenalty > 0 {
		points = CapPenalty(points, policy.MaxPenalty)
	}
	return points
}
