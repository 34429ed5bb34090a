package models

import "time"

// DeadlineType enumerates the deadlines penalties attach to.
type DeadlineType uint

const (
	DeadlineSubmission DeadlineType = 1
	DeadlineReview     DeadlineType = 2
	DeadlineMetareview DeadlineType = 5
)

// PenaltyDeadlineTypes lists the deadline types a penalty pass evaluates, in persistence order.
var PenaltyDeadlineTypes = []DeadlineType{DeadlineSubmission, DeadlineReview, DeadlineMetareview}

func (d DeadlineType) String() string {
	switch d {
	case DeadlineSubmission:
		return "submission"
	case DeadlineReview:
		return "review"
	case DeadlineMetareview:
		return "meta_review"
	default:
		return "unknown"
	}
}

// Penalty units understood by late policies.
const (
	PenaltyUnitMinute = "Minute"
	PenaltyUnitHour   = "Hour"
	PenaltyUnitDay    = "Day"
)

// LatePolicy caps the penalty points a participant can accrue.
type LatePolicy struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	PenaltyPerUnit float64   `gorm:"not null;default:0" json:"penalty_per_unit"`
	PenaltyUnit    string    `gorm:"size:16;not null;default:Day" json:"penalty_unit"`
	MaxPenalty     float64   `gorm:"not null;default:0" json:"max_penalty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UnitDuration returns the accrual period of the policy.
func (p LatePolicy) UnitDuration() time.Duration {
	switch p.PenaltyUnit {
	case PenaltyUnitMinute:
		return time.Minute
	case PenaltyUnitHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// DueDate is the deadline of one deadline type for a round of an assignment.
type DueDate struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	AssignmentID   uint         `gorm:"not null;index" json:"assignment_id"`
	DeadlineTypeID DeadlineType `gorm:"not null" json:"deadline_type_id"`
	Round          int          `gorm:"not null;default:1" json:"round"`
	DueAt          time.Time    `gorm:"not null" json:"due_at"`
}

// CalculatedPenalty records the points charged to a participant for one deadline type.
type CalculatedPenalty struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ParticipantID  uint         `gorm:"not null;index" json:"participant_id"`
	DeadlineTypeID DeadlineType `gorm:"not null" json:"deadline_type_id"`
	PenaltyPoints  float64      `gorm:"not null" json:"penalty_points"`
	CreatedAt      time.Time    `json:"created_at"`
}
