package models

import "time"

// Assignment represents a peer-reviewed assignment and its grading settings.
type Assignment struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Name                  string    `gorm:"size:255;not null" json:"name"`
	RoundsOfReviews       int       `gorm:"not null;default:1" json:"rounds_of_reviews"`
	VaryingRubricsByRound bool      `gorm:"not null;default:false" json:"varying_rubrics_by_round"`
	LatePolicyID          *uint     `json:"late_policy_id"`
	IsPenaltyCalculated   bool      `gorm:"not null;default:false" json:"is_penalty_calculated"`
	MaxTeamSize           int       `gorm:"not null;default:1" json:"max_team_size"`
	IsSelfReviewEnabled   bool      `gorm:"not null;default:false" json:"is_self_review_enabled"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Rounds returns the number of review rounds, never less than one.
func (a Assignment) Rounds() int {
	if a.RoundsOfReviews < 1 {
		return 1
	}
	return a.RoundsOfReviews
}

// IsTeamAssignment reports whether submissions are made by teams of more than one member.
func (a Assignment) IsTeamAssignment() bool {
	return a.MaxTeamSize > 1
}

// AssignmentQuestionnaire binds a questionnaire to an assignment, optionally for a single round.
type AssignmentQuestionnaire struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	AssignmentID    uint `gorm:"not null;index:idx_assignment_questionnaire,unique" json:"assignment_id"`
	QuestionnaireID uint `gorm:"not null;index:idx_assignment_questionnaire,unique" json:"questionnaire_id"`
	UsedInRound     *int `json:"used_in_round"`
	Position        int  `gorm:"not null;default:0" json:"position"`
}
