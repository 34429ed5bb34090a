package models

import "time"

// Participant is a user's enrolment in an assignment.
type Participant struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;index" json:"assignment_id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Handle       string     `gorm:"size:255" json:"handle"`
	Grade        *float64   `json:"grade"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Team groups participants submitting together.
type Team struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	AssignmentID         uint       `gorm:"not null;index" json:"assignment_id"`
	Name                 string     `gorm:"size:255" json:"name"`
	GradeForSubmission   *float64   `json:"grade_for_submission"`
	CommentForSubmission string     `gorm:"type:text" json:"comment_for_submission"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Members              []TeamUser `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"members"`
}

// TeamUser links a participant to a team.
type TeamUser struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TeamID        uint        `gorm:"not null;index" json:"team_id"`
	ParticipantID uint        `gorm:"not null;index" json:"participant_id"`
	Participant   Participant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"participant"`
}
