package models

import "time"

// ResponseMapType identifies what a reviewer is reviewing.
type ResponseMapType string

const (
	ResponseMapReview         ResponseMapType = "ReviewResponseMap"
	ResponseMapMetareview     ResponseMapType = "MetareviewResponseMap"
	ResponseMapFeedback       ResponseMapType = "FeedbackResponseMap"
	ResponseMapTeammateReview ResponseMapType = "TeammateReviewResponseMap"
	ResponseMapSelfReview     ResponseMapType = "SelfReviewResponseMap"
)

// ResponseMap pairs a reviewer with a reviewee. For review maps the reviewee
// is a team; for the other types it is a participant.
type ResponseMap struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AssignmentID uint            `gorm:"not null;index" json:"assignment_id"`
	ReviewerID   uint            `gorm:"not null;index" json:"reviewer_id"`
	RevieweeID   uint            `gorm:"not null;index" json:"reviewee_id"`
	Type         ResponseMapType `gorm:"size:64;not null;index" json:"type"`
	CreatedAt    time.Time       `json:"created_at"`
	Responses    []Response      `gorm:"foreignKey:MapID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses,omitempty"`
}

// Response is one revision of the answers submitted for a response map.
type Response struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	MapID       uint         `gorm:"not null;index" json:"map_id"`
	Round       *int         `json:"round"`
	Version     int          `gorm:"not null;default:1" json:"version"`
	IsSubmitted bool         `gorm:"not null;default:false" json:"is_submitted"`
	Comments    string       `gorm:"type:text" json:"additional_comment"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Answers     []Answer     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
	Map         *ResponseMap `gorm:"foreignKey:MapID" json:"-"`
}

// Answer holds the value given to a single question. A nil Answer means the
// question was left unanswered.
type Answer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ResponseID uint   `gorm:"not null;index" json:"response_id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Answer     *int   `json:"answer"`
	Comments   string `gorm:"type:text" json:"comments"`
}
