package models

import "time"

// QuestionnaireType classifies a questionnaire.
type QuestionnaireType string

const (
	QuestionnaireTypeReview         QuestionnaireType = "ReviewQuestionnaire"
	QuestionnaireTypeMetareview     QuestionnaireType = "MetareviewQuestionnaire"
	QuestionnaireTypeAuthorFeedback QuestionnaireType = "AuthorFeedbackQuestionnaire"
	QuestionnaireTypeTeammateReview QuestionnaireType = "TeammateReviewQuestionnaire"
)

// Questionnaire is an ordered rubric of questions scored within [MinQuestionScore, MaxQuestionScore].
type Questionnaire struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"size:255;not null" json:"name"`
	Type             QuestionnaireType `gorm:"size:64;not null" json:"type"`
	MinQuestionScore int               `gorm:"not null;default:0" json:"min_question_score"`
	MaxQuestionScore int               `gorm:"not null;default:5" json:"max_question_score"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Questions        []Question        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// Question kinds that carry a numeric answer.
const (
	QuestionTypeCriterion = "Criterion"
	QuestionTypeScale     = "Scale"
	QuestionTypeCheckbox  = "Checkbox"
	QuestionTypeTextArea  = "TextArea"
	QuestionTypeHeader    = "SectionHeader"
)

// Question belongs to a questionnaire and is identified within it by Seq.
type Question struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	QuestionnaireID uint    `gorm:"not null;index" json:"questionnaire_id"`
	Seq             float64 `gorm:"not null;default:0" json:"seq"`
	Txt             string  `gorm:"type:text" json:"txt"`
	Type            string  `gorm:"size:32;not null;default:Criterion" json:"type"`
	Weight          int     `gorm:"not null;default:1" json:"weight"`
}

// IsScored reports whether the question contributes to a numeric score.
func (q Question) IsScored() bool {
	return q.Type == QuestionTypeCriterion || q.Type == QuestionTypeScale
}
