package grading

import (
	"strings"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

const longCommentWords = 10

// TeamMember is the display form of a participant on a team view.
type TeamMember struct {
	ParticipantID uint   `json:"participant_id"`
	UserID        uint   `json:"user_id"`
	Handle        string `json:"handle"`
}

// ScoreCell is one reviewer's answer to one question.
type ScoreCell struct {
	ResponseID uint   `json:"response_id"`
	ReviewerID uint   `json:"reviewer_id"`
	Value      *int   `json:"value"`
	Comment    string `json:"comment"`
}

// QuestionRow collects every reviewer's answer to a question.
type QuestionRow struct {
	Question            models.Question `json:"question"`
	Scores              []ScoreCell     `json:"scores"`
	Average             *float64        `json:"average"`
	CommentsOver10Words int             `json:"comments_over_10_words"`
}

// TeamView is the per-questionnaire table shown on a team's grade page.
type TeamView struct {
	QuestionnaireID     uint                     `json:"questionnaire_id"`
	Name                string                   `json:"name"`
	Type                models.QuestionnaireType `json:"type"`
	Round               *int                     `json:"round"`
	RoundsOfReviews     int                      `json:"rounds_of_reviews"`
	MinScore            int                      `json:"min_score"`
	MaxScore            int                      `json:"max_score"`
	Members             []TeamMember             `json:"members"`
	Rows                []QuestionRow            `json:"rows"`
	ReviewCount         int                      `json:"review_count"`
	CommentsOver10Words int                      `json:"comments_over_10_words"`
}

// ReviewerResponse couples a response with the participant who wrote it.
type ReviewerResponse struct {
	ReviewerID uint
	Response   models.Response
}

// BuildTeamView lays out questionnaire's questions against the given responses.
// When round is set only responses from that round are included.
func BuildTeamView(questionnaire models.Questionnaire, round *int, rounds int, members []models.Participant, responses []ReviewerResponse) TeamView {
	view := TeamView{
		QuestionnaireID: questionnaire.ID,
		Name:            questionnaire.Name,
		Type:            questionnaire.Type,
		Round:           round,
		RoundsOfReviews: rounds,
		MinScore:        questionnaire.MinQuestionScore,
		MaxScore:        questionnaire.MaxQuestionScore,
		Members:         make([]TeamMember, 0, len(members)),
	}

	for _, member := range members {
		view.Members = append(view.Members, TeamMember{ParticipantID: member.ID, UserID: member.UserID, Handle: member.Handle})
	}

	included := make([]ReviewerResponse, 0, len(responses))
	for _, entry := range responses {
		if round != nil && roundOf(entry.Response) != *round {
			continue
		}
		included = append(included, entry)
	}
	view.ReviewCount = len(included)

	answers := make([]map[uint]models.Answer, len(included))
	for i, entry := range included {
		answers[i] = answersByQuestion(entry.Response)
	}

	for _, question := range orderedQuestions(questionnaire.Questions) {
		row := QuestionRow{Question: question, Scores: make([]ScoreCell, 0, len(included))}
		values := make([]float64, 0, len(included))
		for i, entry := range included {
			answer, ok := answers[i][question.ID]
			if !ok {
				continue
			}
			row.Scores = append(row.Scores, ScoreCell{
				ResponseID: entry.Response.ID,
				ReviewerID: entry.ReviewerID,
				Value:      answer.Answer,
				Comment:    answer.Comments,
			})
			if answer.Answer != nil {
				values = append(values, float64(*answer.Answer))
			}
			if wordCount(answer.Comments) > longCommentWords {
				row.CommentsOver10Words++
			}
		}
		if question.IsScored() {
			if avg, ok := Mean(values); ok {
				row.Average = &avg
			}
		}
		view.CommentsOver10Words += row.CommentsOver10Words
		view.Rows = append(view.Rows, row)
	}

	return view
}

// RubricScores extracts the per-question score values of the round-bound views.
func RubricScores(views []TeamView) []RoundRubricScores {
	result := make([]RoundRubricScores, 0, len(views))
	for _, view := range views {
		if view.Round == nil {
			continue
		}
		entry := RoundRubricScores{Round: *view.Round, Questions: make([][]*int, 0, len(view.Rows))}
		for _, row := range view.Rows {
			values := make([]*int, 0, len(row.Scores))
			for _, cell := range row.Scores {
				values = append(values, cell.Value)
			}
			entry.Questions = append(entry.Questions, values)
		}
		result = append(result, entry)
	}
	return result
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
