package dto

import (
	"time"

	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
	"github.com/Suvodeep90/expertiza-E1792/pkg/summary"
)

// AssignmentReportResponse is the instructor-facing report for every team of an assignment.
type AssignmentReportResponse struct {
	AssignmentID          uint                            `json:"assignment_id"`
	Name                  string                          `json:"name"`
	RoundsOfReviews       int                             `json:"rounds_of_reviews"`
	VaryingRubricsByRound bool                            `json:"varying_rubrics_by_round"`
	QuestionSets          []grading.QuestionSet           `json:"question_sets"`
	Teams                 []grading.TeamScore             `json:"teams"`
	Averages              []float64                       `json:"averages"`
	AverageOfAverages     *float64                        `json:"average_of_averages"`
	StandardDeviation     *float64                        `json:"standard_deviation"`
	AverageChart          *grading.BarChart               `json:"average_chart,omitempty"`
	Penalties             map[uint]grading.PenaltySummary `json:"penalties"`
	Histogram             grading.StackedChart            `json:"histogram"`
	HistogramRange        grading.HistogramRange          `json:"histogram_range"`
	Feedback              grading.FeedbackReport          `json:"feedback"`
	GeneratedAt           time.Time                       `json:"generated_at"`
	CacheHit              bool                            `json:"cache_hit"`
}

// ParticipantReportResponse is the "view my scores" report of one participant.
type ParticipantReportResponse struct {
	ParticipantID   uint                                        `json:"participant_id"`
	AssignmentID    uint                                        `json:"assignment_id"`
	UserID          uint                                        `json:"user_id"`
	Handle          string                                      `json:"handle"`
	TeamID          *uint                                       `json:"team_id,omitempty"`
	Scores          map[grading.Category]grading.CategoryScores `json:"scores"`
	Charts          map[grading.Category]grading.BarChart       `json:"charts"`
	Penalty         grading.PenaltySummary                      `json:"penalty"`
	PenaltyRecords  []models.CalculatedPenalty                  `json:"penalty_records"`
	ComputedScore   *float64                                    `json:"computed_score"`
	FinalScore      *float64                                    `json:"final_score"`
	GradeOverridden bool                                        `json:"grade_overridden"`
	Summary         *summary.Result                             `json:"summary,omitempty"`
}

// TeamReportResponse lays out every questionnaire a team was reviewed with.
type TeamReportResponse struct {
	ParticipantID        uint               `json:"participant_id"`
	AssignmentID         uint               `json:"assignment_id"`
	TeamID               uint               `json:"team_id"`
	TeamName             string             `json:"team_name"`
	GradeForSubmission   *float64           `json:"grade_for_submission"`
	CommentForSubmission string             `json:"comment_for_submission"`
	Views                []grading.TeamView `json:"views"`
}

// ParticipantGradeRequest overrides or clears a participant's final grade.
// A nil Grade clears the override so the computed score is used.
type ParticipantGradeRequest struct {
	Grade      *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	TotalScore *float64 `json:"total_score" validate:"omitempty,gte=0"`
}

// ParticipantGradeResponse reports the outcome of a grade override.
type ParticipantGradeResponse struct {
	ParticipantID uint     `json:"participant_id"`
	Grade         *float64 `json:"grade"`
	Changed       bool     `json:"changed"`
	Message       string   `json:"message"`
}

// TeamGradeRequest sets the grade and comment a team's submission received.
type TeamGradeRequest struct {
	GradeForSubmission   *float64 `json:"grade_for_submission" validate:"required,gte=0,lte=100"`
	CommentForSubmission string   `json:"comment_for_submission" validate:"omitempty,max=5000"`
}

// TeamGradeResponse echoes the stored team grade.
type TeamGradeResponse struct {
	TeamID               uint     `json:"team_id"`
	GradeForSubmission   *float64 `json:"grade_for_submission"`
	CommentForSubmission string   `json:"comment_for_submission"`
}
