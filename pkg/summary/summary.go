// Package summary produces per-round narrative summaries of the reviews a team
// received, together with the score averages the summaries are based on.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Criterion is one rubric question with the scores and comments reviewers gave it.
type Criterion struct {
	QuestionID uint      `json:"question_id"`
	Text       string    `json:"text"`
	Scores     []float64 `json:"scores"`
	Comments   []string  `json:"comments"`
}

// Round groups the criteria reviewed in one review round.
type Round struct {
	Round    int         `json:"round"`
	Criteria []Criterion `json:"criteria"`
}

// Input describes the reviews to summarise.
type Input struct {
	AssignmentName string  `json:"assignment_name"`
	TeamID         uint    `json:"team_id"`
	Rounds         []Round `json:"rounds"`
}

// Result is keyed by round number.
type Result struct {
	Summary              map[int]string           `json:"summary"`
	AvgScoresByRound     map[int]float64          `json:"avg_scores_by_round"`
	AvgScoresByCriterion map[int]map[uint]float64 `json:"avg_scores_by_criterion"`
}

// Summarizer builds a Result for the given reviews.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (Result, error)
}

// Averages computes the mean score of every round and of every criterion
// within a round. Rounds or criteria without scores are omitted.
func Averages(input Input) (map[int]float64, map[int]map[uint]float64) {
	byRound := make(map[int]float64, len(input.Rounds))
	byCriterion := make(map[int]map[uint]float64, len(input.Rounds))

	for _, round := range input.Rounds {
		var roundTotal float64
		var roundCount int
		for _, criterion := range round.Criteria {
			if len(criterion.Scores) == 0 {
				continue
			}
			var total float64
			for _, score := range criterion.Scores {
				total += score
			}
			if byCriterion[round.Round] == nil {
				byCriterion[round.Round] = make(map[uint]float64)
			}
			byCriterion[round.Round][criterion.QuestionID] = total / float64(len(criterion.Scores))
			roundTotal += total
			roundCount += len(criterion.Scores)
		}
		if roundCount > 0 {
			byRound[round.Round] = roundTotal / float64(roundCount)
		}
	}

	return byRound, byCriterion
}

// OfflineSummarizer summarises reviews without calling out to a model. It is
// used when no API key is configured.
type OfflineSummarizer struct {
	// MaxComments bounds how many comments are quoted per round.
	MaxComments int
}

// NewOfflineSummarizer returns a summarizer quoting up to three comments per round.
func NewOfflineSummarizer() *OfflineSummarizer {
	return &OfflineSummarizer{MaxComments: 3}
}

// Summarize implements Summarizer.
func (s *OfflineSummarizer) Summarize(ctx context.Context, input Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	byRound, byCriterion := Averages(input)
	result := Result{
		Summary:              make(map[int]string, len(input.Rounds)),
		AvgScoresByRound:     byRound,
		AvgScoresByCriterion: byCriterion,
	}

	for _, round := range input.Rounds {
		comments := collectComments(round, s.MaxComments)
		builder := strings.Builder{}
		if avg, ok := byRound[round.Round]; ok {
			fmt.Fprintf(&builder, "Round %d averaged %.2f across %d criteria.", round.Round, avg, len(byCriterion[round.Round]))
		} else {
			fmt.Fprintf(&builder, "Round %d has no scored answers.", round.Round)
		}
		if len(comments) > 0 {
			builder.WriteString(" Reviewers noted: ")
			builder.WriteString(strings.Join(comments, " | "))
		}
		result.Summary[round.Round] = builder.String()
	}

	return result, nil
}

func collectComments(round Round, limit int) []string {
	comments := make([]string, 0)
	for _, criterion := range round.Criteria {
		for _, comment := range criterion.Comments {
			trimmed := strings.TrimSpace(comment)
			if trimmed == "" {
				continue
			}
			comments = append(comments, trimmed)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return len(comments[i]) > len(comments[j])
	})
	if limit > 0 && len(comments) > limit {
		comments = comments[:limit]
	}
	return comments
}
