package grading

import (
	"math"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// TeamResponses carries the review responses received by one team.
type TeamResponses struct {
	TeamID    uint
	TeamName  string
	Responses []models.Response
}

// TeamScore is the aggregated review score of a team. Avg and MaxDiff are nil
// when no response could be scored.
type TeamScore struct {
	TeamID   uint      `json:"team_id"`
	TeamName string    `json:"team_name"`
	Scores   []float64 `json:"scores"`
	Avg      *float64  `json:"avg"`
	MaxDiff  *float64  `json:"max_diff"`
}

// TeamScores is the all-teams aggregation of an assignment.
type TeamScores struct {
	Teams []TeamScore `json:"teams"`
}

// AggregateTeams scores every team's current review responses. When rubrics
// vary by round each response is scored against its round's question set.
func AggregateTeams(sets QuestionSets, teams []TeamResponses, varyingByRound bool, score ScoreFunc) TeamScores {
	if score == nil {
		score = WeightedScore
	}

	result := TeamScores{Teams: make([]TeamScore, 0, len(teams))}
	for _, team := range teams {
		scores := make([]float64, 0, len(team.Responses))
		for _, response := range CurrentResponses(team.Responses, varyingByRound) {
			round := response.Round
			if !varyingByRound {
				round = nil
			}
			set, ok := sets.Lookup(CategoryReview, round)
			if !ok {
				continue
			}
			scores = append(scores, score(response, set))
		}
		scores = FilterUnscored(scores)

		teamScore := TeamScore{TeamID: team.TeamID, TeamName: team.TeamName, Scores: scores}
		if avg, ok := Mean(scores); ok {
			diff := maxDifference(scores)
			teamScore.Avg = &avg
			teamScore.MaxDiff = &diff
		}
		result.Teams = append(result.Teams, teamScore)
	}
	return result
}

// AverageVector returns the integer-truncated averages of the teams that have one.
func (t TeamScores) AverageVector() []float64 {
	averages := make([]float64, 0, len(t.Teams))
	for _, team := range t.Teams {
		if team.Avg == nil {
			continue
		}
		averages = append(averages, math.Trunc(*team.Avg))
	}
	return averages
}

func maxDifference(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	minimum, maximum := scores[0], scores[0]
	for _, s := range scores[1:] {
		minimum = math.Min(minimum, s)
		maximum = math.Max(maximum, s)
	}
	return maximum - minimum
}

// CategoryScores holds a participant's current responses in one category and
// the chart-ready scores computed from them.
type CategoryScores struct {
	Category    Category          `json:"category"`
	Assessments []models.Response `json:"assessments"`
	Scores      []float64         `json:"scores"`
	Stats       Stats             `json:"stats"`
}

// ParticipantScores is the single-participant aggregation, keyed by category.
type ParticipantScores struct {
	Categories map[Category]CategoryScores `json:"categories"`
}

// Get returns the scores of one category.
func (p ParticipantScores) Get(category Category) (CategoryScores, bool) {
	scores, ok := p.Categories[category]
	return scores, ok
}

// AggregateParticipant scores the responses a participant received, per category.
// Categories without a resolved question set are skipped. Review responses are
// scored round by round when rubrics vary.
func AggregateParticipant(sets QuestionSets, responses map[Category][]models.Response, rounds int, varyingByRound bool, score ScoreFunc) ParticipantScores {
	if score == nil {
		score = WeightedScore
	}

	result := ParticipantScores{Categories: make(map[Category]CategoryScores)}
	for _, category := range Categories {
		if !hasCategory(sets, category) {
			continue
		}

		perRound := varyingByRound && category == CategoryReview
		current := CurrentResponses(responses[category], perRound)
		raw := make([]float64, 0, len(current))

		if perRound {
			for round := 1; round <= rounds; round++ {
				set, ok := sets.Get(RoundKey(category, round))
				if !ok {
					set, ok = sets.Get(Key(category))
				}
				if !ok {
					continue
				}
				for _, response := range current {
					if roundOf(response) != round {
						continue
					}
					raw = append(raw, score(response, set))
				}
			}
		} else if set, ok := sets.Lookup(category, nil); ok {
			for _, response := range current {
				raw = append(raw, score(response, set))
			}
		}

		scores := FilterUnscored(raw)
		result.Categories[category] = CategoryScores{
			Category:    category,
			Assessments: current,
			Scores:      scores,
			Stats:       Summarize(scores),
		}
	}
	return result
}

func hasCategory(sets QuestionSets, category Category) bool {
	for _, key := range sets.keys {
		if key.Category == category {
			return true
		}
	}
	return false
}
