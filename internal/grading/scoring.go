package grading

import (
	"sort"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// Unscored is returned by a ScoreFunc when a response has no answered scored question.
const Unscored = -1.0

// ScoreFunc turns one response into a number using the question set it was answered against.
type ScoreFunc func(response models.Response, set QuestionSet) float64

// WeightedScore returns the weighted percentage of the maximum achievable score
// over the answered scored questions, or Unscored when nothing was answered.
func WeightedScore(response models.Response, set QuestionSet) float64 {
	if set.Max <= 0 {
		return Unscored
	}

	answers := answersByQuestion(response)
	weighted := 0.0
	weights := 0
	for _, question := range set.Questions {
		if !question.IsScored() {
			continue
		}
		answer, ok := answers[question.ID]
		if !ok || answer.Answer == nil {
			continue
		}
		weighted += float64(*answer.Answer * question.Weight)
		weights += question.Weight
	}

	if weights <= 0 {
		return Unscored
	}
	return weighted / float64(weights*set.Max) * 100
}

// SumScore is the unweighted sum of the answered scored questions, or Unscored
// when nothing was answered.
func SumScore(response models.Response, set QuestionSet) float64 {
	answers := answersByQuestion(response)
	total := 0.0
	answered := false
	for _, question := range set.Questions {
		if !question.IsScored() {
			continue
		}
		answer, ok := answers[question.ID]
		if !ok || answer.Answer == nil {
			continue
		}
		total += float64(*answer.Answer)
		answered = true
	}
	if !answered {
		return Unscored
	}
	return total
}

func answersByQuestion(response models.Response) map[uint]models.Answer {
	answers := make(map[uint]models.Answer, len(response.Answers))
	for _, answer := range response.Answers {
		answers[answer.QuestionID] = answer
	}
	return answers
}

// CurrentResponses keeps the latest submitted revision of each response map.
// When perRound is set, the latest revision is kept per map and round.
// The result is ordered by map then round.
func CurrentResponses(responses []models.Response, perRound bool) []models.Response {
	return latestRevisions(responses, perRound, true)
}

func latestRevisions(responses []models.Response, perRound, submittedOnly bool) []models.Response {
	type revisionKey struct {
		mapID uint
		round int
	}

	latest := make(map[revisionKey]models.Response, len(responses))
	for _, response := range responses {
		if submittedOnly && !response.IsSubmitted {
			continue
		}
		key := revisionKey{mapID: response.MapID}
		if perRound && response.Round != nil {
			key.round = *response.Round
		}
		current, ok := latest[key]
		if !ok || isNewer(response, current) {
			latest[key] = response
		}
	}

	result := make([]models.Response, 0, len(latest))
	for _, response := range latest {
		result = append(result, response)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MapID != result[j].MapID {
			return result[i].MapID < result[j].MapID
		}
		ri, rj := roundOf(result[i]), roundOf(result[j])
		if ri != rj {
			return ri < rj
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func isNewer(candidate, current models.Response) bool {
	if candidate.Version != current.Version {
		return candidate.Version > current.Version
	}
	if !candidate.UpdatedAt.Equal(current.UpdatedAt) {
		return candidate.UpdatedAt.After(current.UpdatedAt)
	}
	return candidate.ID > current.ID
}

func roundOf(response models.Response) int {
	if response.Round == nil {
		return 0
	}
	return *response.Round
}
