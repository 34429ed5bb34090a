package grading

import (
	"sort"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// FeedbackAuthor is a team member whose submission received reviews.
type FeedbackAuthor struct {
	ParticipantID uint   `json:"participant_id"`
	Handle        string `json:"handle"`
	TeamID        uint   `json:"team_id"`
}

// FeedbackReport lists the authors of an assignment and the review revisions
// they can respond to with author feedback.
type FeedbackReport struct {
	Authors                  []FeedbackAuthor `json:"authors"`
	ReviewResponseIDs        []uint           `json:"review_response_ids,omitempty"`
	ReviewResponseIDsByRound map[int][]uint   `json:"review_response_ids_by_round,omitempty"`
	FeedbackResponseIDs      []uint           `json:"feedback_response_ids"`
}

// BuildFeedbackReport picks the latest revision of every review map, per round
// when rubrics vary, whether or not it was submitted. Rounds outside
// 1..rounds are dropped.
func BuildFeedbackReport(teams []models.Team, reviews, feedback []models.Response, rounds int, varyingByRound bool) FeedbackReport {
	report := FeedbackReport{
		Authors:             make([]FeedbackAuthor, 0),
		FeedbackResponseIDs: responseIDs(latestRevisions(feedback, false, false)),
	}

	for _, team := range teams {
		for _, member := range team.Members {
			report.Authors = append(report.Authors, FeedbackAuthor{
				ParticipantID: member.ParticipantID,
				Handle:        member.Participant.Handle,
				TeamID:        team.ID,
			})
		}
	}

	if !varyingByRound {
		report.ReviewResponseIDs = responseIDs(latestRevisions(reviews, false, false))
		return report
	}

	report.ReviewResponseIDsByRound = make(map[int][]uint, rounds)
	for round := 1; round <= rounds; round++ {
		report.ReviewResponseIDsByRound[round] = []uint{}
	}
	for _, response := range latestRevisions(reviews, true, false) {
		round := roundOf(response)
		ids, ok := report.ReviewResponseIDsByRound[round]
		if !ok {
			continue
		}
		report.ReviewResponseIDsByRound[round] = append(ids, response.ID)
	}
	for round, ids := range report.ReviewResponseIDsByRound {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		report.ReviewResponseIDsByRound[round] = ids
	}
	return report
}

func responseIDs(responses []models.Response) []uint {
	ids := make([]uint, 0, len(responses))
	for _, response := range responses {
		ids = append(ids, response.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
