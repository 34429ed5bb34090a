package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
	"github.com/Suvodeep90/expertiza-E1792/pkg/summary"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func uintPtr(v uint) *uint { return &v }

type bindingKey struct {
	assignmentID    uint
	questionnaireID uint
}

type fakeAssignmentRepo struct {
	assignments    map[uint]models.Assignment
	questionnaires map[uint][]models.Questionnaire
	bindings       map[bindingKey]*int
	dueDates       map[uint][]models.DueDate
	err            error
	calls          int
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	f.calls++
	if f.err != nil {
		return models.Assignment{}, f.err
	}
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) ListQuestionnaires(_ context.Context, assignmentID uint) ([]models.Questionnaire, error) {
	f.calls++
	return append([]models.Questionnaire(nil), f.questionnaires[assignmentID]...), nil
}

func (f *fakeAssignmentRepo) RoundBinding(_ context.Context, assignmentID, questionnaireID uint) (*int, error) {
	round, ok := f.bindings[bindingKey{assignmentID, questionnaireID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return round, nil
}

func (f *fakeAssignmentRepo) ListDueDates(_ context.Context, assignmentID uint) ([]models.DueDate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.dueDates[assignmentID], nil
}

type fakeParticipantRepo struct {
	participants map[uint]models.Participant
	teams        []models.Team
	updated      []models.Participant
	updatedTeams []models.Team
}

func (f *fakeParticipantRepo) GetByID(_ context.Context, id uint) (models.Participant, error) {
	participant, ok := f.participants[id]
	if !ok {
		return models.Participant{}, gorm.ErrRecordNotFound
	}
	return participant, nil
}

func (f *fakeParticipantRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.Participant, error) {
	result := make([]models.Participant, 0)
	for _, participant := range f.participants {
		if participant.AssignmentID == assignmentID {
			result = append(result, participant)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeParticipantRepo) GetByUser(_ context.Context, assignmentID, userID uint) (models.Participant, error) {
	for _, participant := range f.participants {
		if participant.AssignmentID == assignmentID && participant.UserID == userID {
			return participant, nil
		}
	}
	return models.Participant{}, gorm.ErrRecordNotFound
}

func (f *fakeParticipantRepo) TeamForParticipant(_ context.Context, participantID uint) (models.Team, error) {
	for _, team := range f.teams {
		for _, member := range team.Members {
			if member.ParticipantID == participantID {
				return team, nil
			}
		}
	}
	return models.Team{}, gorm.ErrRecordNotFound
}

func (f *fakeParticipantRepo) ListTeams(_ context.Context, assignmentID uint) ([]models.Team, error) {
	result := make([]models.Team, 0, len(f.teams))
	for _, team := range f.teams {
		if team.AssignmentID == assignmentID {
			result = append(result, team)
		}
	}
	return result, nil
}

func (f *fakeParticipantRepo) Update(_ context.Context, participant *models.Participant) error {
	f.participants[participant.ID] = *participant
	f.updated = append(f.updated, *participant)
	return nil
}

func (f *fakeParticipantRepo) UpdateTeam(_ context.Context, team *models.Team) error {
	for i := range f.teams {
		if f.teams[i].ID == team.ID {
			f.teams[i] = *team
		}
	}
	f.updatedTeams = append(f.updatedTeams, *team)
	return nil
}

type latestKey struct {
	reviewerID uint
	mapType    models.ResponseMapType
}

type fakeResponseRepo struct {
	responses   []models.Response
	latest      map[latestKey]time.Time
	selfReviews map[uint]bool
	err         error
	calls       int
}

func (f *fakeResponseRepo) ListForReviewees(_ context.Context, assignmentID uint, mapType models.ResponseMapType, revieweeIDs []uint) ([]models.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[uint]bool, len(revieweeIDs))
	for _, id := range revieweeIDs {
		wanted[id] = true
	}
	result := make([]models.Response, 0)
	for _, response := range f.responses {
		if response.Map == nil || response.Map.AssignmentID != assignmentID || response.Map.Type != mapType {
			continue
		}
		if wanted[response.Map.RevieweeID] {
			result = append(result, response)
		}
	}
	return result, nil
}

func (f *fakeResponseRepo) ListForAssignment(_ context.Context, assignmentID uint, mapTypes ...models.ResponseMapType) ([]models.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[models.ResponseMapType]bool, len(mapTypes))
	for _, mapType := range mapTypes {
		wanted[mapType] = true
	}
	result := make([]models.Response, 0)
	for i := len(f.responses) - 1; i >= 0; i-- {
		response := f.responses[i]
		if response.Map != nil && response.Map.AssignmentID == assignmentID && wanted[response.Map.Type] {
			result = append(result, response)
		}
	}
	return result, nil
}

func (f *fakeResponseRepo) SelfReviewSubmitted(_ context.Context, participantID uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.selfReviews[participantID], nil
}

func (f *fakeResponseRepo) LatestAuthoredAt(_ context.Context, reviewerID uint, mapType models.ResponseMapType) (*time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	at, ok := f.latest[latestKey{reviewerID, mapType}]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

type fakePenaltyRepo struct {
	policies   map[uint]models.LatePolicy
	calculated map[uint]bool
	rows       []models.CalculatedPenalty
	createErr  error
}

func newFakePenaltyRepo(policies ...models.LatePolicy) *fakePenaltyRepo {
	repo := &fakePenaltyRepo{policies: map[uint]models.LatePolicy{}, calculated: map[uint]bool{}}
	for _, policy := range policies {
		repo.policies[policy.ID] = policy
	}
	return repo
}

func (f *fakePenaltyRepo) GetLatePolicy(_ context.Context, id uint) (models.LatePolicy, error) {
	policy, ok := f.policies[id]
	if !ok {
		return models.LatePolicy{}, gorm.ErrRecordNotFound
	}
	return policy, nil
}

func (f *fakePenaltyRepo) ListForParticipants(_ context.Context, participantIDs []uint) ([]models.CalculatedPenalty, error) {
	wanted := make(map[uint]bool, len(participantIDs))
	for _, id := range participantIDs {
		wanted[id] = true
	}
	result := make([]models.CalculatedPenalty, 0)
	for _, row := range f.rows {
		if wanted[row.ParticipantID] {
			result = append(result, row)
		}
	}
	return result, nil
}

// WithinTransaction stages writes and applies them only when fn succeeds.
func (f *fakePenaltyRepo) WithinTransaction(ctx context.Context, fn func(store repository.PenaltyStore) error) error {
	tx := &fakePenaltyTx{repo: f, claimed: map[uint]bool{}}
	if err := fn(tx); err != nil {
		return err
	}
	for id := range tx.claimed {
		f.calculated[id] = true
	}
	f.rows = append(f.rows, tx.rows...)
	return nil
}

type fakePenaltyTx struct {
	repo    *fakePenaltyRepo
	claimed map[uint]bool
	rows    []models.CalculatedPenalty
}

func (t *fakePenaltyTx) ClaimPenaltyCalculation(_ context.Context, assignmentID uint) (bool, error) {
	if t.repo.calculated[assignmentID] || t.claimed[assignmentID] {
		return false, nil
	}
	t.claimed[assignmentID] = true
	return true, nil
}

func (t *fakePenaltyTx) CreatePenalty(_ context.Context, penalty *models.CalculatedPenalty) error {
	if t.repo.createErr != nil {
		return t.repo.createErr
	}
	t.rows = append(t.rows, *penalty)
	return nil
}

type fakePolicy struct {
	points map[uint]grading.PenaltySet
	err    error
	calls  int
}

func (f *fakePolicy) ComputePenalty(_ context.Context, _ models.Assignment, participant models.Participant, deadline models.DeadlineType, _ models.LatePolicy) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.points[participant.ID].For(deadline), nil
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

type fakePenaltyService struct {
	summaries map[uint]grading.PenaltySummary
	calls     int
}

func (f *fakePenaltyService) CalculateAll(_ context.Context, _ models.Assignment) (map[uint]grading.PenaltySummary, error) {
	f.calls++
	return f.summaries, nil
}

type fakeSummarizer struct {
	inputs []summary.Input
	err    error
}

func (f *fakeSummarizer) Summarize(_ context.Context, input summary.Input) (summary.Result, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return summary.Result{}, f.err
	}
	byRound, byCriterion := summary.Averages(input)
	return summary.Result{Summary: map[int]string{1: "solid work"}, AvgScoresByRound: byRound, AvgScoresByCriterion: byCriterion}, nil
}

type memoryActivityRepo struct {
	entries []models.ActivityLog
	filters []repository.ActivityLogFilter
	err     error
}

func (m *memoryActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	m.filters = append(m.filters, filter)
	return append([]models.ActivityLog(nil), m.entries...), nil
}

type recordingInvalidator struct {
	assignments []uint
}

func (r *recordingInvalidator) InvalidateAssignment(_ context.Context, assignmentID uint) {
	r.assignments = append(r.assignments, assignmentID)
}

var errStoreDown = errors.New("connection refused")
