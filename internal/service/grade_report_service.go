package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/dto"
	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
	"github.com/Suvodeep90/expertiza-E1792/internal/observability"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
	"github.com/Suvodeep90/expertiza-E1792/pkg/summary"
)

const reportTracerName = "github.com/Suvodeep90/expertiza-E1792/internal/service/grade_report"

// GradeReportService composes question sets, scores, penalties and charts into reports.
type GradeReportService interface {
	BuildAssignmentReport(ctx context.Context, assignmentID uint, actor ActivityActor) (dto.AssignmentReportResponse, error)
	BuildParticipantReport(ctx context.Context, participantID uint, actor ActivityActor) (dto.ParticipantReportResponse, error)
	BuildTeamReport(ctx context.Context, participantID uint, actor ActivityActor) (dto.TeamReportResponse, error)
	CanViewTeam(ctx context.Context, participantID uint, actor ActivityActor) (bool, error)
	InvalidateAssignment(ctx context.Context, assignmentID uint)
}

// GradeReportRepositories groups the stores reports are read from.
type GradeReportRepositories struct {
	Assignments  repository.AssignmentRepository
	Participants repository.ParticipantRepository
	Responses    repository.ResponseRepository
	Penalties    repository.PenaltyRepository
}

type gradeReportService struct {
	assignments  repository.AssignmentRepository
	participants repository.ParticipantRepository
	responses    repository.ResponseRepository
	penaltyRows  repository.PenaltyRepository
	penalties    PenaltyService
	authorizer   Authorizer
	summarizer   summary.Summarizer
	cache        *redis.Client
	cacheTTL     time.Duration
	score        grading.ScoreFunc
	logger       zerolog.Logger
	now          func() time.Time
}

// NewGradeReportService constructs the report orchestrator. cache and summarizer may be nil.
// A non-positive ttl disables the report cache.
func NewGradeReportService(repos GradeReportRepositories, penalties PenaltyService, authorizer Authorizer, summarizer summary.Summarizer, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) GradeReportService {
	if ttl <= 0 {
		cache = nil
	}
	return &gradeReportService{
		assignments:  repos.Assignments,
		participants: repos.Participants,
		responses:    repos.Responses,
		penaltyRows:  repos.Penalties,
		penalties:    penalties,
		authorizer:   authorizer,
		summarizer:   summarizer,
		cache:        cache,
		cacheTTL:     ttl,
		score:        grading.WeightedScore,
		logger:       logger.With().Str("component", "grade_report_service").Logger(),
		now:          time.Now,
	}
}

func assignmentReportCacheKey(assignmentID uint) string {
	return fmt.Sprintf("grades:report:%d", assignmentID)
}

// gradingContext is the resolved assignment every report starts from.
type gradingContext struct {
	assignment     models.Assignment
	questionnaires []models.Questionnaire
	sets           grading.QuestionSets
}

func (g gradingContext) questionnaireFor(set grading.QuestionSet) models.Questionnaire {
	for _, questionnaire := range g.questionnaires {
		if questionnaire.ID == set.QuestionnaireID {
			questionnaire.Questions = set.Questions
			return questionnaire
		}
	}
	return models.Questionnaire{
		ID:               set.QuestionnaireID,
		MinQuestionScore: set.Min,
		MaxQuestionScore: set.Max,
		Questions:        set.Questions,
	}
}

func (g gradingContext) hasCategory(category grading.Category) bool {
	for _, key := range g.sets.Keys() {
		if key.Category == category {
			return true
		}
	}
	return false
}

func (s *gradeReportService) resolve(ctx context.Context, assignmentID uint) (gradingContext, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return gradingContext{}, storeError(fmt.Sprintf("assignment %d", assignmentID), err)
	}
	return s.resolveAssignment(ctx, assignment)
}

func (s *gradeReportService) resolveAssignment(ctx context.Context, assignment models.Assignment) (gradingContext, error) {
	questionnaires, err := s.assignments.ListQuestionnaires(ctx, assignment.ID)
	if err != nil {
		return gradingContext{}, storeError("list questionnaires", err)
	}

	sets, err := grading.ResolveQuestionSets(ctx, assignment, questionnaires, roundBindings{repo: s.assignments})
	if err != nil {
		return gradingContext{}, err
	}

	return gradingContext{assignment: assignment, questionnaires: questionnaires, sets: sets}, nil
}

func (s *gradeReportService) BuildAssignmentReport(ctx context.Context, assignmentID uint, actor ActivityActor) (dto.AssignmentReportResponse, error) {
	tracer := otel.Tracer(reportTracerName)
	ctx, span := tracer.Start(ctx, "reports.assignment")
	span.SetAttributes(attribute.Int64("assignment.id", int64(assignmentID)))
	defer span.End()
	start := time.Now()

	if !s.authorizer.IsAuthorized(ctx, actor.Role, assignmentID, CapabilityViewGrades) {
		span.SetStatus(codes.Error, "forbidden")
		s.observe("assignment", grading.ErrForbidden, start)
		return dto.AssignmentReportResponse{}, fmt.Errorf("assignment %d report for role %q: %w", assignmentID, actor.Role, grading.ErrForbidden)
	}

	// A cached report keeps its scores and penalties until the ttl expires.
	// Only grade overrides invalidate it.
	cacheKey := assignmentReportCacheKey(assignmentID)
	if cached, ok := s.readCachedReport(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("report.cache_hit", true))
		s.observe("assignment", nil, start)
		return cached, nil
	}

	report, err := s.buildAssignmentReport(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build_assignment_report_failed")
		s.observe("assignment", err, start)
		return dto.AssignmentReportResponse{}, err
	}

	span.SetAttributes(attribute.Int("report.teams", len(report.Teams)))
	s.storeCachedReport(ctx, cacheKey, report)
	s.observe("assignment", nil, start)
	return report, nil
}

func (s *gradeReportService) buildAssignmentReport(ctx context.Context, assignmentID uint) (dto.AssignmentReportResponse, error) {
	gc, err := s.resolve(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentReportResponse{}, err
	}
	assignment := gc.assignment

	teams, err := s.participants.ListTeams(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentReportResponse{}, storeError("list teams", err)
	}

	teamIDs := make([]uint, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
	}

	responses, err := s.responses.ListForReviewees(ctx, assignment.ID, models.ResponseMapReview, teamIDs)
	if err != nil {
		return dto.AssignmentReportResponse{}, storeError("list review responses", err)
	}
	byTeam := groupByReviewee(responses)

	teamResponses := make([]grading.TeamResponses, 0, len(teams))
	for _, team := range teams {
		teamResponses = append(teamResponses, grading.TeamResponses{
			TeamID:    team.ID,
			TeamName:  team.Name,
			Responses: byTeam[team.ID],
		})
	}

	teamScores := grading.AggregateTeams(gc.sets, teamResponses, assignment.VaryingRubricsByRound, s.score)
	averages := teamScores.AverageVector()

	report := dto.AssignmentReportResponse{
		AssignmentID:          assignment.ID,
		Name:                  assignment.Name,
		RoundsOfReviews:       assignment.Rounds(),
		VaryingRubricsByRound: assignment.VaryingRubricsByRound,
		QuestionSets:          gc.sets.All(),
		Teams:                 teamScores.Teams,
		Averages:              averages,
		GeneratedAt:           s.now().UTC(),
	}
	if mean, ok := grading.Mean(averages); ok {
		report.AverageOfAverages = &mean
	}
	if deviation, ok := grading.StandardDeviation(averages); ok {
		report.StandardDeviation = &deviation
	}
	if chart, ok := grading.NewBarChart(averages, grading.SummaryBarChart); ok {
		report.AverageChart = &chart
	}

	penalties, err := s.penalties.CalculateAll(ctx, assignment)
	if err != nil {
		return dto.AssignmentReportResponse{}, err
	}
	report.Penalties = penalties

	rng := grading.ReviewHistogramRange(assignment, gc.questionnaires)
	rubricScores := make([][]grading.RoundRubricScores, 0, len(teamResponses))
	if assignment.VaryingRubricsByRound {
		for _, team := range teamResponses {
			rubricScores = append(rubricScores, grading.RubricScores(roundViews(gc, team.Responses)))
		}
	}
	report.Histogram = grading.NewStackedChart(grading.BuildHistogram(rng, assignment.Rounds(), rubricScores))
	report.HistogramRange = rng

	revisions, err := s.responses.ListForAssignment(ctx, assignment.ID, models.ResponseMapReview, models.ResponseMapFeedback)
	if err != nil {
		return dto.AssignmentReportResponse{}, storeError("list review and feedback revisions", err)
	}
	var reviews, feedback []models.Response
	for _, revision := range revisions {
		if revision.Map != nil && revision.Map.Type == models.ResponseMapFeedback {
			feedback = append(feedback, revision)
			continue
		}
		reviews = append(reviews, revision)
	}
	report.Feedback = grading.BuildFeedbackReport(teams, reviews, feedback, assignment.Rounds(), assignment.VaryingRubricsByRound)

	return report, nil
}

// roundViews lays out a team's current review responses once per round-bound rubric.
func roundViews(gc gradingContext, responses []models.Response) []grading.TeamView {
	rounds := gc.assignment.Rounds()
	reviewers := reviewerResponses(grading.CurrentResponses(responses, true))
	views := make([]grading.TeamView, 0, rounds)
	for round := 1; round <= rounds; round++ {
		set, ok := gc.sets.Get(grading.RoundKey(grading.CategoryReview, round))
		if !ok {
			continue
		}
		current := round
		views = append(views, grading.BuildTeamView(gc.questionnaireFor(set), &current, rounds, nil, reviewers))
	}
	return views
}

func (s *gradeReportService) BuildParticipantReport(ctx context.Context, participantID uint, actor ActivityActor) (dto.ParticipantReportResponse, error) {
	tracer := otel.Tracer(reportTracerName)
	ctx, span := tracer.Start(ctx, "reports.participant")
	span.SetAttributes(attribute.Int64("participant.id", int64(participantID)))
	defer span.End()
	start := time.Now()

	report, err := s.buildParticipantReport(ctx, participantID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build_participant_report_failed")
	}
	s.observe("participant", err, start)
	return report, err
}

func (s *gradeReportService) buildParticipantReport(ctx context.Context, participantID uint, actor ActivityActor) (dto.ParticipantReportResponse, error) {
	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return dto.ParticipantReportResponse{}, storeError(fmt.Sprintf("participant %d", participantID), err)
	}

	staff := s.authorizer.IsAuthorized(ctx, actor.Role, participant.AssignmentID, CapabilityViewGrades)
	if participant.UserID != actor.ID && !staff {
		return dto.ParticipantReportResponse{}, fmt.Errorf("participant %d report for user %d: %w", participantID, actor.ID, grading.ErrForbidden)
	}

	assignment, err := s.assignments.GetByID(ctx, participant.AssignmentID)
	if err != nil {
		return dto.ParticipantReportResponse{}, storeError(fmt.Sprintf("assignment %d", participant.AssignmentID), err)
	}
	if !staff {
		if err := s.requireSubmittedSelfReview(ctx, assignment, participant); err != nil {
			return dto.ParticipantReportResponse{}, err
		}
	}

	gc, err := s.resolveAssignment(ctx, assignment)
	if err != nil {
		return dto.ParticipantReportResponse{}, err
	}

	team, hasTeam, err := s.teamFor(ctx, participant.ID)
	if err != nil {
		return dto.ParticipantReportResponse{}, err
	}

	received := make(map[grading.Category][]models.Response, len(grading.Categories))
	for _, category := range grading.Categories {
		if !gc.hasCategory(category) {
			continue
		}
		revieweeIDs := []uint{participant.ID}
		if category == grading.CategoryReview {
			if !hasTeam {
				continue
			}
			revieweeIDs = []uint{team.ID}
		}
		responses, err := s.responses.ListForReviewees(ctx, gc.assignment.ID, category.MapType(), revieweeIDs)
		if err != nil {
			return dto.ParticipantReportResponse{}, storeError(fmt.Sprintf("list %s responses", category), err)
		}
		received[category] = responses
	}

	scores := grading.AggregateParticipant(gc.sets, received, gc.assignment.Rounds(), gc.assignment.VaryingRubricsByRound, s.score)

	report := dto.ParticipantReportResponse{
		ParticipantID: participant.ID,
		AssignmentID:  participant.AssignmentID,
		UserID:        participant.UserID,
		Handle:        participant.Handle,
		Scores:        scores.Categories,
		Charts:        make(map[grading.Category]grading.BarChart, len(scores.Categories)),
	}
	if hasTeam {
		teamID := team.ID
		report.TeamID = &teamID
	}
	for category, categoryScores := range scores.Categories {
		if chart, ok := grading.NewBarChart(categoryScores.Scores, grading.DefaultBarChart); ok {
			report.Charts[category] = chart
		}
	}

	penalties, err := s.penalties.CalculateAll(ctx, gc.assignment)
	if err != nil {
		return dto.ParticipantReportResponse{}, err
	}
	report.Penalty = penalties[participant.ID]

	records, err := s.penaltyRows.ListForParticipants(ctx, []uint{participant.ID})
	if err != nil {
		return dto.ParticipantReportResponse{}, storeError("list persisted penalties", err)
	}
	report.PenaltyRecords = records

	if review, ok := scores.Get(grading.CategoryReview); ok && review.Stats.Avg != nil {
		computed := *review.Stats.Avg
		report.ComputedScore = &computed
	}
	switch {
	case participant.Grade != nil:
		grade := *participant.Grade
		report.FinalScore = &grade
		report.GradeOverridden = true
	case report.ComputedScore != nil:
		final := *report.ComputedScore - report.Penalty.TotalPenalty
		if final < 0 {
			final = 0
		}
		report.FinalScore = &final
	}

	if s.summarizer != nil && hasTeam && len(received[grading.CategoryReview]) > 0 {
		input := summaryInput(gc, team, received[grading.CategoryReview])
		result, err := s.summarizer.Summarize(ctx, input)
		if err != nil {
			return dto.ParticipantReportResponse{}, fmt.Errorf("%w: review summary: %w", grading.ErrDependency, err)
		}
		report.Summary = &result
	}

	return report, nil
}

// requireSubmittedSelfReview keeps participants of self-reviewed assignments
// from seeing their scores until their own self-review is submitted.
func (s *gradeReportService) requireSubmittedSelfReview(ctx context.Context, assignment models.Assignment, participant models.Participant) error {
	if !assignment.IsSelfReviewEnabled {
		return nil
	}
	submitted, err := s.responses.SelfReviewSubmitted(ctx, participant.ID)
	if err != nil {
		return storeError("load self-review", err)
	}
	if !submitted {
		return fmt.Errorf("participant %d has not submitted a self-review: %w", participant.ID, grading.ErrForbidden)
	}
	return nil
}

func (s *gradeReportService) BuildTeamReport(ctx context.Context, participantID uint, actor ActivityActor) (dto.TeamReportResponse, error) {
	tracer := otel.Tracer(reportTracerName)
	ctx, span := tracer.Start(ctx, "reports.team")
	span.SetAttributes(attribute.Int64("participant.id", int64(participantID)))
	defer span.End()
	start := time.Now()

	report, err := s.buildTeamReport(ctx, participantID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build_team_report_failed")
	}
	s.observe("team", err, start)
	return report, err
}

func (s *gradeReportService) buildTeamReport(ctx context.Context, participantID uint, actor ActivityActor) (dto.TeamReportResponse, error) {
	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return dto.TeamReportResponse{}, storeError(fmt.Sprintf("participant %d", participantID), err)
	}

	allowed, err := s.canViewTeam(ctx, participant, actor)
	if err != nil {
		return dto.TeamReportResponse{}, err
	}
	if !allowed {
		return dto.TeamReportResponse{}, fmt.Errorf("team of participant %d for user %d: %w", participantID, actor.ID, grading.ErrForbidden)
	}

	gc, err := s.resolve(ctx, participant.AssignmentID)
	if err != nil {
		return dto.TeamReportResponse{}, err
	}

	team, hasTeam, err := s.teamFor(ctx, participant.ID)
	if err != nil {
		return dto.TeamReportResponse{}, err
	}
	if !hasTeam {
		return dto.TeamReportResponse{}, fmt.Errorf("team of participant %d: %w", participantID, grading.ErrNotFound)
	}

	members := make([]models.Participant, 0, len(team.Members))
	for _, member := range team.Members {
		members = append(members, member.Participant)
	}

	report := dto.TeamReportResponse{
		ParticipantID:        participant.ID,
		AssignmentID:         gc.assignment.ID,
		TeamID:               team.ID,
		TeamName:             team.Name,
		GradeForSubmission:   team.GradeForSubmission,
		CommentForSubmission: team.CommentForSubmission,
		Views:                make([]grading.TeamView, 0, gc.sets.Len()),
	}

	loaded := make(map[grading.Category][]models.Response)
	for _, set := range gc.sets.All() {
		category := set.Key.Category
		responses, ok := loaded[category]
		if !ok {
			revieweeIDs := []uint{participant.ID}
			if category == grading.CategoryReview {
				revieweeIDs = []uint{team.ID}
			}
			responses, err = s.responses.ListForReviewees(ctx, gc.assignment.ID, category.MapType(), revieweeIDs)
			if err != nil {
				return dto.TeamReportResponse{}, storeError(fmt.Sprintf("list %s responses", category), err)
			}
			loaded[category] = responses
		}

		perRound := gc.assignment.VaryingRubricsByRound && category == grading.CategoryReview
		var round *int
		if set.Key.Round > 0 {
			value := set.Key.Round
			round = &value
		}
		view := grading.BuildTeamView(gc.questionnaireFor(set), round, gc.assignment.Rounds(), members, reviewerResponses(grading.CurrentResponses(responses, perRound)))
		report.Views = append(report.Views, view)
	}

	return report, nil
}

func (s *gradeReportService) CanViewTeam(ctx context.Context, participantID uint, actor ActivityActor) (bool, error) {
	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return false, storeError(fmt.Sprintf("participant %d", participantID), err)
	}
	return s.canViewTeam(ctx, participant, actor)
}

// canViewTeam lets the instructor tier see any team and a student only their own.
// Teammates count as the same student only on team assignments.
func (s *gradeReportService) canViewTeam(ctx context.Context, participant models.Participant, actor ActivityActor) (bool, error) {
	if s.authorizer.IsAuthorized(ctx, actor.Role, participant.AssignmentID, CapabilityViewGrades) {
		return true, nil
	}
	if CanonicalRole(actor.Role) != RoleStudent {
		return false, nil
	}
	if participant.UserID == actor.ID {
		return true, nil
	}

	assignment, err := s.assignments.GetByID(ctx, participant.AssignmentID)
	if err != nil {
		return false, storeError(fmt.Sprintf("assignment %d", participant.AssignmentID), err)
	}
	if !assignment.IsTeamAssignment() {
		return false, nil
	}

	viewer, err := s.participants.GetByUser(ctx, participant.AssignmentID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, storeError("load viewer participant", err)
	}

	viewerTeam, ok, err := s.teamFor(ctx, viewer.ID)
	if err != nil || !ok {
		return false, err
	}
	team, ok, err := s.teamFor(ctx, participant.ID)
	if err != nil || !ok {
		return false, err
	}
	return team.ID == viewerTeam.ID, nil
}

func (s *gradeReportService) InvalidateAssignment(ctx context.Context, assignmentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, assignmentReportCacheKey(assignmentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to invalidate report cache")
	}
}

func (s *gradeReportService) teamFor(ctx context.Context, participantID uint) (models.Team, bool, error) {
	team, err := s.participants.TeamForParticipant(ctx, participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Team{}, false, nil
		}
		return models.Team{}, false, storeError("load team", err)
	}
	return team, true, nil
}

func (s *gradeReportService) readCachedReport(ctx context.Context, key string) (dto.AssignmentReportResponse, bool) {
	if s.cache == nil {
		return dto.AssignmentReportResponse{}, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read report cache")
		}
		observability.ReportCacheLookups().WithLabelValues("miss").Inc()
		return dto.AssignmentReportResponse{}, false
	}

	var report dto.AssignmentReportResponse
	if err := json.Unmarshal([]byte(cached), &report); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached report")
		observability.ReportCacheLookups().WithLabelValues("miss").Inc()
		return dto.AssignmentReportResponse{}, false
	}

	observability.ReportCacheLookups().WithLabelValues("hit").Inc()
	report.CacheHit = true
	return report, true
}

func (s *gradeReportService) storeCachedReport(ctx context.Context, key string, report dto.AssignmentReportResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode report for cache")
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store report cache")
	}
}

func (s *gradeReportService) observe(kind string, err error, start time.Time) {
	observability.ReportBuilds().WithLabelValues(kind, outcomeOf(err)).Inc()
	observability.ReportBuildLatency().WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, grading.ErrForbidden):
		return "forbidden"
	case errors.Is(err, grading.ErrNotFound):
		return "not_found"
	case errors.Is(err, grading.ErrConfiguration):
		return "configuration_error"
	default:
		return "error"
	}
}

func groupByReviewee(responses []models.Response) map[uint][]models.Response {
	grouped := make(map[uint][]models.Response)
	for _, response := range responses {
		if response.Map == nil {
			continue
		}
		grouped[response.Map.RevieweeID] = append(grouped[response.Map.RevieweeID], response)
	}
	return grouped
}

func reviewerResponses(responses []models.Response) []grading.ReviewerResponse {
	entries := make([]grading.ReviewerResponse, 0, len(responses))
	for _, response := range responses {
		entry := grading.ReviewerResponse{Response: response}
		if response.Map != nil {
			entry.ReviewerID = response.Map.ReviewerID
		}
		entries = append(entries, entry)
	}
	return entries
}

// summaryInput groups a team's current review answers by round and rubric question.
func summaryInput(gc gradingContext, team models.Team, responses []models.Response) summary.Input {
	varying := gc.assignment.VaryingRubricsByRound
	rounds := make(map[int]*summary.Round)
	positions := make(map[int]map[uint]int)

	for _, response := range grading.CurrentResponses(responses, varying) {
		round := 1
		if response.Round != nil && *response.Round > 0 {
			round = *response.Round
		}
		lookupRound := response.Round
		if !varying {
			lookupRound = nil
		}
		set, ok := gc.sets.Lookup(grading.CategoryReview, lookupRound)
		if !ok {
			continue
		}

		entry, ok := rounds[round]
		if !ok {
			entry = &summary.Round{Round: round}
			rounds[round] = entry
			positions[round] = make(map[uint]int)
		}

		answers := make(map[uint]models.Answer, len(response.Answers))
		for _, answer := range response.Answers {
			answers[answer.QuestionID] = answer
		}

		for _, question := range set.Questions {
			answer, ok := answers[question.ID]
			if !ok {
				continue
			}
			index, seen := positions[round][question.ID]
			if !seen {
				entry.Criteria = append(entry.Criteria, summary.Criterion{QuestionID: question.ID, Text: question.Txt})
				index = len(entry.Criteria) - 1
				positions[round][question.ID] = index
			}
			criterion := &entry.Criteria[index]
			if question.IsScored() && answer.Answer != nil {
				criterion.Scores = append(criterion.Scores, float64(*answer.Answer))
			}
			if answer.Comments != "" {
				criterion.Comments = append(criterion.Comments, answer.Comments)
			}
		}
	}

	input := summary.Input{AssignmentName: gc.assignment.Name, TeamID: team.ID, Rounds: make([]summary.Round, 0, len(rounds))}
	for _, entry := range rounds {
		input.Rounds = append(input.Rounds, *entry)
	}
	sort.Slice(input.Rounds, func(i, j int) bool {
		return input.Rounds[i].Round < input.Rounds[j].Round
	})
	return input
}
