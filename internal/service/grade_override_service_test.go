package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/Suvodeep90/expertiza-E1792/internal/dto"
	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

type overrideFixture struct {
	participants *fakeParticipantRepo
	activity     *memoryActivityRepo
	invalidator  *recordingInvalidator
	svc          GradeOverrideService
}

func newOverrideFixture() *overrideFixture {
	fixture := newReportFixture()
	activity := &memoryActivityRepo{}
	invalidator := &recordingInvalidator{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	authorizer := NewRoleAuthorizer()
	recorder := NewActivityService(activity, authorizer, validate, testLogger())

	return &overrideFixture{
		participants: fixture.participants,
		activity:     activity,
		invalidator:  invalidator,
		svc:          NewGradeOverrideService(fixture.participants, authorizer, recorder, invalidator, validate, testLogger()),
	}
}

func TestOverrideParticipantGradeStoresAndAudits(t *testing.T) {
	fixture := newOverrideFixture()

	resp, err := fixture.svc.OverrideParticipantGrade(context.Background(), 1, dto.ParticipantGradeRequest{Grade: floatPtr(92.5), TotalScore: floatPtr(80)}, instructor)
	require.NoError(t, err)
	require.True(t, resp.Changed)
	require.Equal(t, 92.5, *resp.Grade)
	require.Equal(t, "a score of 92.50 has been saved for alice", resp.Message)

	require.Equal(t, 92.5, *fixture.participants.participants[1].Grade)
	require.Len(t, fixture.activity.entries, 1)
	entry := fixture.activity.entries[0]
	require.Equal(t, models.ActivityGradeOverridden, entry.Action)
	require.Equal(t, "participant", entry.EntityType)
	require.Equal(t, uint(1), entry.EntityID)
	require.Equal(t, uint(1), entry.AssignmentID)
	require.Equal(t, RoleInstructor, entry.ActorRole)
	require.Equal(t, []uint{1}, fixture.invalidator.assignments)
}

func TestOverrideParticipantGradeMatchingTotalIsNoop(t *testing.T) {
	fixture := newOverrideFixture()

	resp, err := fixture.svc.OverrideParticipantGrade(context.Background(), 1, dto.ParticipantGradeRequest{Grade: floatPtr(80), TotalScore: floatPtr(80.001)}, instructor)
	require.NoError(t, err)
	require.False(t, resp.Changed)
	require.Nil(t, fixture.participants.participants[1].Grade)
	require.Empty(t, fixture.participants.updated)
	require.Empty(t, fixture.activity.entries)
	require.Empty(t, fixture.invalidator.assignments)
}

func TestOverrideParticipantGradeClearFallsBackToComputedScore(t *testing.T) {
	fixture := newOverrideFixture()
	alice := fixture.participants.participants[1]
	alice.Grade = floatPtr(70)
	fixture.participants.participants[1] = alice

	resp, err := fixture.svc.OverrideParticipantGrade(context.Background(), 1, dto.ParticipantGradeRequest{}, instructor)
	require.NoError(t, err)
	require.True(t, resp.Changed)
	require.Nil(t, resp.Grade)
	require.Equal(t, "the computed score will be used for alice", resp.Message)
	require.Nil(t, fixture.participants.participants[1].Grade)
	require.Equal(t, models.ActivityGradeCleared, fixture.activity.entries[0].Action)
}

func TestOverrideParticipantGradeRequiresEditCapability(t *testing.T) {
	fixture := newOverrideFixture()

	_, err := fixture.svc.OverrideParticipantGrade(context.Background(), 1, dto.ParticipantGradeRequest{Grade: floatPtr(100)}, ActivityActor{ID: 10, Role: "student"})
	require.ErrorIs(t, err, grading.ErrForbidden)
	require.Empty(t, fixture.participants.updated)
}

func TestOverrideParticipantGradeValidatesRange(t *testing.T) {
	fixture := newOverrideFixture()

	_, err := fixture.svc.OverrideParticipantGrade(context.Background(), 1, dto.ParticipantGradeRequest{Grade: floatPtr(150)}, instructor)
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
	require.Empty(t, fixture.participants.updated)
}

func TestOverrideKeepsGradeWhenAuditFails(t *testing.T) {
	fixture := newOverrideFixture()
	fixture.activity.err = errStoreDown

	resp, err := fixture.svc.OverrideParticipantGrade(context.Background(), 1, dto.ParticipantGradeRequest{Grade: floatPtr(88)}, instructor)
	require.NoError(t, err)
	require.True(t, resp.Changed)
	require.Equal(t, 88.0, *fixture.participants.participants[1].Grade)
}

func TestSaveTeamGradeSanitisesComment(t *testing.T) {
	fixture := newOverrideFixture()

	resp, err := fixture.svc.SaveTeamGrade(context.Background(), 2, dto.TeamGradeRequest{
		GradeForSubmission:   floatPtr(95),
		CommentForSubmission: "<b>Great</b> work <script>alert(1)</script>",
	}, instructor)
	require.NoError(t, err)
	require.Equal(t, uint(100), resp.TeamID)
	require.Equal(t, 95.0, *resp.GradeForSubmission)
	require.NotContains(t, resp.CommentForSubmission, "<")
	require.Contains(t, resp.CommentForSubmission, "Great work")

	require.Len(t, fixture.participants.updatedTeams, 1)
	require.Equal(t, models.ActivityTeamGradeSaved, fixture.activity.entries[0].Action)
	require.Equal(t, "team", fixture.activity.entries[0].EntityType)
	require.Equal(t, []uint{1}, fixture.invalidator.assignments)
}

func TestSaveTeamGradeRequiresGrade(t *testing.T) {
	fixture := newOverrideFixture()

	_, err := fixture.svc.SaveTeamGrade(context.Background(), 2, dto.TeamGradeRequest{CommentForSubmission: "ok"}, instructor)
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
	require.Empty(t, fixture.participants.updatedTeams)
}

func TestSaveTeamGradeWithoutTeamIsNotFound(t *testing.T) {
	fixture := newOverrideFixture()
	fixture.participants.participants[4] = models.Participant{ID: 4, AssignmentID: 1, UserID: 13}

	_, err := fixture.svc.SaveTeamGrade(context.Background(), 4, dto.TeamGradeRequest{GradeForSubmission: floatPtr(50)}, instructor)
	require.ErrorIs(t, err, grading.ErrNotFound)
}
