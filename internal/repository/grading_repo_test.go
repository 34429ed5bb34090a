package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/database"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func intPtr(v int) *int { return &v }

func TestAssignmentRepositoryQuestionnairesAndBindings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	assignment := models.Assignment{Name: "Wiki", RoundsOfReviews: 2, VaryingRubricsByRound: true}
	require.NoError(t, db.Create(&assignment).Error)

	second := models.Questionnaire{Name: "Round 2", Type: models.QuestionnaireTypeReview, MaxQuestionScore: 5, Questions: []models.Question{
		{Seq: 2, Txt: "b", Type: models.QuestionTypeCriterion, Weight: 1},
		{Seq: 1, Txt: "a", Type: models.QuestionTypeCriterion, Weight: 1},
	}}
	first := models.Questionnaire{Name: "Round 1", Type: models.QuestionnaireTypeReview, MaxQuestionScore: 5}
	unbound := models.Questionnaire{Name: "Other", Type: models.QuestionnaireTypeMetareview, MaxQuestionScore: 5}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&unbound).Error)

	require.NoError(t, db.Create(&models.AssignmentQuestionnaire{AssignmentID: assignment.ID, QuestionnaireID: first.ID, UsedInRound: intPtr(1), Position: 0}).Error)
	require.NoError(t, db.Create(&models.AssignmentQuestionnaire{AssignmentID: assignment.ID, QuestionnaireID: second.ID, UsedInRound: intPtr(2), Position: 1}).Error)

	questionnaires, err := repo.ListQuestionnaires(ctx, assignment.ID)
	require.NoError(t, err)
	require.Len(t, questionnaires, 2)
	require.Equal(t, "Round 1", questionnaires[0].Name)
	require.Equal(t, "Round 2", questionnaires[1].Name)
	require.Len(t, questionnaires[1].Questions, 2)
	require.Equal(t, "a", questionnaires[1].Questions[0].Txt)

	round, err := repo.RoundBinding(ctx, assignment.ID, second.ID)
	require.NoError(t, err)
	require.Equal(t, 2, *round)

	_, err = repo.RoundBinding(ctx, assignment.ID, unbound.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestResponseRepositoryListForReviewees(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResponseRepository(db)
	ctx := context.Background()

	reviewMap := models.ResponseMap{AssignmentID: 1, ReviewerID: 3, RevieweeID: 7, Type: models.ResponseMapReview}
	otherTeam := models.ResponseMap{AssignmentID: 1, ReviewerID: 3, RevieweeID: 8, Type: models.ResponseMapReview}
	teammate := models.ResponseMap{AssignmentID: 1, ReviewerID: 3, RevieweeID: 7, Type: models.ResponseMapTeammateReview}
	require.NoError(t, db.Create(&reviewMap).Error)
	require.NoError(t, db.Create(&otherTeam).Error)
	require.NoError(t, db.Create(&teammate).Error)

	submittedAt := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, db.Create(&models.Response{MapID: reviewMap.ID, Round: intPtr(1), Version: 1, IsSubmitted: true, Answers: []models.Answer{
		{QuestionID: 2, Answer: intPtr(4)},
		{QuestionID: 1, Answer: nil, Comments: "skipped"},
	}}).Error)
	require.NoError(t, db.Create(&models.Response{MapID: otherTeam.ID, Version: 1, IsSubmitted: true}).Error)
	require.NoError(t, db.Create(&models.Response{MapID: teammate.ID, Version: 1, IsSubmitted: true, UpdatedAt: submittedAt}).Error)

	responses, err := repo.ListForReviewees(ctx, 1, models.ResponseMapReview, []uint{7})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Len(t, responses[0].Answers, 2)
	require.Equal(t, uint(1), responses[0].Answers[0].QuestionID)
	require.Nil(t, responses[0].Answers[0].Answer)
	require.NotNil(t, responses[0].Map)
	require.Equal(t, uint(3), responses[0].Map.ReviewerID)

	empty, err := repo.ListForReviewees(ctx, 1, models.ResponseMapReview, nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	latest, err := repo.LatestAuthoredAt(ctx, 3, models.ResponseMapMetareview)
	require.NoError(t, err)
	require.Nil(t, latest)

	latest, err = repo.LatestAuthoredAt(ctx, 3, models.ResponseMapReview)
	require.NoError(t, err)
	require.NotNil(t, latest)
}

func TestPenaltyRepositoryClaimIsSetOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPenaltyRepository(db)
	ctx := context.Background()

	assignment := models.Assignment{Name: "Essay", RoundsOfReviews: 1}
	require.NoError(t, db.Create(&assignment).Error)

	persist := func() (bool, error) {
		var claimed bool
		err := repo.WithinTransaction(ctx, func(store PenaltyStore) error {
			ok, err := store.ClaimPenaltyCalculation(ctx, assignment.ID)
			if err != nil || !ok {
				claimed = ok
				return err
			}
			claimed = true
			return store.CreatePenalty(ctx, &models.CalculatedPenalty{ParticipantID: 1, DeadlineTypeID: models.DeadlineSubmission, PenaltyPoints: 2})
		})
		return claimed, err
	}

	claimed, err := persist()
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = persist()
	require.NoError(t, err)
	require.False(t, claimed)

	penalties, err := repo.ListForParticipants(ctx, []uint{1})
	require.NoError(t, err)
	require.Len(t, penalties, 1)

	var stored models.Assignment
	require.NoError(t, db.First(&stored, assignment.ID).Error)
	require.True(t, stored.IsPenaltyCalculated)
}

func TestPenaltyRepositoryRollbackRestoresFlag(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPenaltyRepository(db)
	ctx := context.Background()

	assignment := models.Assignment{Name: "Essay", RoundsOfReviews: 1}
	require.NoError(t, db.Create(&assignment).Error)

	boom := errors.New("policy engine down")
	err := repo.WithinTransaction(ctx, func(store PenaltyStore) error {
		ok, err := store.ClaimPenaltyCalculation(ctx, assignment.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, store.CreatePenalty(ctx, &models.CalculatedPenalty{ParticipantID: 4, DeadlineTypeID: models.DeadlineReview, PenaltyPoints: 1}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	var stored models.Assignment
	require.NoError(t, db.First(&stored, assignment.ID).Error)
	require.False(t, stored.IsPenaltyCalculated)

	penalties, err := repo.ListForParticipants(ctx, []uint{4})
	require.NoError(t, err)
	require.Empty(t, penalties)
}

func TestParticipantRepositoryTeamsAndOverrides(t *testing.T) {
	db := setupTestDB(t)
	repo := NewParticipantRepository(db)
	ctx := context.Background()

	alice := models.Participant{AssignmentID: 1, UserID: 10, Handle: "alice"}
	bob := models.Participant{AssignmentID: 1, UserID: 11, Handle: "bob"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	team := models.Team{AssignmentID: 1, Name: "team-1"}
	require.NoError(t, db.Create(&team).Error)
	require.NoError(t, db.Create(&models.TeamUser{TeamID: team.ID, ParticipantID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.TeamUser{TeamID: team.ID, ParticipantID: bob.ID}).Error)

	found, err := repo.TeamForParticipant(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, team.ID, found.ID)
	require.Len(t, found.Members, 2)
	require.Equal(t, "alice", found.Members[0].Participant.Handle)

	teams, err := repo.ListTeams(ctx, 1)
	require.NoError(t, err)
	require.Len(t, teams, 1)

	byUser, err := repo.GetByUser(ctx, 1, 11)
	require.NoError(t, err)
	require.Equal(t, bob.ID, byUser.ID)

	grade := 92.5
	alice.Grade = &grade
	require.NoError(t, repo.Update(ctx, &alice))
	reloaded, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, grade, *reloaded.Grade)

	alice.Grade = nil
	require.NoError(t, repo.Update(ctx, &alice))
	reloaded, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.Grade)
}

func TestActivityLogRepositoryFiltersByAssignmentAndEntity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	entries := []models.ActivityLog{
		{AssignmentID: 1, ActorID: 9, ActorRole: "instructor", Action: models.ActivityGradeOverridden, EntityType: "participant", EntityID: 4},
		{AssignmentID: 1, ActorID: 9, ActorRole: "instructor", Action: models.ActivityTeamGradeSaved, EntityType: "team", EntityID: 2},
		{AssignmentID: 1, ActorID: 9, ActorRole: "instructor", Action: models.ActivityGradeCleared, EntityType: "participant", EntityID: 5},
		{AssignmentID: 2, ActorID: 9, ActorRole: "instructor", Action: models.ActivityGradeOverridden, EntityType: "participant", EntityID: 4},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	all, err := repo.List(ctx, ActivityLogFilter{AssignmentID: 1})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, models.ActivityGradeCleared, all[0].Action)

	participants, err := repo.List(ctx, ActivityLogFilter{AssignmentID: 1, EntityType: "participant"})
	require.NoError(t, err)
	require.Len(t, participants, 2)

	one, err := repo.List(ctx, ActivityLogFilter{AssignmentID: 1, EntityType: "participant", EntityID: uintPtr(4)})
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, uint(4), one[0].EntityID)

	latest, err := repo.List(ctx, ActivityLogFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, uint(2), latest[0].AssignmentID)
}

func uintPtr(v uint) *uint { return &v }

func TestResponseRepositorySelfReviewSubmitted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResponseRepository(db)
	ctx := context.Background()

	submitted, err := repo.SelfReviewSubmitted(ctx, 5)
	require.NoError(t, err)
	require.False(t, submitted)

	selfReview := models.ResponseMap{AssignmentID: 1, ReviewerID: 5, RevieweeID: 9, Type: models.ResponseMapSelfReview}
	require.NoError(t, db.Create(&selfReview).Error)
	require.NoError(t, db.Create(&models.Response{MapID: selfReview.ID, Version: 1, IsSubmitted: true}).Error)
	require.NoError(t, db.Create(&models.Response{MapID: selfReview.ID, Version: 2, IsSubmitted: false}).Error)

	submitted, err = repo.SelfReviewSubmitted(ctx, 5)
	require.NoError(t, err)
	require.False(t, submitted)

	require.NoError(t, db.Create(&models.Response{MapID: selfReview.ID, Version: 3, IsSubmitted: true}).Error)
	submitted, err = repo.SelfReviewSubmitted(ctx, 5)
	require.NoError(t, err)
	require.True(t, submitted)
}

func TestResponseRepositoryListForAssignmentFiltersMapTypes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResponseRepository(db)
	ctx := context.Background()

	review := models.ResponseMap{AssignmentID: 1, ReviewerID: 3, RevieweeID: 7, Type: models.ResponseMapReview}
	feedback := models.ResponseMap{AssignmentID: 1, ReviewerID: 4, RevieweeID: 3, Type: models.ResponseMapFeedback}
	teammate := models.ResponseMap{AssignmentID: 1, ReviewerID: 4, RevieweeID: 5, Type: models.ResponseMapTeammateReview}
	otherAssignment := models.ResponseMap{AssignmentID: 2, ReviewerID: 3, RevieweeID: 8, Type: models.ResponseMapReview}
	for _, responseMap := range []*models.ResponseMap{&review, &feedback, &teammate, &otherAssignment} {
		require.NoError(t, db.Create(responseMap).Error)
		require.NoError(t, db.Create(&models.Response{MapID: responseMap.ID, Version: 1}).Error)
	}

	responses, err := repo.ListForAssignment(ctx, 1, models.ResponseMapReview, models.ResponseMapFeedback)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	types := []models.ResponseMapType{responses[0].Map.Type, responses[1].Map.Type}
	require.ElementsMatch(t, []models.ResponseMapType{models.ResponseMapReview, models.ResponseMapFeedback}, types)

	none, err := repo.ListForAssignment(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, none)
}
