package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// ParticipantRepository provides access to participants and their teams.
type ParticipantRepository interface {
	GetByID(ctx context.Context, id uint) (models.Participant, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Participant, error)
	GetByUser(ctx context.Context, assignmentID, userID uint) (models.Participant, error)
	TeamForParticipant(ctx context.Context, participantID uint) (models.Team, error)
	ListTeams(ctx context.Context, assignmentID uint) ([]models.Team, error)
	Update(ctx context.Context, participant *models.Participant) error
	UpdateTeam(ctx context.Context, team *models.Team) error
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository constructs the participant repository.
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) GetByID(ctx context.Context, id uint) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).First(&participant, id).Error; err != nil {
		return models.Participant{}, err
	}

	return participant, nil
}

func (r *participantRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *participantRepository) GetByUser(ctx context.Context, assignmentID, userID uint) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&participant).Error; err != nil {
		return models.Participant{}, err
	}

	return participant, nil
}

func (r *participantRepository) TeamForParticipant(ctx context.Context, participantID uint) (models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Joins("JOIN team_users tu ON tu.team_id = teams.id").
		Where("tu.participant_id = ?", participantID).
		Preload("Members", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("participant_id ASC")
		}).
		Preload("Members.Participant").
		First(&team).Error
	if err != nil {
		return models.Team{}, err
	}

	return team, nil
}

func (r *participantRepository) ListTeams(ctx context.Context, assignmentID uint) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Preload("Members", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("participant_id ASC")
		}).
		Preload("Members.Participant").
		Order("id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *participantRepository) Update(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Model(participant).Select("grade").Updates(participant).Error
}

func (r *participantRepository) UpdateTeam(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).
		Model(team).
		Select("grade_for_submission", "comment_for_submission").
		Updates(team).Error
}
