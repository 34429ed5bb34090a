package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity actions recorded for grade changes.
const (
	ActivityGradeOverridden = "participant.grade_overridden"
	ActivityGradeCleared    = "participant.grade_cleared"
	ActivityTeamGradeSaved  = "team.grade_saved"
)

// ActivityLog is the audit trail of manual grade changes made by instructors.
type ActivityLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AssignmentID uint              `gorm:"not null;index" json:"assignment_id"`
	ActorID      uint              `gorm:"not null" json:"actor_id"`
	ActorRole    string            `gorm:"size:32;not null" json:"actor_role"`
	Action       string            `gorm:"size:64;not null" json:"action"`
	EntityType   string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID     uint              `gorm:"not null" json:"entity_id"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
}
