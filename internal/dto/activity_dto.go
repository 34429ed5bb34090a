package dto

import (
	"time"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// ActivityListRequest filters the grade audit trail of an assignment.
type ActivityListRequest struct {
	AssignmentID uint
	EntityType   string `validate:"omitempty,oneof=participant team"`
	EntityID     *uint
	Limit        int `validate:"omitempty,min=1,max=200"`
}

// ActivityResponse serializes one audit entry.
type ActivityResponse struct {
	ID           uint                   `json:"id"`
	AssignmentID uint                   `json:"assignment_id"`
	ActorID      uint                   `json:"actor_id"`
	ActorRole    string                 `json:"actor_role"`
	Action       string                 `json:"action"`
	EntityType   string                 `json:"entity_type"`
	EntityID     uint                   `json:"entity_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    time.Time              `json:"created_at"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range entry.Metadata {
		metadata[key] = value
	}

	return ActivityResponse{
		ID:           entry.ID,
		AssignmentID: entry.AssignmentID,
		ActorID:      entry.ActorID,
		ActorRole:    entry.ActorRole,
		Action:       entry.Action,
		EntityType:   entry.EntityType,
		EntityID:     entry.EntityID,
		Metadata:     metadata,
		CreatedAt:    entry.CreatedAt,
	}
}
