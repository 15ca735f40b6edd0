package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/raedalotaibi/mashary-backend/pkg/enums"
)

// ActivityLog is an append-only trail of project mutations, including
// attempted edits against sealed projects.
type ActivityLog struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID            `gorm:"column:project_id;type:uuid;not null;index"`
	ActorID   uuid.UUID            `gorm:"column:actor_id;type:uuid;not null"`
	Action    enums.ActivityAction `gorm:"column:action;type:activity_action;not null"`
	Detail    *string              `gorm:"column:detail;type:text"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
