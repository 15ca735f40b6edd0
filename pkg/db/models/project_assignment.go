package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectAssignment links an internal user to a project. Assignment grants
// read access to users without the global project-view permission and drives
// the "you were assigned" notification on draft creation.
type ProjectAssignment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:ux_project_assignments_project_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_project_assignments_project_user"`
	User      *User     `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
