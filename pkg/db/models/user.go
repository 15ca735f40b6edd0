package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/raedalotaibi/mashary-backend/pkg/enums"
)

// User is an internal operator. Role decides whether the user holds the
// global project-view permission.
type User struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string           `gorm:"column:name;type:text;not null"`
	Email     string           `gorm:"column:email;type:text;not null;uniqueIndex"`
	Role      enums.MemberRole `gorm:"column:role;type:member_role;not null;default:'member'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
