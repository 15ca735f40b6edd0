package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is the CRM customer a project is billed to.
type Client struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Email     *string   `gorm:"column:email;type:text"`
	Phone     *string   `gorm:"column:phone;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
