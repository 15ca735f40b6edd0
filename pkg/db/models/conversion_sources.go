package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead, Opportunity and Deal are the CRM records a project can be created
// from. The engine only reads and flips their conversion flag; their CRUD
// surface lives outside this service.

type Lead struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;type:text;not null"`
	ClientID    *uuid.UUID `gorm:"column:client_id;type:uuid"`
	IsConverted bool       `gorm:"column:is_converted;not null;default:false"`
	ConvertedAt *time.Time `gorm:"column:converted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type Opportunity struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;type:text;not null"`
	ClientID    *uuid.UUID `gorm:"column:client_id;type:uuid"`
	IsConverted bool       `gorm:"column:is_converted;not null;default:false"`
	ConvertedAt *time.Time `gorm:"column:converted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type Deal struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;type:text;not null"`
	ClientID    *uuid.UUID `gorm:"column:client_id;type:uuid"`
	IsConverted bool       `gorm:"column:is_converted;not null;default:false"`
	ConvertedAt *time.Time `gorm:"column:converted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
