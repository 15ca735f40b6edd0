package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Manpower is a catalog entry for a human resource with a daily rate.
type Manpower struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;type:text;not null"`
	JobTitle  *string         `gorm:"column:job_title;type:text"`
	DailyCost decimal.Decimal `gorm:"column:daily_cost;type:numeric(14,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
