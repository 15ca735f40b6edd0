package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset is a catalog entry with current rent and buy prices. Attaching an
// asset to a project snapshots these prices onto the ProjectAsset row.
type Asset struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;type:text;not null"`
	Tag       *string         `gorm:"column:tag;type:text"`
	RentPrice decimal.Decimal `gorm:"column:rent_price;type:numeric(14,2);not null;default:0"`
	BuyPrice  decimal.Decimal `gorm:"column:buy_price;type:numeric(14,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
