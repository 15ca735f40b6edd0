package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectAsset links an asset to a project, snapshotting the catalog prices
// at attach time. Later catalog price changes do not flow back into attached
// rows; detach/re-attach is the only way to refresh a snapshot.
type ProjectAsset struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	AssetID   uuid.UUID `gorm:"column:asset_id;type:uuid;not null"`
	Asset     *Asset    `gorm:"foreignKey:AssetID"`

	RentPrice decimal.Decimal `gorm:"column:rent_price;type:numeric(14,2);not null;default:0"`
	BuyPrice  decimal.Decimal `gorm:"column:buy_price;type:numeric(14,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
