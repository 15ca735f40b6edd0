package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdditionalMaterialItem is a catalog item inside an additional-material
// group. Materials referencing the same group pool the selected item costs
// and split them per unit quantity.
type AdditionalMaterialItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID       `gorm:"column:group_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;type:text;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
