package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material is a catalog entry. Quantity is the catalog's own unit count, used
// both for the row total and as this material's share weight when a grouped
// additional-material cost is spread across the group.
type Material struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string          `gorm:"column:name;type:text;not null"`
	UnitPrice            decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	Quantity             int             `gorm:"column:quantity;not null;default:0"`
	AdditionalMaterialID *uuid.UUID      `gorm:"column:additional_material_id;type:uuid;index"`
	ServiceID            *uuid.UUID      `gorm:"column:service_id;type:uuid"`
	Service              *Service        `gorm:"foreignKey:ServiceID"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
