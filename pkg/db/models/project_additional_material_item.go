package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectAdditionalMaterialItem joins a project to one selected
// additional-material catalog item. Replaced wholesale together with the
// ProjectMaterial set on each material-association call.
type ProjectAdditionalMaterialItem struct {
	ID                       uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID                uuid.UUID               `gorm:"column:project_id;type:uuid;not null;index"`
	AdditionalMaterialItemID uuid.UUID               `gorm:"column:additional_material_item_id;type:uuid;not null"`
	Item                     *AdditionalMaterialItem `gorm:"foreignKey:AdditionalMaterialItemID"`

	Quantity       int             `gorm:"column:quantity;not null;default:0"`
	AllocatedPrice decimal.Decimal `gorm:"column:allocated_price;type:numeric(14,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
