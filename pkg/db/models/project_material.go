package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectMaterial is one material line attached to a project. The whole set
// is destroyed and recreated on every material-association call; rows are
// never patched in place.
type ProjectMaterial struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID  uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	MaterialID uuid.UUID `gorm:"column:material_id;type:uuid;not null"`
	Material   *Material `gorm:"foreignKey:MaterialID"`

	MarginCommission        decimal.Decimal `gorm:"column:margin_commission;type:numeric(14,2);not null;default:0"`
	AdditionalMaterialPrice decimal.Decimal `gorm:"column:additional_material_price;type:numeric(14,2);not null;default:0"`
	MaterialCost            decimal.Decimal `gorm:"column:material_cost;type:numeric(14,2);not null;default:0"`
	TotalMaterialCost       decimal.Decimal `gorm:"column:total_material_cost;type:numeric(14,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
