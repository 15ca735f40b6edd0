package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle is a catalog entry whose monthly running costs feed the vehicle
// association totals.
type Vehicle struct {
	ID                     uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                   string          `gorm:"column:name;type:text;not null"`
	PlateNumber            *string         `gorm:"column:plate_number;type:text"`
	RentCost               decimal.Decimal `gorm:"column:rent_cost;type:numeric(14,2);not null;default:0"`
	GasCost                decimal.Decimal `gorm:"column:gas_cost;type:numeric(14,2);not null;default:0"`
	OilCost                decimal.Decimal `gorm:"column:oil_cost;type:numeric(14,2);not null;default:0"`
	RegularMaintenanceCost decimal.Decimal `gorm:"column:regular_maintenance_cost;type:numeric(14,2);not null;default:0"`
	CreatedAt              time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// MonthlyCost sums every running-cost component for a 30-day baseline.
func (v Vehicle) MonthlyCost() decimal.Decimal {
	return v.RentCost.Add(v.GasCost).Add(v.OilCost).Add(v.RegularMaintenanceCost)
}
