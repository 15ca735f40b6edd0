package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/raedalotaibi/mashary-backend/pkg/enums"
)

// ProjectManpower is one manpower resource attached to a project. Duration
// cost is derived at write time from the catalog daily cost, the estimated
// work days and the summed mission weights; the remaining cost fields are
// filled in by the recalculation engine.
type ProjectManpower struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID  uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	ManpowerID uuid.UUID `gorm:"column:manpower_id;type:uuid;not null"`
	Manpower   *Manpower `gorm:"foreignKey:ManpowerID"`

	EstimatedWorkDays int            `gorm:"column:estimated_work_days;not null;default:0"`
	ActualWorkDays    int            `gorm:"column:actual_work_days;not null;default:0"`
	Mission           pq.StringArray `gorm:"column:mission;type:text[];default:ARRAY[]::text[]"`

	DurationCost                 decimal.Decimal `gorm:"column:duration_cost;type:numeric(14,2);not null;default:0"`
	FoodAllowanceCost            decimal.Decimal `gorm:"column:food_allowance_cost;type:numeric(14,2);not null;default:0"`
	AccommodationCostPerManpower decimal.Decimal `gorm:"column:accommodation_cost_per_manpower;type:numeric(14,2);not null;default:0"`
	CarRentPerManpower           decimal.Decimal `gorm:"column:car_rent_per_manpower;type:numeric(14,2);not null;default:0"`
	OtherCosts                   decimal.Decimal `gorm:"column:other_costs;type:numeric(14,2);not null;default:0"`
	OtherCostsReason             *string         `gorm:"column:other_costs_reason;type:text"`
	TotalCost                    decimal.Decimal `gorm:"column:total_cost;type:numeric(14,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// MissionTags converts the stored text array into typed mission tags,
// silently skipping values that no longer parse.
func (pm ProjectManpower) MissionTags() []enums.MissionType {
	tags := make([]enums.MissionType, 0, len(pm.Mission))
	for _, raw := range pm.Mission {
		if tag, err := enums.ParseMissionType(raw); err == nil {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SetMissionTags stores the typed tags back into the text array column.
func (pm *ProjectManpower) SetMissionTags(tags []enums.MissionType) {
	values := make(pq.StringArray, 0, len(tags))
	for _, tag := range tags {
		values = append(values, string(tag))
	}
	pm.Mission = values
}
