package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/raedalotaibi/mashary-backend/pkg/enums"
)

// Project is the aggregate root of the staged-build pipeline. At most one row
// with is_completed = false exists at a time; that row is the current draft.
// Every monetary column is derived by the recalculation engine except
// discount and margin_percentage, which completion stamps.
type Project struct {
	ID       uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name     string                `gorm:"column:name;type:text;not null"`
	Type     string                `gorm:"column:type;type:text"`
	Category enums.ProjectCategory `gorm:"column:category;type:project_category;not null;default:'direct'"`

	ClientID     uuid.UUID `gorm:"column:client_id;type:uuid;not null"`
	Client       *Client   `gorm:"foreignKey:ClientID"`
	DurationDays int       `gorm:"column:duration_days;not null;default:0"`

	SourceType *enums.ConversionSource `gorm:"column:source_type;type:conversion_source"`
	SourceID   *uuid.UUID              `gorm:"column:source_id;type:uuid"`

	IsCompleted        bool             `gorm:"column:is_completed;not null;default:false"`
	BuildStage         enums.BuildStage `gorm:"column:build_stage;type:build_stage;not null;default:'basic_info'"`
	Version            int64            `gorm:"column:version;not null;default:0"`
	CancellationReason *string          `gorm:"column:cancellation_reason;type:text"`
	FileRefs           pq.StringArray   `gorm:"column:file_refs;type:text[];default:ARRAY[]::text[]"`

	// Vehicle-derived totals.
	TotalCarRent            decimal.Decimal `gorm:"column:total_car_rent;type:numeric(14,2);not null;default:0"`
	TotalCarRentPerDuration decimal.Decimal `gorm:"column:total_car_rent_per_duration;type:numeric(14,2);not null;default:0"`

	// Manpower-derived totals and project-wide manpower parameters.
	AccommodationCost            decimal.Decimal `gorm:"column:accommodation_cost;type:numeric(14,2);not null;default:0"`
	FoodCostPerDay               decimal.Decimal `gorm:"column:food_cost_per_day;type:numeric(14,2);not null;default:0"`
	ManagementAdditionPercentage decimal.Decimal `gorm:"column:management_addition_percentage;type:numeric(7,2);not null;default:0"`
	ManpowerTotalCost            decimal.Decimal `gorm:"column:manpower_total_cost;type:numeric(14,2);not null;default:0"`
	FinalManpowerTotalCost       decimal.Decimal `gorm:"column:final_manpower_total_cost;type:numeric(14,2);not null;default:0"`
	ResourceCount                int             `gorm:"column:resource_count;not null;default:0"`

	// Material-derived totals.
	MaterialMargin    decimal.Decimal `gorm:"column:material_margin;type:numeric(7,2);not null;default:0"`
	TotalMaterialCost decimal.Decimal `gorm:"column:total_material_cost;type:numeric(14,2);not null;default:0"`

	// Asset-derived totals.
	TotalAssetRentPrice decimal.Decimal `gorm:"column:total_asset_rent_price;type:numeric(14,2);not null;default:0"`
	TotalAssetBuyPrice  decimal.Decimal `gorm:"column:total_asset_buy_price;type:numeric(14,2);not null;default:0"`
	TotalAssetsCost     decimal.Decimal `gorm:"column:total_assets_cost;type:numeric(14,2);not null;default:0"`

	// Global financials.
	Discount         decimal.Decimal `gorm:"column:discount;type:numeric(14,2);not null;default:0"`
	MarginPercentage decimal.Decimal `gorm:"column:margin_percentage;type:numeric(7,2);not null;default:0"`
	MarginAmount     decimal.Decimal `gorm:"column:margin_amount;type:numeric(14,2);not null;default:0"`
	VAT              decimal.Decimal `gorm:"column:vat;type:numeric(14,2);not null;default:0"`
	GrandTotal       decimal.Decimal `gorm:"column:grand_total;type:numeric(14,2);not null;default:0"`
	TotalCost        decimal.Decimal `gorm:"column:total_cost;type:numeric(14,2);not null;default:0"`

	Vehicles        []Vehicle                       `gorm:"many2many:project_vehicles"`
	Manpower        []ProjectManpower               `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Materials       []ProjectMaterial               `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	AdditionalItems []ProjectAdditionalMaterialItem `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Assets          []ProjectAsset                  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Assignments     []ProjectAssignment             `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
