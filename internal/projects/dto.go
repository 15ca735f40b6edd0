package projects

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	"github.com/raedalotaibi/mashary-backend/pkg/pagination"
)

// Principal is the authenticated caller staged endpoints act on behalf of.
type Principal struct {
	UserID uuid.UUID
	Role   enums.MemberRole
}

// CanViewAllProjects reports whether the caller holds the global view grant.
func (p Principal) CanViewAllProjects() bool {
	return p.Role.HasGlobalProjectView()
}

// UpsertDraftInput carries the basic-info payload for draft creation/update.
type UpsertDraftInput struct {
	ProjectID *uuid.UUID

	Name         string
	Type         string
	Category     enums.ProjectCategory
	ClientID     uuid.UUID
	DurationDays int
	FileRefs     []string

	SourceType *enums.ConversionSource
	SourceID   *uuid.UUID

	AssignedUserIDs []uuid.UUID
}

// ManpowerParamsInput sets the project-wide manpower cost parameters.
type ManpowerParamsInput struct {
	AccommodationCost            decimal.Decimal
	FoodCostPerDay               decimal.Decimal
	ManagementAdditionPercentage *decimal.Decimal
}

// ManpowerLineInput creates one manpower resource line.
type ManpowerLineInput struct {
	ManpowerID        uuid.UUID
	EstimatedWorkDays int
	ActualWorkDays    int
	Mission           []enums.MissionType
	OtherCosts        decimal.Decimal
	OtherCostsReason  string
}

// ManpowerLineUpdateInput patches one line; nil fields keep stored values.
type ManpowerLineUpdateInput struct {
	EstimatedWorkDays *int
	ActualWorkDays    *int
	Mission           []enums.MissionType
	OtherCosts        *decimal.Decimal
	OtherCostsReason  *string
}

// AdditionalItemSelection is one chosen additional-material catalog item.
type AdditionalItemSelection struct {
	ItemID   uuid.UUID
	Quantity int
}

// MaterialsInput is the full-replace material association payload. The
// selections are keyed by additional-material group id.
type MaterialsInput struct {
	MaterialIDs     []uuid.UUID
	MaterialMargin  decimal.Decimal
	AdditionalItems map[uuid.UUID][]AdditionalItemSelection
}

// CompleteInput stamps the final financial knobs.
type CompleteInput struct {
	Discount         decimal.Decimal
	MarginPercentage decimal.Decimal
}

// DraftResult pairs the draft with its current build step.
type DraftResult struct {
	Project *models.Project `json:"project"`
	Step    int             `json:"step"`
}

// ListResult wraps a project page and the next cursor.
type ListResult struct {
	Items  []models.Project `json:"items"`
	Cursor string           `json:"cursor"`
}

type listParams struct {
	// AccessibleTo restricts rows to projects the user is assigned to. Nil
	// means no restriction (global view).
	AccessibleTo *uuid.UUID
	Limit        int
	Cursor       *pagination.Cursor
}
