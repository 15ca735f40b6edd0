package outbox

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raedalotaibi/mashary-backend/pkg/enums"
)

// ProjectDraftCreatedPayload is emitted when a new draft project is opened.
type ProjectDraftCreatedPayload struct {
	ProjectID uuid.UUID             `json:"projectId"`
	Category  enums.ProjectCategory `json:"category"`
	ClientID  uuid.UUID             `json:"clientId"`
}

// ProjectUpdatedPayload is emitted after any staged mutation recomputes totals.
type ProjectUpdatedPayload struct {
	ProjectID  uuid.UUID        `json:"projectId"`
	BuildStage enums.BuildStage `json:"buildStage"`
	GrandTotal decimal.Decimal  `json:"grandTotal"`
}

// ProjectCompletedPayload is emitted when a draft is sealed.
type ProjectCompletedPayload struct {
	ProjectID  uuid.UUID       `json:"projectId"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	TotalCost  decimal.Decimal `json:"totalCost"`
}

// UserAssignedPayload is emitted when a user gains access to a project.
type UserAssignedPayload struct {
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
}

// PostCompletionEditPayload is emitted when a sealed project receives a
// permitted top-level edit, such as discount or file references.
type PostCompletionEditPayload struct {
	ProjectID uuid.UUID `json:"projectId"`
	Fields    []string  `json:"fields"`
}
