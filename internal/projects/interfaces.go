package projects

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/internal/activity"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox"
	"github.com/raedalotaibi/mashary-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type draftLocker interface {
	Acquire(ctx context.Context, scope, id string) (func(), error)
}

type catalogLoader interface {
	FindVehiclesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vehicle, error)
	FindManpowerByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Manpower, error)
	FindMaterialsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Material, error)
	FindAdditionalItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AdditionalMaterialItem, error)
	FindAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Asset, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type conversionMarker interface {
	MarkConverted(ctx context.Context, tx *gorm.DB, source enums.ConversionSource, id uuid.UUID, now time.Time) error
}

type activityRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry activity.Entry) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Repository is the persistence contract for the staged-build pipeline.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetDraft(ctx context.Context) (*models.Project, error)
	List(ctx context.Context, params listParams) ([]models.Project, *pagination.Cursor, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SaveGuarded persists project fields with the optimistic version guard
	// and bumps version by one. Zero rows affected means a concurrent writer
	// won the race.
	SaveGuarded(ctx context.Context, project *models.Project) error

	ReplaceVehicles(ctx context.Context, project *models.Project, vehicles []models.Vehicle) error

	ListManpower(ctx context.Context, projectID uuid.UUID) ([]models.ProjectManpower, error)
	GetManpowerLine(ctx context.Context, projectID, lineID uuid.UUID) (*models.ProjectManpower, error)
	CreateManpowerLine(ctx context.Context, row *models.ProjectManpower) error
	SaveManpowerLine(ctx context.Context, row *models.ProjectManpower) error
	DeleteManpowerLine(ctx context.Context, projectID, lineID uuid.UUID) error

	ReplaceMaterials(ctx context.Context, projectID uuid.UUID, materials []models.ProjectMaterial, items []models.ProjectAdditionalMaterialItem) error

	ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAsset, error)
	AddAssets(ctx context.Context, rows []models.ProjectAsset) error
	RemoveAssets(ctx context.Context, projectID uuid.UUID, assetIDs []uuid.UUID) error

	SyncAssignments(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) (added []uuid.UUID, err error)
	HasAssignment(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	ListAssignedUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// Service drives the staged-build pipeline end to end.
type Service interface {
	UpsertDraft(ctx context.Context, principal Principal, input UpsertDraftInput) (*models.Project, error)
	AssociateVehicles(ctx context.Context, principal Principal, projectID uuid.UUID, vehicleIDs []uuid.UUID) (*models.Project, error)
	SetManpowerParams(ctx context.Context, principal Principal, projectID uuid.UUID, input ManpowerParamsInput) (*models.Project, error)
	AssociateMaterials(ctx context.Context, principal Principal, projectID uuid.UUID, input MaterialsInput) (*models.Project, error)
	AssociateAssets(ctx context.Context, principal Principal, projectID uuid.UUID, assetIDs []uuid.UUID) (*models.Project, error)
	Complete(ctx context.Context, principal Principal, projectID uuid.UUID, input CompleteInput) (*models.Project, error)

	GetDraft(ctx context.Context, principal Principal) (*DraftResult, error)
	GetByID(ctx context.Context, principal Principal, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, principal Principal, params pagination.Params) (*ListResult, error)
	Delete(ctx context.Context, principal Principal, id uuid.UUID) error
}

// ManpowerService manages the per-resource manpower line family.
type ManpowerService interface {
	Add(ctx context.Context, principal Principal, projectID uuid.UUID, input ManpowerLineInput) (*models.Project, error)
	Update(ctx context.Context, principal Principal, projectID, lineID uuid.UUID, input ManpowerLineUpdateInput) (*models.Project, error)
	Remove(ctx context.Context, principal Principal, projectID, lineID uuid.UUID) (*models.Project, error)
}
