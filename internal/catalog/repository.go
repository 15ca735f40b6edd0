package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/internal/repo"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
)

// Repository loads catalog rows referenced by staged project mutations. Every
// FindXByIDs helper fails with a not-found error naming the IDs that do not
// exist, so callers never silently attach phantom resources.
type Repository interface {
	FindVehiclesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vehicle, error)
	FindManpowerByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Manpower, error)
	FindMaterialsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Material, error)
	FindAdditionalItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AdditionalMaterialItem, error)
	FindAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Asset, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindVehiclesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vehicle, error) {
	var rows []models.Vehicle
	if err := findByIDs(r.DB(ctx), ids, &rows); err != nil {
		return nil, err
	}
	if err := ensureAllFound(ids, len(rows), "vehicle", vehicleIDs(rows)); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindManpowerByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Manpower, error) {
	var rows []models.Manpower
	if err := findByIDs(r.DB(ctx), ids, &rows); err != nil {
		return nil, err
	}
	found := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.ID)
	}
	if err := ensureAllFound(ids, len(rows), "manpower", found); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindMaterialsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Material, error) {
	var rows []models.Material
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.DB(ctx).Preload("Service").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	found := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.ID)
	}
	if err := ensureAllFound(ids, len(rows), "material", found); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindAdditionalItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AdditionalMaterialItem, error) {
	var rows []models.AdditionalMaterialItem
	if err := findByIDs(r.DB(ctx), ids, &rows); err != nil {
		return nil, err
	}
	found := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.ID)
	}
	if err := ensureAllFound(ids, len(rows), "additional material item", found); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Asset, error) {
	var rows []models.Asset
	if err := findByIDs(r.DB(ctx), ids, &rows); err != nil {
		return nil, err
	}
	found := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.ID)
	}
	if err := ensureAllFound(ids, len(rows), "asset", found); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var row models.Client
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var rows []models.User
	if err := findByIDs(r.DB(ctx), ids, &rows); err != nil {
		return nil, err
	}
	found := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.ID)
	}
	if err := ensureAllFound(ids, len(rows), "user", found); err != nil {
		return nil, err
	}
	return rows, nil
}

func findByIDs(db *gorm.DB, ids []uuid.UUID, dest any) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Where("id IN ?", ids).Find(dest).Error
}

func vehicleIDs(rows []models.Vehicle) []uuid.UUID {
	found := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.ID)
	}
	return found
}

func ensureAllFound(requested []uuid.UUID, foundCount int, kind string, found []uuid.UUID) error {
	unique := map[uuid.UUID]struct{}{}
	for _, id := range requested {
		unique[id] = struct{}{}
	}
	if foundCount == len(unique) {
		return nil
	}
	present := map[uuid.UUID]struct{}{}
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []string
	for id := range unique {
		if _, ok := present[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown %s ids: %v", kind, missing))
}
