package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
	"github.com/raedalotaibi/mashary-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns a project repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return r.db
	}
	return r.db.WithContext(ctx)
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Vehicles").
		Preload("Manpower").
		Preload("Manpower.Manpower").
		Preload("Materials").
		Preload("Materials.Material").
		Preload("Materials.Material.Service").
		Preload("AdditionalItems").
		Preload("AdditionalItems.Item").
		Preload("Assets").
		Preload("Assets.Asset").
		Preload("Assignments")
}

func (r *repository) Create(ctx context.Context, project *models.Project) error {
	return r.conn(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := withAssociations(r.conn(ctx)).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) GetDraft(ctx context.Context) (*models.Project, error) {
	var project models.Project
	err := withAssociations(r.conn(ctx)).First(&project, "is_completed = false").Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) List(ctx context.Context, params listParams) ([]models.Project, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.conn(ctx).Model(&models.Project{})
	if params.AccessibleTo != nil {
		query = query.
			Joins("JOIN project_assignments pa ON pa.project_id = projects.id").
			Where("pa.user_id = ?", *params.AccessibleTo)
	}
	if params.Cursor != nil {
		query = query.Where("(projects.created_at, projects.id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var projects []models.Project
	if err := query.Order("projects.created_at DESC, projects.id DESC").Limit(limit).Find(&projects).Error; err != nil {
		return nil, nil, err
	}

	if len(projects) > normalized {
		next := projects[normalized]
		projects = projects[:normalized]
		return projects, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return projects, nil, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Select(clause.Associations).Delete(&models.Project{ID: id}).Error
}

func (r *repository) SaveGuarded(ctx context.Context, project *models.Project) error {
	current := project.Version
	project.Version = current + 1

	result := r.conn(ctx).Model(&models.Project{}).
		Where("id = ? AND version = ?", project.ID, current).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(project)
	if result.Error != nil {
		project.Version = current
		return result.Error
	}
	if result.RowsAffected == 0 {
		project.Version = current
		return pkgerrors.New(pkgerrors.CodeConflict, "project was modified concurrently")
	}
	return nil
}

func (r *repository) ReplaceVehicles(ctx context.Context, project *models.Project, vehicles []models.Vehicle) error {
	return r.conn(ctx).Model(project).Association("Vehicles").Replace(&vehicles)
}

func (r *repository) ListManpower(ctx context.Context, projectID uuid.UUID) ([]models.ProjectManpower, error) {
	var rows []models.ProjectManpower
	err := r.conn(ctx).
		Preload("Manpower").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) GetManpowerLine(ctx context.Context, projectID, lineID uuid.UUID) (*models.ProjectManpower, error) {
	var row models.ProjectManpower
	err := r.conn(ctx).
		Preload("Manpower").
		First(&row, "id = ? AND project_id = ?", lineID, projectID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateManpowerLine(ctx context.Context, row *models.ProjectManpower) error {
	return r.conn(ctx).Omit(clause.Associations).Create(row).Error
}

func (r *repository) SaveManpowerLine(ctx context.Context, row *models.ProjectManpower) error {
	return r.conn(ctx).Model(&models.ProjectManpower{}).
		Where("id = ?", row.ID).
		Select("*").
		Omit("id", "project_id", "created_at", clause.Associations).
		Updates(row).Error
}

func (r *repository) DeleteManpowerLine(ctx context.Context, projectID, lineID uuid.UUID) error {
	result := r.conn(ctx).
		Where("id = ? AND project_id = ?", lineID, projectID).
		Delete(&models.ProjectManpower{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ReplaceMaterials(ctx context.Context, projectID uuid.UUID, materials []models.ProjectMaterial, items []models.ProjectAdditionalMaterialItem) error {
	db := r.conn(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectMaterial{}).Error; err != nil {
		return err
	}
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectAdditionalMaterialItem{}).Error; err != nil {
		return err
	}
	if len(materials) > 0 {
		if err := db.Omit(clause.Associations).Create(&materials).Error; err != nil {
			return err
		}
	}
	if len(items) > 0 {
		if err := db.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAsset, error) {
	var rows []models.ProjectAsset
	err := r.conn(ctx).
		Preload("Asset").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) AddAssets(ctx context.Context, rows []models.ProjectAsset) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(ctx).Omit(clause.Associations).Create(&rows).Error
}

func (r *repository) RemoveAssets(ctx context.Context, projectID uuid.UUID, assetIDs []uuid.UUID) error {
	if len(assetIDs) == 0 {
		return nil
	}
	return r.conn(ctx).
		Where("project_id = ? AND asset_id IN ?", projectID, assetIDs).
		Delete(&models.ProjectAsset{}).Error
}

func (r *repository) SyncAssignments(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	db := r.conn(ctx)

	var existing []models.ProjectAssignment
	if err := db.Where("project_id = ?", projectID).Find(&existing).Error; err != nil {
		return nil, err
	}

	desired := map[uuid.UUID]struct{}{}
	for _, id := range userIDs {
		desired[id] = struct{}{}
	}
	current := map[uuid.UUID]struct{}{}
	var stale []uuid.UUID
	for _, row := range existing {
		current[row.UserID] = struct{}{}
		if _, keep := desired[row.UserID]; !keep {
			stale = append(stale, row.UserID)
		}
	}

	if len(stale) > 0 {
		if err := db.Where("project_id = ? AND user_id IN ?", projectID, stale).
			Delete(&models.ProjectAssignment{}).Error; err != nil {
			return nil, err
		}
	}

	var added []uuid.UUID
	var fresh []models.ProjectAssignment
	for id := range desired {
		if _, ok := current[id]; ok {
			continue
		}
		added = append(added, id)
		fresh = append(fresh, models.ProjectAssignment{ProjectID: projectID, UserID: id})
	}
	if len(fresh) > 0 {
		if err := db.Omit(clause.Associations).Create(&fresh).Error; err != nil {
			return nil, err
		}
	}
	return added, nil
}

func (r *repository) HasAssignment(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.ProjectAssignment{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListAssignedUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(ctx).Model(&models.ProjectAssignment{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	return ids, err
}
