package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/internal/repo"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
	"github.com/raedalotaibi/mashary-backend/pkg/pagination"
)

// Recorder appends entries to a project's activity trail.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	List(ctx context.Context, projectID uuid.UUID, params pagination.Params) ([]models.ActivityLog, string, error)
}

// Entry is one recorded project mutation.
type Entry struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	Action    enums.ActivityAction
	Detail    string
}

type recorder struct {
	repo.Base
}

// NewRecorder returns an activity recorder bound to the provided database.
func NewRecorder(db *gorm.DB) Recorder {
	return &recorder{Base: repo.NewBase(db)}
}

func (r *recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if entry.ProjectID == uuid.Nil || entry.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project and actor ids are required")
	}
	if !entry.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid activity action")
	}

	row := models.ActivityLog{
		ProjectID: entry.ProjectID,
		ActorID:   entry.ActorID,
		Action:    entry.Action,
	}
	if entry.Detail != "" {
		detail := entry.Detail
		row.Detail = &detail
	}

	db := tx
	if db == nil {
		db = r.DB(ctx)
	} else {
		db = db.WithContext(ctx)
	}
	return db.Create(&row).Error
}

func (r *recorder) List(ctx context.Context, projectID uuid.UUID, params pagination.Params) ([]models.ActivityLog, string, error) {
	if projectID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}

	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.DB(ctx).Model(&models.ActivityLog{}).Where("project_id = ?", projectID)
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		if cursor != nil {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	var rows []models.ActivityLog
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}), nil
	}
	return rows, "", nil
}
