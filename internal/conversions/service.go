package conversions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
)

// Service flips the conversion flag on the CRM record a project was created
// from. A record converts exactly once; a second attempt is a conflict.
type Service interface {
	MarkConverted(ctx context.Context, tx *gorm.DB, source enums.ConversionSource, id uuid.UUID, now time.Time) error
}

type service struct{}

// NewService returns the conversion marker.
func NewService() Service {
	return &service{}
}

func (s *service) MarkConverted(ctx context.Context, tx *gorm.DB, source enums.ConversionSource, id uuid.UUID, now time.Time) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "source id is required")
	}
	table, err := tableFor(source)
	if err != nil {
		return err
	}

	result := tx.WithContext(ctx).
		Table(table).
		Where("id = ? AND is_converted = false", id).
		Updates(map[string]any{
			"is_converted": true,
			"converted_at": now,
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark source converted")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check source")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "conversion source not found")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "source already converted to a project")
}

func tableFor(source enums.ConversionSource) (string, error) {
	switch source {
	case enums.ConversionSourceLead:
		return "leads", nil
	case enums.ConversionSourceOpportunity:
		return "opportunities", nil
	case enums.ConversionSourceDeal:
		return "deals", nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid conversion source")
	}
}
