package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/internal/activity"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox"
)

// Complete stamps the commercial terms, runs the recalculation engine one
// last time over the final association state, and seals the project. The
// completion event is deduplicated at the outbox so replays cannot seal
// twice from the consumer side.
func (s *service) Complete(ctx context.Context, principal Principal, projectID uuid.UUID, input CompleteInput) (*models.Project, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}
	if input.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be non-negative")
	}
	if input.MarginPercentage.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "margin percentage must be non-negative")
	}

	release, err := s.acquireLock(ctx, lockScopeProject, projectID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	project, err := s.GetByID(ctx, principal, projectID)
	if err != nil {
		return nil, err
	}
	if sealed := s.rejectSealed(ctx, principal, project, enums.ActivityProjectCompleted); sealed != nil {
		return nil, sealed
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		project.Discount = round2(input.Discount)
		project.MarginPercentage = round2(input.MarginPercentage)
		if err := s.recalculate(ctx, repo, project); err != nil {
			return err
		}

		project.IsCompleted = true
		project.BuildStage = enums.BuildStageCompleted
		if err := repo.SaveGuarded(ctx, project); err != nil {
			return err
		}

		if err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProjectCompleted,
			AggregateType: enums.AggregateProject,
			AggregateID:   project.ID,
			Actor:         &outbox.ActorRef{UserID: principal.UserID, Role: string(principal.Role)},
			Data: outbox.ProjectCompletedPayload{
				ProjectID:  project.ID,
				GrandTotal: project.GrandTotal,
				TotalCost:  project.TotalCost,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		if err := s.activity.Record(ctx, tx, activity.Entry{
			ProjectID: project.ID,
			ActorID:   principal.UserID,
			Action:    enums.ActivityProjectCompleted,
		}); err != nil {
			s.logg.Warn(s.logg.WithProjectID(ctx, project.ID.String()), "activity record failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, project.ID)
}
