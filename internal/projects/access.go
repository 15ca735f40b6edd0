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

// validateProjectAccess allows callers holding the global project-view grant
// or an explicit assignment row; everyone else is rejected.
func (s *service) validateProjectAccess(ctx context.Context, principal Principal, projectID uuid.UUID) error {
	if principal.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated user required")
	}
	if principal.CanViewAllProjects() {
		return nil
	}
	assigned, err := s.repo.HasAssignment(ctx, projectID, principal.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check assignment")
	}
	if !assigned {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not assigned to this project")
	}
	return nil
}

// rejectSealed blocks staged mutations on completed projects. The attempt is
// traced in the activity log before the caller sees the state conflict.
func (s *service) rejectSealed(ctx context.Context, principal Principal, project *models.Project, attempted enums.ActivityAction) error {
	if project == nil || !project.IsCompleted {
		return nil
	}
	detail := "attempted " + string(attempted) + " on a completed project"
	if err := s.activity.Record(ctx, nil, activity.Entry{
		ProjectID: project.ID,
		ActorID:   principal.UserID,
		Action:    enums.ActivitySealedEditAttempt,
		Detail:    detail,
	}); err != nil {
		s.logg.Warn(s.logg.WithProjectID(ctx, project.ID.String()), "sealed edit attempt not recorded")
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPostCompletionEdit,
			AggregateType: enums.AggregateProject,
			AggregateID:   project.ID,
			Actor:         &outbox.ActorRef{UserID: principal.UserID, Role: string(principal.Role)},
			Data:          outbox.PostCompletionEditPayload{ProjectID: project.ID, Fields: []string{string(attempted)}},
			Version:       1,
		})
	}); err != nil {
		s.logg.Warn(s.logg.WithProjectID(ctx, project.ID.String()), "sealed edit attempt event not emitted")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "project is completed")
}

// mutateStaged is the shared skeleton of every staged association call:
// lock, load, access check, sealed check, mutate + recalculate + persist in
// one transaction, then reload the full aggregate for the response.
func (s *service) mutateStaged(
	ctx context.Context,
	principal Principal,
	projectID uuid.UUID,
	action enums.ActivityAction,
	mutate func(tx *gorm.DB, repo Repository, project *models.Project) error,
) (*models.Project, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
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
	if sealed := s.rejectSealed(ctx, principal, project, action); sealed != nil {
		return nil, sealed
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := mutate(tx, repo, project); err != nil {
			return err
		}
		if err := s.recalculate(ctx, repo, project); err != nil {
			return err
		}
		if err := repo.SaveGuarded(ctx, project); err != nil {
			return err
		}

		s.emitProjectUpdated(ctx, tx, principal, project)
		if err := s.activity.Record(ctx, tx, activity.Entry{
			ProjectID: project.ID,
			ActorID:   principal.UserID,
			Action:    action,
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
