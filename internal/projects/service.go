package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/internal/activity"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox"
	"github.com/raedalotaibi/mashary-backend/pkg/pagination"
	redislock "github.com/raedalotaibi/mashary-backend/pkg/redis"
)

const (
	lockScopeProject = "project"
	lockScopeDraft   = "project-draft"
	draftLockID      = "current"
)

type service struct {
	repo        Repository
	tx          txRunner
	locks       draftLocker
	catalog     catalogLoader
	conversions conversionMarker
	activity    activityRecorder
	events      eventEmitter
	logg        *logger.Logger
}

// NewService builds the staged-build service backed by the provided stack.
func NewService(
	repo Repository,
	tx txRunner,
	locks draftLocker,
	catalog catalogLoader,
	conversions conversionMarker,
	recorder activityRecorder,
	events eventEmitter,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if locks == nil {
		return nil, fmt.Errorf("draft locker required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if conversions == nil {
		return nil, fmt.Errorf("conversion marker required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		locks:       locks,
		catalog:     catalog,
		conversions: conversions,
		activity:    recorder,
		events:      events,
		logg:        logg,
	}, nil
}

func (s *service) UpsertDraft(ctx context.Context, principal Principal, input UpsertDraftInput) (*models.Project, error) {
	if err := validateBasicInfo(input); err != nil {
		return nil, err
	}

	lockID := draftLockID
	lockScope := lockScopeDraft
	if input.ProjectID != nil {
		lockScope = lockScopeProject
		lockID = input.ProjectID.String()
	}
	release, err := s.acquireLock(ctx, lockScope, lockID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.resolveDraft(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return s.updateDraft(ctx, principal, existing, input)
	}
	return s.createDraft(ctx, principal, input)
}

// resolveDraft finds the target row: by id when given, else the unique
// incomplete draft. A missing draft is not an error; it means "create".
func (s *service) resolveDraft(ctx context.Context, id *uuid.UUID) (*models.Project, error) {
	if id != nil {
		project, err := s.repo.GetByID(ctx, *id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		return project, nil
	}

	project, err := s.repo.GetDraft(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	return project, nil
}

func (s *service) createDraft(ctx context.Context, principal Principal, input UpsertDraftInput) (*models.Project, error) {
	if _, err := s.catalog.GetClient(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	if len(input.AssignedUserIDs) > 0 {
		if _, err := s.catalog.FindUsersByIDs(ctx, input.AssignedUserIDs); err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		Name:         input.Name,
		Type:         input.Type,
		Category:     input.Category,
		ClientID:     input.ClientID,
		DurationDays: input.DurationDays,
		FileRefs:     input.FileRefs,
		SourceType:   input.SourceType,
		SourceID:     input.SourceID,
		BuildStage:   enums.BuildStageBasicInfo,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.SourceType != nil {
			if input.SourceID == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "source id is required with a source type")
			}
			if err := s.conversions.MarkConverted(ctx, tx, *input.SourceType, *input.SourceID, time.Now().UTC()); err != nil {
				return err
			}
		}

		if err := repo.Create(ctx, project); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft")
		}

		added, err := repo.SyncAssignments(ctx, project.ID, input.AssignedUserIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync assignments")
		}

		if err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProjectDraftCreated,
			AggregateType: enums.AggregateProject,
			AggregateID:   project.ID,
			Actor:         &outbox.ActorRef{UserID: principal.UserID, Role: string(principal.Role)},
			Data: outbox.ProjectDraftCreatedPayload{
				ProjectID: project.ID,
				Category:  project.Category,
				ClientID:  project.ClientID,
			},
			Version: 1,
		}); err != nil {
			return err
		}
		s.emitAssignments(ctx, tx, principal, project.ID, added)

		if err := s.activity.Record(ctx, tx, activity.Entry{
			ProjectID: project.ID,
			ActorID:   principal.UserID,
			Action:    enums.ActivityProjectCreated,
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

func (s *service) updateDraft(ctx context.Context, principal Principal, project *models.Project, input UpsertDraftInput) (*models.Project, error) {
	if err := s.validateProjectAccess(ctx, principal, project.ID); err != nil {
		return nil, err
	}
	if sealed := s.rejectSealed(ctx, principal, project, enums.ActivityProjectUpdated); sealed != nil {
		return nil, sealed
	}
	if _, err := s.catalog.GetClient(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	if len(input.AssignedUserIDs) > 0 {
		if _, err := s.catalog.FindUsersByIDs(ctx, input.AssignedUserIDs); err != nil {
			return nil, err
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		project.Name = input.Name
		project.Type = input.Type
		project.Category = input.Category
		project.ClientID = input.ClientID
		project.DurationDays = input.DurationDays
		project.FileRefs = input.FileRefs

		// The vehicle pro-ration depends on the duration; keep it in step
		// when the duration is edited after vehicles were associated.
		project.TotalCarRentPerDuration = round2(project.TotalCarRent.
			Div(baselineDays).
			Mul(decimal.NewFromInt(int64(project.DurationDays))))

		added, err := repo.SyncAssignments(ctx, project.ID, input.AssignedUserIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync assignments")
		}

		if err := s.recalculate(ctx, repo, project); err != nil {
			return err
		}
		if err := repo.SaveGuarded(ctx, project); err != nil {
			return err
		}

		s.emitAssignments(ctx, tx, principal, project.ID, added)
		s.emitProjectUpdated(ctx, tx, principal, project)

		if err := s.activity.Record(ctx, tx, activity.Entry{
			ProjectID: project.ID,
			ActorID:   principal.UserID,
			Action:    enums.ActivityProjectUpdated,
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

// emitAssignments fans out a user_assigned event per newly assigned user.
// Failures are accumulated and logged; they never fail the mutation.
func (s *service) emitAssignments(ctx context.Context, tx *gorm.DB, principal Principal, projectID uuid.UUID, userIDs []uuid.UUID) {
	var errs error
	for _, userID := range userIDs {
		err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserAssigned,
			AggregateType: enums.AggregateProject,
			AggregateID:   projectID,
			Actor:         &outbox.ActorRef{UserID: principal.UserID, Role: string(principal.Role)},
			Data:          outbox.UserAssignedPayload{ProjectID: projectID, UserID: userID},
			Version:       1,
		})
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		s.logg.Error(s.logg.WithProjectID(ctx, projectID.String()), "assignment event fan-out incomplete", errs)
	}
}

func (s *service) emitProjectUpdated(ctx context.Context, tx *gorm.DB, principal Principal, project *models.Project) {
	err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventProjectUpdated,
		AggregateType: enums.AggregateProject,
		AggregateID:   project.ID,
		Actor:         &outbox.ActorRef{UserID: principal.UserID, Role: string(principal.Role)},
		Data: outbox.ProjectUpdatedPayload{
			ProjectID:  project.ID,
			BuildStage: project.BuildStage,
			GrandTotal: project.GrandTotal,
		},
		Version: 1,
	})
	if err != nil {
		s.logg.Error(s.logg.WithProjectID(ctx, project.ID.String()), "project updated event not queued", err)
	}
}

func (s *service) GetDraft(ctx context.Context, principal Principal) (*DraftResult, error) {
	project, err := s.repo.GetDraft(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no draft project")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	if err := s.validateProjectAccess(ctx, principal, project.ID); err != nil {
		return nil, err
	}
	return &DraftResult{
		Project: project,
		Step:    project.BuildStage.StepNumber(),
	}, nil
}

func (s *service) GetByID(ctx context.Context, principal Principal, id uuid.UUID) (*models.Project, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if err := s.validateProjectAccess(ctx, principal, project.ID); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *service) List(ctx context.Context, principal Principal, params pagination.Params) (*ListResult, error) {
	query := listParams{Limit: params.Limit}
	if !principal.CanViewAllProjects() {
		userID := principal.UserID
		query.AccessibleTo = &userID
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Delete(ctx context.Context, principal Principal, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if err := s.validateProjectAccess(ctx, principal, project.ID); err != nil {
		return err
	}
	if project.IsCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "completed projects cannot be deleted")
	}

	release, err := s.acquireLock(ctx, lockScopeProject, project.ID.String())
	if err != nil {
		return err
	}
	defer release()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, project.ID)
	})
}

func (s *service) acquireLock(ctx context.Context, scope, id string) (func(), error) {
	release, err := s.locks.Acquire(ctx, scope, id)
	if err != nil {
		if errors.Is(err, redislock.ErrLockHeld) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "draft busy")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire draft lock")
	}
	return release, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload project")
	}
	return project, nil
}

func validateBasicInfo(input UpsertDraftInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "project name is required")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid project category")
	}
	if input.ClientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	if input.DurationDays < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must be non-negative")
	}
	if input.SourceType != nil && !input.SourceType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid conversion source")
	}
	return nil
}
