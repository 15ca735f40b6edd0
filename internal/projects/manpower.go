package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
)

// NewManpowerService exposes the per-resource manpower line family on top of
// the same staged-build stack.
func NewManpowerService(svc Service) (ManpowerService, error) {
	core, ok := svc.(*service)
	if !ok {
		return nil, errors.New("unsupported project service implementation")
	}
	return core, nil
}

// SetManpowerParams stores the project-wide manpower cost parameters that the
// recalculation engine distributes evenly across resources.
func (s *service) SetManpowerParams(ctx context.Context, principal Principal, projectID uuid.UUID, input ManpowerParamsInput) (*models.Project, error) {
	if input.AccommodationCost.IsNegative() || input.FoodCostPerDay.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manpower parameters must be non-negative")
	}
	if input.ManagementAdditionPercentage != nil && input.ManagementAdditionPercentage.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "management addition must be non-negative")
	}

	return s.mutateStaged(ctx, principal, projectID, enums.ActivityProjectUpdated, func(tx *gorm.DB, repo Repository, project *models.Project) error {
		project.AccommodationCost = round2(input.AccommodationCost)
		project.FoodCostPerDay = round2(input.FoodCostPerDay)
		if input.ManagementAdditionPercentage != nil {
			project.ManagementAdditionPercentage = round2(*input.ManagementAdditionPercentage)
		}
		project.BuildStage = project.BuildStage.Advance(enums.BuildStageManpower)
		return nil
	})
}

func (s *service) Add(ctx context.Context, principal Principal, projectID uuid.UUID, input ManpowerLineInput) (*models.Project, error) {
	if input.ManpowerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manpower id is required")
	}
	if input.EstimatedWorkDays < 0 || input.ActualWorkDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work days must be non-negative")
	}
	if input.OtherCosts.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "other costs must be non-negative")
	}
	for _, tag := range input.Mission {
		if !tag.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid mission tag")
		}
	}

	return s.mutateStaged(ctx, principal, projectID, enums.ActivityManpowerAdded, func(tx *gorm.DB, repo Repository, project *models.Project) error {
		rows, err := s.catalog.FindManpowerByIDs(ctx, []uuid.UUID{input.ManpowerID})
		if err != nil {
			return err
		}
		catalogRow := rows[0]

		line := models.ProjectManpower{
			ProjectID:         project.ID,
			ManpowerID:        catalogRow.ID,
			EstimatedWorkDays: input.EstimatedWorkDays,
			ActualWorkDays:    input.ActualWorkDays,
			OtherCosts:        round2(input.OtherCosts),
			DurationCost:      durationCost(catalogRow.DailyCost, input.EstimatedWorkDays, input.Mission),
		}
		line.SetMissionTags(input.Mission)
		if input.OtherCostsReason != "" {
			reason := input.OtherCostsReason
			line.OtherCostsReason = &reason
		}

		if err := repo.CreateManpowerLine(ctx, &line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create manpower line")
		}
		project.BuildStage = project.BuildStage.Advance(enums.BuildStageManpower)
		return nil
	})
}

func (s *service) Update(ctx context.Context, principal Principal, projectID, lineID uuid.UUID, input ManpowerLineUpdateInput) (*models.Project, error) {
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manpower line id is required")
	}
	for _, tag := range input.Mission {
		if !tag.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid mission tag")
		}
	}

	return s.mutateStaged(ctx, principal, projectID, enums.ActivityManpowerUpdated, func(tx *gorm.DB, repo Repository, project *models.Project) error {
		line, err := repo.GetManpowerLine(ctx, project.ID, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "manpower line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manpower line")
		}

		// durationCost is re-derived only when one of its inputs changes;
		// stored values stand in for omitted fields.
		rederive := false
		if input.EstimatedWorkDays != nil && *input.EstimatedWorkDays != line.EstimatedWorkDays {
			if *input.EstimatedWorkDays < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "work days must be non-negative")
			}
			line.EstimatedWorkDays = *input.EstimatedWorkDays
			rederive = true
		}
		if input.Mission != nil {
			line.SetMissionTags(input.Mission)
			rederive = true
		}
		if input.OtherCosts != nil {
			if input.OtherCosts.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "other costs must be non-negative")
			}
			line.OtherCosts = round2(*input.OtherCosts)
			rederive = true
		}
		if input.ActualWorkDays != nil {
			if *input.ActualWorkDays < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "work days must be non-negative")
			}
			line.ActualWorkDays = *input.ActualWorkDays
		}
		if input.OtherCostsReason != nil {
			if *input.OtherCostsReason == "" {
				line.OtherCostsReason = nil
			} else {
				reason := *input.OtherCostsReason
				line.OtherCostsReason = &reason
			}
		}

		if rederive {
			daily := decimal.Zero
			if line.Manpower != nil {
				daily = line.Manpower.DailyCost
			} else {
				rows, err := s.catalog.FindManpowerByIDs(ctx, []uuid.UUID{line.ManpowerID})
				if err != nil {
					return err
				}
				daily = rows[0].DailyCost
			}
			line.DurationCost = durationCost(daily, line.EstimatedWorkDays, line.MissionTags())
		}

		if err := repo.SaveManpowerLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save manpower line")
		}
		return nil
	})
}

func (s *service) Remove(ctx context.Context, principal Principal, projectID, lineID uuid.UUID) (*models.Project, error) {
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manpower line id is required")
	}

	return s.mutateStaged(ctx, principal, projectID, enums.ActivityManpowerRemoved, func(tx *gorm.DB, repo Repository, project *models.Project) error {
		if err := repo.DeleteManpowerLine(ctx, project.ID, lineID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "manpower line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete manpower line")
		}
		return nil
	})
}

func durationCost(dailyCost decimal.Decimal, estimatedWorkDays int, mission []enums.MissionType) decimal.Decimal {
	weight := enums.MissionWeightSum(mission)
	return round2(dailyCost.
		Mul(decimal.NewFromInt(int64(estimatedWorkDays))).
		Mul(weight))
}
