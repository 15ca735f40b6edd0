package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
)

// AssociateVehicles replaces the project's vehicle set. An empty list clears
// the rent totals; otherwise every id must resolve and the monthly running
// cost is pro-rated from the 30-day baseline to the project duration.
func (s *service) AssociateVehicles(ctx context.Context, principal Principal, projectID uuid.UUID, vehicleIDs []uuid.UUID) (*models.Project, error) {
	return s.mutateStaged(ctx, principal, projectID, enums.ActivityVehiclesAssociated, func(tx *gorm.DB, repo Repository, project *models.Project) error {
		if len(vehicleIDs) == 0 {
			project.TotalCarRent = decimal.Zero
			project.TotalCarRentPerDuration = decimal.Zero
			if err := repo.ReplaceVehicles(ctx, project, nil); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear vehicles")
			}
			project.BuildStage = project.BuildStage.Advance(enums.BuildStageVehicles)
			return nil
		}

		vehicles, err := s.catalog.FindVehiclesByIDs(ctx, vehicleIDs)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, vehicle := range vehicles {
			total = total.Add(vehicle.MonthlyCost())
		}

		project.TotalCarRent = round2(total)
		project.TotalCarRentPerDuration = round2(total.
			Div(baselineDays).
			Mul(decimal.NewFromInt(int64(project.DurationDays))))

		if err := repo.ReplaceVehicles(ctx, project, vehicles); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace vehicles")
		}
		project.BuildStage = project.BuildStage.Advance(enums.BuildStageVehicles)
		return nil
	})
}
