package projects

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
)

var (
	vatRate      = decimal.RequireFromString("0.15")
	oneHundred   = decimal.NewFromInt(100)
	baselineDays = decimal.NewFromInt(30)
)

func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// applyRecalculation is the single authority for every cross-cutting total.
// It recomputes the per-resource distribution and the project-level financials
// in place from the current association state. Running it twice with no
// intervening mutation yields identical values. It never touches discount or
// marginPercentage; it only consumes them.
func applyRecalculation(project *models.Project, manpower []models.ProjectManpower) {
	resourceCount := len(manpower)
	if resourceCount < 1 {
		resourceCount = 1
	}
	countDec := decimal.NewFromInt(int64(resourceCount))

	accommodationPer := round2(project.AccommodationCost.Div(countDec))
	carRentPer := round2(project.TotalCarRentPerDuration.Div(countDec))

	manpowerTotal := decimal.Zero
	for i := range manpower {
		row := &manpower[i]
		food := round2(project.FoodCostPerDay.Mul(decimal.NewFromInt(int64(row.EstimatedWorkDays))))
		row.FoodAllowanceCost = food
		row.AccommodationCostPerManpower = accommodationPer
		row.CarRentPerManpower = carRentPer
		row.TotalCost = round2(row.DurationCost.
			Add(food).
			Add(accommodationPer).
			Add(carRentPer).
			Add(row.OtherCosts))
		manpowerTotal = manpowerTotal.Add(row.TotalCost)
	}

	project.ResourceCount = resourceCount
	project.ManpowerTotalCost = round2(manpowerTotal)
	project.FinalManpowerTotalCost = round2(manpowerTotal.
		Mul(decimal.NewFromInt(1).Add(project.ManagementAdditionPercentage.Div(oneHundred))))

	project.GrandTotal = round2(project.FinalManpowerTotalCost.
		Add(project.TotalMaterialCost).
		Add(project.TotalAssetsCost))

	vat := project.GrandTotal.Mul(vatRate)
	if vat.IsNegative() {
		vat = decimal.Zero
	}
	project.VAT = round2(vat)

	project.MarginAmount = round2(project.GrandTotal.Mul(project.MarginPercentage).Div(oneHundred))
	project.TotalCost = round2(project.GrandTotal.
		Add(project.VAT).
		Sub(project.Discount).
		Add(project.MarginAmount))
}

// recalculate loads the manpower rows through the transaction-bound
// repository, applies the engine and persists the per-resource derived
// fields. The caller persists the project row itself (with the version
// guard) once it finishes its own mutations.
func (s *service) recalculate(ctx context.Context, repo Repository, project *models.Project) error {
	rows, err := repo.ListManpower(ctx, project.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manpower rows")
	}

	applyRecalculation(project, rows)

	for i := range rows {
		if err := repo.SaveManpowerLine(ctx, &rows[i]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist manpower totals")
		}
	}
	return nil
}
