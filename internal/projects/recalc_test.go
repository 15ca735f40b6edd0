package projects

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestApplyRecalculationDistributesSharedCostsEvenly(t *testing.T) {
	project := &models.Project{
		AccommodationCost:       dec("300"),
		TotalCarRentPerDuration: dec("600"),
		FoodCostPerDay:          dec("10"),
	}
	rows := []models.ProjectManpower{
		{EstimatedWorkDays: 5, DurationCost: dec("500")},
		{EstimatedWorkDays: 3, DurationCost: dec("300")},
		{EstimatedWorkDays: 2, DurationCost: dec("200")},
	}

	applyRecalculation(project, rows)

	for i := range rows {
		if !rows[i].AccommodationCostPerManpower.Equal(dec("100")) {
			t.Fatalf("row %d accommodation share = %s, want 100", i, rows[i].AccommodationCostPerManpower)
		}
		if !rows[i].CarRentPerManpower.Equal(dec("200")) {
			t.Fatalf("row %d car rent share = %s, want 200", i, rows[i].CarRentPerManpower)
		}
	}
	if !rows[0].FoodAllowanceCost.Equal(dec("50")) {
		t.Fatalf("row 0 food allowance = %s, want 50", rows[0].FoodAllowanceCost)
	}
	if !rows[0].TotalCost.Equal(dec("850")) {
		t.Fatalf("row 0 total = %s, want 850", rows[0].TotalCost)
	}
	if project.ResourceCount != 3 {
		t.Fatalf("resource count = %d, want 3", project.ResourceCount)
	}
	if !project.ManpowerTotalCost.Equal(dec("2000")) {
		t.Fatalf("manpower total = %s, want 2000", project.ManpowerTotalCost)
	}
	if !project.GrandTotal.Equal(dec("2000")) {
		t.Fatalf("grand total = %s, want 2000", project.GrandTotal)
	}
	if !project.VAT.Equal(dec("300")) {
		t.Fatalf("vat = %s, want 300", project.VAT)
	}
	if !project.TotalCost.Equal(dec("2300")) {
		t.Fatalf("total cost = %s, want 2300", project.TotalCost)
	}
}

func TestApplyRecalculationManagementAddition(t *testing.T) {
	project := &models.Project{ManagementAdditionPercentage: dec("10")}
	rows := []models.ProjectManpower{{DurationCost: dec("2000")}}

	applyRecalculation(project, rows)

	if !project.FinalManpowerTotalCost.Equal(dec("2200")) {
		t.Fatalf("final manpower total = %s, want 2200", project.FinalManpowerTotalCost)
	}
}

func TestApplyRecalculationIsIdempotent(t *testing.T) {
	project := &models.Project{
		AccommodationCost:            dec("123.45"),
		TotalCarRentPerDuration:      dec("678.90"),
		FoodCostPerDay:               dec("17.50"),
		ManagementAdditionPercentage: dec("12.5"),
		TotalMaterialCost:            dec("1000"),
		TotalAssetsCost:              dec("250.75"),
		Discount:                     dec("100"),
		MarginPercentage:             dec("7"),
	}
	rows := []models.ProjectManpower{
		{EstimatedWorkDays: 7, DurationCost: dec("733.33"), OtherCosts: dec("12.34")},
		{EstimatedWorkDays: 4, DurationCost: dec("411.11")},
	}

	applyRecalculation(project, rows)
	first := *project
	firstRows := append([]models.ProjectManpower(nil), rows...)

	applyRecalculation(project, rows)

	if !project.TotalCost.Equal(first.TotalCost) ||
		!project.GrandTotal.Equal(first.GrandTotal) ||
		!project.VAT.Equal(first.VAT) ||
		!project.ManpowerTotalCost.Equal(first.ManpowerTotalCost) ||
		!project.FinalManpowerTotalCost.Equal(first.FinalManpowerTotalCost) {
		t.Fatalf("second run drifted: %+v vs %+v", project, first)
	}
	for i := range rows {
		if !rows[i].TotalCost.Equal(firstRows[i].TotalCost) {
			t.Fatalf("row %d drifted on second run", i)
		}
	}
}

func TestApplyRecalculationFinancialInvariant(t *testing.T) {
	project := &models.Project{
		TotalMaterialCost: dec("4000"),
		TotalAssetsCost:   dec("1000"),
		Discount:          dec("333.33"),
		MarginPercentage:  dec("8"),
	}
	rows := []models.ProjectManpower{{DurationCost: dec("1234.56")}}

	applyRecalculation(project, rows)

	want := project.GrandTotal.
		Add(project.VAT).
		Sub(project.Discount).
		Add(project.MarginAmount).
		Round(2)
	if !project.TotalCost.Equal(want) {
		t.Fatalf("total cost = %s, want %s", project.TotalCost, want)
	}
	if project.VAT.IsNegative() {
		t.Fatalf("vat went negative: %s", project.VAT)
	}
}

func TestApplyRecalculationEmptyManpower(t *testing.T) {
	project := &models.Project{
		AccommodationCost: dec("500"),
		TotalMaterialCost: dec("100"),
		TotalAssetsCost:   dec("50"),
	}

	applyRecalculation(project, nil)

	if project.ResourceCount != 1 {
		t.Fatalf("resource count = %d, want floor of 1", project.ResourceCount)
	}
	if !project.ManpowerTotalCost.IsZero() {
		t.Fatalf("manpower total = %s, want 0", project.ManpowerTotalCost)
	}
	if !project.GrandTotal.Equal(dec("150")) {
		t.Fatalf("grand total = %s, want 150", project.GrandTotal)
	}
}
