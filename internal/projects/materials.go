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

// AssociateMaterials destroys and rebuilds the whole material selection.
// Grouped additional-item costs are pooled per group and spread across every
// selected material in that group by the material's catalog quantity, so two
// materials sharing a group always carry the same per-unit addition.
func (s *service) AssociateMaterials(ctx context.Context, principal Principal, projectID uuid.UUID, input MaterialsInput) (*models.Project, error) {
	if input.MaterialMargin.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material margin must be non-negative")
	}
	for _, selections := range input.AdditionalItems {
		for _, sel := range selections {
			if sel.Quantity < 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "additional item quantity must be non-negative")
			}
		}
	}

	return s.mutateStaged(ctx, principal, projectID, enums.ActivityMaterialsReplaced, func(tx *gorm.DB, repo Repository, project *models.Project) error {
		margin := round2(input.MaterialMargin)

		if len(input.MaterialIDs) == 0 {
			if err := repo.ReplaceMaterials(ctx, project.ID, nil, nil); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear materials")
			}
			project.MaterialMargin = margin
			project.TotalMaterialCost = decimal.Zero
			project.BuildStage = project.BuildStage.Advance(enums.BuildStageMaterials)
			return nil
		}

		materials, err := s.catalog.FindMaterialsByIDs(ctx, input.MaterialIDs)
		if err != nil {
			return err
		}

		itemRows, groupCost, err := s.resolveAdditionalItems(ctx, project.ID, input.AdditionalItems)
		if err != nil {
			return err
		}

		// Per-unit share of each group's pooled cost, split over the catalog
		// quantity of every selected material in the group.
		groupQuantity := make(map[uuid.UUID]int64)
		for _, material := range materials {
			if material.AdditionalMaterialID != nil {
				groupQuantity[*material.AdditionalMaterialID] += int64(material.Quantity)
			}
		}
		perUnit := make(map[uuid.UUID]decimal.Decimal, len(groupCost))
		for group, total := range groupCost {
			if qty := groupQuantity[group]; qty > 0 {
				perUnit[group] = total.Div(decimal.NewFromInt(qty))
			} else {
				perUnit[group] = decimal.Zero
			}
		}

		materialRows := make([]models.ProjectMaterial, 0, len(materials))
		totalMaterialCost := decimal.Zero
		for _, material := range materials {
			additionalPerUnit := decimal.Zero
			if material.AdditionalMaterialID != nil {
				additionalPerUnit = perUnit[*material.AdditionalMaterialID]
			}
			servicePrice := decimal.Zero
			if material.Service != nil {
				servicePrice = material.Service.Price
			}

			marginCommission := round2(material.UnitPrice.
				Add(additionalPerUnit).
				Mul(margin).
				Div(oneHundred))
			materialCost := round2(material.UnitPrice.
				Add(additionalPerUnit).
				Add(marginCommission).
				Add(servicePrice))
			rowTotal := round2(materialCost.Mul(decimal.NewFromInt(int64(material.Quantity))))

			materialRows = append(materialRows, models.ProjectMaterial{
				ProjectID:               project.ID,
				MaterialID:              material.ID,
				AdditionalMaterialPrice: round2(additionalPerUnit),
				MarginCommission:        marginCommission,
				MaterialCost:            materialCost,
				TotalMaterialCost:       rowTotal,
			})
			totalMaterialCost = totalMaterialCost.Add(rowTotal)
		}

		if err := repo.ReplaceMaterials(ctx, project.ID, materialRows, itemRows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace materials")
		}
		project.MaterialMargin = margin
		project.TotalMaterialCost = round2(totalMaterialCost)
		project.BuildStage = project.BuildStage.Advance(enums.BuildStageMaterials)
		return nil
	})
}

// resolveAdditionalItems validates every selected item against the catalog
// and its declared group, builds the join rows, and sums each group's pooled
// cost (quantity times catalog price per selection).
func (s *service) resolveAdditionalItems(
	ctx context.Context,
	projectID uuid.UUID,
	selections map[uuid.UUID][]AdditionalItemSelection,
) ([]models.ProjectAdditionalMaterialItem, map[uuid.UUID]decimal.Decimal, error) {
	itemIDs := make([]uuid.UUID, 0)
	for _, group := range selections {
		for _, sel := range group {
			itemIDs = append(itemIDs, sel.ItemID)
		}
	}

	items := make(map[uuid.UUID]models.AdditionalMaterialItem, len(itemIDs))
	if len(itemIDs) > 0 {
		rows, err := s.catalog.FindAdditionalItemsByIDs(ctx, itemIDs)
		if err != nil {
			return nil, nil, err
		}
		for _, row := range rows {
			items[row.ID] = row
		}
	}

	itemRows := make([]models.ProjectAdditionalMaterialItem, 0, len(itemIDs))
	groupCost := make(map[uuid.UUID]decimal.Decimal, len(selections))
	for group, groupSelections := range selections {
		total := decimal.Zero
		for _, sel := range groupSelections {
			item := items[sel.ItemID]
			if item.GroupID != group {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "additional item does not belong to the requested group")
			}
			allocated := item.Price.Mul(decimal.NewFromInt(int64(sel.Quantity)))
			itemRows = append(itemRows, models.ProjectAdditionalMaterialItem{
				ProjectID:                projectID,
				AdditionalMaterialItemID: sel.ItemID,
				Quantity:                 sel.Quantity,
				AllocatedPrice:           round2(allocated),
			})
			total = total.Add(allocated)
		}
		groupCost[group] = total
	}
	return itemRows, groupCost, nil
}
