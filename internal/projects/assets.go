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

// AssociateAssets reconciles the attached asset set against the requested
// ids. Rows that survive the diff keep the prices snapshotted when they were
// first attached; only newly attached rows read the current catalog prices.
func (s *service) AssociateAssets(ctx context.Context, principal Principal, projectID uuid.UUID, assetIDs []uuid.UUID) (*models.Project, error) {
	return s.mutateStaged(ctx, principal, projectID, enums.ActivityAssetsAssociated, func(tx *gorm.DB, repo Repository, project *models.Project) error {
		requested := make(map[uuid.UUID]struct{}, len(assetIDs))
		for _, id := range assetIDs {
			requested[id] = struct{}{}
		}

		var catalogRows map[uuid.UUID]models.Asset
		if len(assetIDs) > 0 {
			rows, err := s.catalog.FindAssetsByIDs(ctx, assetIDs)
			if err != nil {
				return err
			}
			catalogRows = make(map[uuid.UUID]models.Asset, len(rows))
			for _, row := range rows {
				catalogRows[row.ID] = row
			}
		}

		existing, err := repo.ListAssets(ctx, project.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attached assets")
		}

		kept := make([]models.ProjectAsset, 0, len(existing))
		attached := make(map[uuid.UUID]struct{}, len(existing))
		removals := make([]uuid.UUID, 0)
		for _, row := range existing {
			attached[row.AssetID] = struct{}{}
			if _, ok := requested[row.AssetID]; ok {
				kept = append(kept, row)
			} else {
				removals = append(removals, row.AssetID)
			}
		}

		additions := make([]models.ProjectAsset, 0)
		for _, id := range assetIDs {
			if _, ok := attached[id]; ok {
				continue
			}
			asset := catalogRows[id]
			row := models.ProjectAsset{
				ProjectID: project.ID,
				AssetID:   asset.ID,
				RentPrice: asset.RentPrice,
				BuyPrice:  asset.BuyPrice,
			}
			additions = append(additions, row)
			kept = append(kept, row)
		}

		if len(removals) > 0 {
			if err := repo.RemoveAssets(ctx, project.ID, removals); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach assets")
			}
		}
		if len(additions) > 0 {
			if err := repo.AddAssets(ctx, additions); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach assets")
			}
		}

		rentTotal := decimal.Zero
		buyTotal := decimal.Zero
		for _, row := range kept {
			rentTotal = rentTotal.Add(row.RentPrice)
			buyTotal = buyTotal.Add(row.BuyPrice)
		}
		project.TotalAssetRentPrice = round2(rentTotal)
		project.TotalAssetBuyPrice = round2(buyTotal)
		project.TotalAssetsCost = round2(rentTotal.Add(buyTotal))
		project.BuildStage = project.BuildStage.Advance(enums.BuildStageAssets)
		return nil
	})
}
