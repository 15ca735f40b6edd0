package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raedalotaibi/mashary-backend/api/responses"
	"github.com/raedalotaibi/mashary-backend/api/validators"
	"github.com/raedalotaibi/mashary-backend/internal/projects"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
)

type createProjectRequest struct {
	ProjectID       *uuid.UUID  `json:"projectId,omitempty"`
	Name            string      `json:"name" validate:"required"`
	Type            string      `json:"type"`
	Category        string      `json:"category" validate:"required,oneof=direct etimad"`
	ClientID        uuid.UUID   `json:"clientId" validate:"required"`
	DurationDays    int         `json:"durationDays" validate:"gte=0"`
	FileRefs        []string    `json:"fileRefs"`
	SourceType      *string     `json:"sourceType,omitempty" validate:"omitempty,oneof=lead opportunity deal"`
	SourceID        *uuid.UUID  `json:"sourceId,omitempty"`
	AssignedUserIDs []uuid.UUID `json:"assignedUserIds"`
}

type associateVehiclesRequest struct {
	VehicleIDs []uuid.UUID `json:"vehicleIds"`
}

type manpowerParamsRequest struct {
	AccommodationCost            decimal.Decimal  `json:"accommodationCost"`
	FoodCostPerDay               decimal.Decimal  `json:"foodCostPerDay"`
	ManagementAdditionPercentage *decimal.Decimal `json:"managementAdditionPercentage,omitempty"`
}

type additionalItemSelectionRequest struct {
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	Quantity int       `json:"quantity" validate:"gte=0"`
}

type associateMaterialsRequest struct {
	MaterialIDs     []uuid.UUID                                    `json:"materialIds"`
	MaterialMargin  decimal.Decimal                                `json:"materialMargin"`
	AdditionalItems map[uuid.UUID][]additionalItemSelectionRequest `json:"additionalItems"`
}

type associateAssetsRequest struct {
	AssetIDs []uuid.UUID `json:"assetIds"`
}

type completeProjectRequest struct {
	Discount         decimal.Decimal `json:"discount"`
	MarginPercentage decimal.Decimal `json:"marginPercentage"`
}

// CreateProject creates the draft or patches its basic info when a project
// id is supplied.
func CreateProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createProjectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := projects.UpsertDraftInput{
			ProjectID:       req.ProjectID,
			Name:            req.Name,
			Type:            req.Type,
			Category:        enums.ProjectCategory(req.Category),
			ClientID:        req.ClientID,
			DurationDays:    req.DurationDays,
			FileRefs:        req.FileRefs,
			SourceID:        req.SourceID,
			AssignedUserIDs: req.AssignedUserIDs,
		}
		if req.SourceType != nil {
			source, err := enums.ParseConversionSource(*req.SourceType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source type"))
				return
			}
			input.SourceType = &source
		}

		project, err := svc.UpsertDraft(r.Context(), principal, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, project)
	}
}

func AssociateVehicles(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req associateVehiclesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.AssociateVehicles(r.Context(), principal, projectID, req.VehicleIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

// SetManpowerParams stores the project-wide manpower cost parameters.
func SetManpowerParams(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req manpowerParamsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.SetManpowerParams(r.Context(), principal, projectID, projects.ManpowerParamsInput{
			AccommodationCost:            req.AccommodationCost,
			FoodCostPerDay:               req.FoodCostPerDay,
			ManagementAdditionPercentage: req.ManagementAdditionPercentage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func AssociateMaterials(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req associateMaterialsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := projects.MaterialsInput{
			MaterialIDs:    req.MaterialIDs,
			MaterialMargin: req.MaterialMargin,
		}
		if len(req.AdditionalItems) > 0 {
			input.AdditionalItems = make(map[uuid.UUID][]projects.AdditionalItemSelection, len(req.AdditionalItems))
			for group, selections := range req.AdditionalItems {
				converted := make([]projects.AdditionalItemSelection, 0, len(selections))
				for _, sel := range selections {
					converted = append(converted, projects.AdditionalItemSelection{
						ItemID:   sel.ItemID,
						Quantity: sel.Quantity,
					})
				}
				input.AdditionalItems[group] = converted
			}
		}

		project, err := svc.AssociateMaterials(r.Context(), principal, projectID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func AssociateAssets(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req associateAssetsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.AssociateAssets(r.Context(), principal, projectID, req.AssetIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func CompleteProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req completeProjectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Complete(r.Context(), principal, projectID, projects.CompleteInput{
			Discount:         req.Discount,
			MarginPercentage: req.MarginPercentage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func GetDraft(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.GetDraft(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func ListProjects(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), principal, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.GetByID(r.Context(), principal, projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func DeleteProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), principal, projectID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
