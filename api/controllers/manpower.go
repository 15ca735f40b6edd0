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

type addManpowerRequest struct {
	ManpowerID        uuid.UUID       `json:"manpowerId" validate:"required"`
	EstimatedWorkDays int             `json:"estimatedWorkDays" validate:"gte=0"`
	ActualWorkDays    int             `json:"actualWorkDays" validate:"gte=0"`
	Mission           []string        `json:"mission"`
	OtherCosts        decimal.Decimal `json:"otherCosts"`
	OtherCostsReason  string          `json:"otherCostsReason"`
}

type updateManpowerRequest struct {
	EstimatedWorkDays *int             `json:"estimatedWorkDays,omitempty"`
	ActualWorkDays    *int             `json:"actualWorkDays,omitempty"`
	Mission           []string         `json:"mission,omitempty"`
	OtherCosts        *decimal.Decimal `json:"otherCosts,omitempty"`
	OtherCostsReason  *string          `json:"otherCostsReason,omitempty"`
}

func parseMissionTags(raw []string) ([]enums.MissionType, error) {
	if raw == nil {
		return nil, nil
	}
	tags := make([]enums.MissionType, 0, len(raw))
	for _, value := range raw {
		tag, err := enums.ParseMissionType(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mission tag")
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func AddManpower(svc projects.ManpowerService, logg *logger.Logger) http.HandlerFunc {
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

		var req addManpowerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mission, err := parseMissionTags(req.Mission)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Add(r.Context(), principal, projectID, projects.ManpowerLineInput{
			ManpowerID:        req.ManpowerID,
			EstimatedWorkDays: req.EstimatedWorkDays,
			ActualWorkDays:    req.ActualWorkDays,
			Mission:           mission,
			OtherCosts:        req.OtherCosts,
			OtherCostsReason:  req.OtherCostsReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, project)
	}
}

func UpdateManpower(svc projects.ManpowerService, logg *logger.Logger) http.HandlerFunc {
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
		lineID, err := pathUUID(r, "manpowerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateManpowerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mission, err := parseMissionTags(req.Mission)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Update(r.Context(), principal, projectID, lineID, projects.ManpowerLineUpdateInput{
			EstimatedWorkDays: req.EstimatedWorkDays,
			ActualWorkDays:    req.ActualWorkDays,
			Mission:           mission,
			OtherCosts:        req.OtherCosts,
			OtherCostsReason:  req.OtherCostsReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func RemoveManpower(svc projects.ManpowerService, logg *logger.Logger) http.HandlerFunc {
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
		lineID, err := pathUUID(r, "manpowerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Remove(r.Context(), principal, projectID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}
