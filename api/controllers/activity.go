package controllers

import (
	"net/http"

	"github.com/raedalotaibi/mashary-backend/api/responses"
	"github.com/raedalotaibi/mashary-backend/api/validators"
	"github.com/raedalotaibi/mashary-backend/internal/activity"
	"github.com/raedalotaibi/mashary-backend/internal/projects"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
)

type activityListResponse struct {
	Items  []models.ActivityLog `json:"items"`
	Cursor string               `json:"cursor"`
}

// ProjectActivity lists the audit trail of one project. The project service
// enforces the same access rules as every other project read.
func ProjectActivity(projectsSvc projects.Service, recorder activity.Recorder, logg *logger.Logger) http.HandlerFunc {
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
		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := projectsSvc.GetByID(r.Context(), principal, projectID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, cursor, err := recorder.List(r.Context(), projectID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, activityListResponse{Items: items, Cursor: cursor})
	}
}
