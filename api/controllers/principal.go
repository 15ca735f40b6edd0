package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/raedalotaibi/mashary-backend/api/middleware"
	"github.com/raedalotaibi/mashary-backend/internal/projects"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
)

// principalFrom rebuilds the authenticated caller from the context the Auth
// middleware seeded.
func principalFrom(r *http.Request) (projects.Principal, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return projects.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return projects.Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseMemberRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return projects.Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return projects.Principal{UserID: userID, Role: role}, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, param+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
