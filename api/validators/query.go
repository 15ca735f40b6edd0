package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
	"github.com/raedalotaibi/mashary-backend/pkg/pagination"
)

// PaginationParams reads limit and cursor query parameters. A missing limit
// falls back to the package default downstream.
func PaginationParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		params.Limit = value
	}
	if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
		params.Cursor = cursor
	}
	return params, nil
}
