package shared

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// FiltersFromQuery builds ListFilters from request query parameters. Filters
// live only for the duration of the request.
func FiltersFromQuery(r *http.Request) ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}.Normalize()
}

// RespondError maps master data errors onto problem responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
