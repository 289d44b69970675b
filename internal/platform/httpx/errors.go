package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Validation failures from the posting and allocation engines surface as
// 422 so callers can distinguish them from malformed requests.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrUnprocessable):
		Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
