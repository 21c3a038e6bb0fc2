package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dto"
)

var errBadJSON = errors.New("malformed json body")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps a domain error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadJSON), errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrEmailMismatch):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal"
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, dto.ErrorResponse{Error: dto.ErrorDetail{Code: code, Message: msg}})
}
