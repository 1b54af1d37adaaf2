package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hackerloum/mshikotap/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encode response", "error", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError translates domain errors into HTTP statuses. Anything not in
// the taxonomy is logged and reported as an internal error.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBelowMinimum),
		errors.Is(err, domain.ErrInvalidReferral),
		errors.Is(err, domain.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrAlreadyCredited),
		errors.Is(err, domain.ErrWithdrawalResolved),
		errors.Is(err, domain.ErrAssignmentInProgress),
		errors.Is(err, domain.ErrAssignmentNotPending),
		errors.Is(err, domain.ErrAssignmentNotCompleted),
		errors.Is(err, domain.ErrTaskUnavailable):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrAssignmentNotFound),
		errors.Is(err, domain.ErrWithdrawalNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrRepositoryUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
