package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/service"
)

type errorPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(logger *log.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Printf("Error encoding response: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Validation problems are
// the caller's to correct; payment reconciliation conflicts block settlement
// until fixed; anything unrecognized is a 500.
func writeError(logger *log.Logger, w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrOverpayment), errors.Is(err, models.ErrUnderpayment):
		status = http.StatusConflict
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCustomerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSessionSettled),
		errors.Is(err, service.ErrCartLocked),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrVariantAlreadyExists):
		status = http.StatusConflict
	default:
		logger.Printf("Unexpected error: %v", err)
		writeJSON(logger, w, http.StatusInternalServerError, errorPayload{Status: "failed", Message: "An unexpected error occurred"})
		return
	}
	writeJSON(logger, w, status, errorPayload{Status: "failed", Message: err.Error()})
}

func requireMethod(logger *log.Logger, w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		logger.Printf("Method not allowed for %s: %s", r.URL.Path, r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
