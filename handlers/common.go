package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"fuelstation/db"
	"fuelstation/ledger"
)

var validate = validator.New()

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// decodeAndValidate parses the JSON body into req and runs its validation
// tags. Returns false after writing the error response.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	var (
		validationErr *ledger.ValidationError
		orderErr      *ledger.InvalidReadingOrderError
		stockErr      *ledger.InsufficientStockError
		overfillErr   *ledger.OverfillError
	)
	switch {
	case errors.As(err, &orderErr), errors.As(err, &validationErr), errors.As(err, &overfillErr):
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &stockErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":     stockErr.Error(),
			"available": stockErr.Available,
			"required":  stockErr.Required,
		})
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, db.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	default:
		writeError(w, "Operation failed", http.StatusInternalServerError)
	}
}
