package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"personal-ledger/model"
	"personal-ledger/service"

	"github.com/gorilla/mux"
)

// Accounts runs fn against the manager of one owner. *service.Registry
// implements it.
type Accounts interface {
	Do(owner string, fn func(*service.Manager) error) error
}

var errUnknownType = fmt.Errorf("%w: type must be %q or %q", model.ErrValidation, model.KindChecking, model.KindSavings)

// statusFor maps a ledger error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrCapacity):
		return http.StatusConflict
	case errors.Is(err, model.ErrState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with its mapped status. Server-side failures are
// logged and their details kept out of the response.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error handling request: %v", err)
		http.Error(w, "Failed to persist changes", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func ownerOf(r *http.Request) string {
	return mux.Vars(r)["owner"]
}

func accountOf(r *http.Request) string {
	return mux.Vars(r)["name"]
}

// recordOf returns the current view of the named account.
func recordOf(m *service.Manager, name string) (model.Record, error) {
	a, ok := m.AccountByName(name)
	if !ok {
		return model.Record{}, service.ErrAccountNotFound
	}
	return a.Record(), nil
}
