package handler

import (
	"net/http"
	"strconv"

	"personal-ledger/model"
	"personal-ledger/service"
)

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	accounts Accounts
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts Accounts) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// CreateAccountHandler opens a checking or savings account.
// It expects a JSON body with "name", "type" and either "overdraft_limit"
// (checking) or "interest_rate" (savings).
//
// Method: POST
// Path: /users/{owner}/accounts
// Success: 201 Created
// Error: 400 Bad Request (for invalid JSON, names or values)
// Error: 409 Conflict (when the type is full or the name is taken)
// Error: 500 Internal Server Error (if the collection could not be saved)
func (h *AccountHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req model.OpenAccountRequest
	if !decode(w, r, &req) {
		return
	}

	var created model.Record
	err := h.accounts.Do(ownerOf(r), func(m *service.Manager) error {
		var err error
		switch req.Type {
		case model.KindChecking:
			err = m.AddChecking(req.Name, req.OverdraftLimit.InexactFloat64())
		case model.KindSavings:
			err = m.AddSavings(req.Name, req.InterestRate.InexactFloat64())
		default:
			return errUnknownType
		}
		if a, ok := m.AccountByName(req.Name); ok {
			created = a.Record()
		}
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListAccountsHandler returns every account of the owner, checking first.
//
// Method: GET
// Path: /users/{owner}/accounts
// Success: 200 OK
func (h *AccountHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	list := []model.Record{}
	err := h.accounts.Do(ownerOf(r), func(m *service.Manager) error {
		for _, a := range m.Accounts() {
			list = append(list, a.Record())
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetAccountHandler returns one account by case-insensitive name.
//
// Method: GET
// Path: /users/{owner}/accounts/{name}
// Success: 200 OK
// Error: 404 Not Found (if the account does not exist)
func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	var rec model.Record
	err := h.accounts.Do(ownerOf(r), func(m *service.Manager) error {
		var err error
		rec, err = recordOf(m, accountOf(r))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CloseAccountHandler closes an account whose balance is not negative.
//
// Method: DELETE
// Path: /users/{owner}/accounts/{name}
// Success: 204 No Content
// Error: 404 Not Found (if the account does not exist)
// Error: 422 Unprocessable Entity (if the balance is negative)
func (h *AccountHandler) CloseAccountHandler(w http.ResponseWriter, r *http.Request) {
	err := h.accounts.Do(ownerOf(r), func(m *service.Manager) error {
		return m.CloseAccount(accountOf(r))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FreezeHandler blocks deposits and withdrawals on an account.
//
// Method: POST
// Path: /users/{owner}/accounts/{name}/freeze
// Success: 200 OK
func (h *AccountHandler) FreezeHandler(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(m *service.Manager, name string) error { return m.FreezeAccount(name) })
}

// UnfreezeHandler lifts a freeze.
//
// Method: POST
// Path: /users/{owner}/accounts/{name}/unfreeze
// Success: 200 OK
func (h *AccountHandler) UnfreezeHandler(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(m *service.Manager, name string) error { return m.UnfreezeAccount(name) })
}

// UpdateLimitsHandler changes any subset of an account's limits. Fields are
// applied in order; the first rejected value stops the update.
//
// Method: PUT
// Path: /users/{owner}/accounts/{name}/limits
// Success: 200 OK
// Error: 400 Bad Request (for negative values)
func (h *AccountHandler) UpdateLimitsHandler(w http.ResponseWriter, r *http.Request) {
	var req model.LimitsRequest
	if !decode(w, r, &req) {
		return
	}
	h.update(w, r, func(m *service.Manager, name string) error {
		if req.OverdraftLimit != nil {
			if err := m.SetOverdraftLimit(name, req.OverdraftLimit.InexactFloat64()); err != nil {
				return err
			}
		}
		if req.OverdraftInterestRate != nil {
			if err := m.SetOverdraftInterestRate(name, req.OverdraftInterestRate.InexactFloat64()); err != nil {
				return err
			}
		}
		if req.WithdrawalLimit != nil {
			if err := m.SetWithdrawalLimit(name, req.WithdrawalLimit.InexactFloat64()); err != nil {
				return err
			}
		}
		if req.TransferLimit != nil {
			return m.SetTransferLimit(name, req.TransferLimit.InexactFloat64())
		}
		return nil
	})
}

// HistoryHandler returns the account's history lines, oldest first.
// With ?last=N only the trailing N entries are returned.
//
// Method: GET
// Path: /users/{owner}/accounts/{name}/history
// Success: 200 OK
// Error: 400 Bad Request (for a malformed "last")
func (h *AccountHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	last := 0
	if s := r.URL.Query().Get("last"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid value for last", http.StatusBadRequest)
			return
		}
		last = n
	}

	var lines []string
	err := h.accounts.Do(ownerOf(r), func(m *service.Manager) error {
		var err error
		if last > 0 {
			lines, err = m.LastTransactions(r.Context(), accountOf(r), last)
		} else {
			lines, err = m.History(r.Context(), accountOf(r))
		}
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// update runs fn on the named account and responds with its new state.
func (h *AccountHandler) update(w http.ResponseWriter, r *http.Request, fn func(m *service.Manager, name string) error) {
	rec, err := mutateAndView(h.accounts, r, fn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func mutateAndView(accounts Accounts, r *http.Request, fn func(m *service.Manager, name string) error) (model.Record, error) {
	var rec model.Record
	err := accounts.Do(ownerOf(r), func(m *service.Manager) error {
		name := accountOf(r)
		if err := fn(m, name); err != nil {
			return err
		}
		var err error
		rec, err = recordOf(m, name)
		return err
	})
	return rec, err
}
