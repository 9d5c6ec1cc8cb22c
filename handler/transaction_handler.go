package handler

import (
	"context"
	"net/http"

	"personal-ledger/model"
	"personal-ledger/service"
)

// TransactionHandler holds dependencies for money-moving handlers.
type TransactionHandler struct {
	accounts Accounts
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(accounts Accounts) *TransactionHandler {
	return &TransactionHandler{accounts: accounts}
}

// DepositHandler credits a positive amount to an account.
// It expects a JSON body with "amount" as a string or number.
//
// Method: POST
// Path: /users/{owner}/accounts/{name}/deposit
// Success: 200 OK
// Error: 400 Bad Request (for invalid JSON or a non-positive amount)
// Error: 404 Not Found (if the account does not exist)
// Error: 422 Unprocessable Entity (if the account is frozen)
func (h *TransactionHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, (*service.Manager).Deposit)
}

// WithdrawHandler debits a positive amount subject to the account's limits.
//
// Method: POST
// Path: /users/{owner}/accounts/{name}/withdraw
// Success: 200 OK
// Error: 422 Unprocessable Entity (frozen, over the withdrawal limit or
// beyond the overdraft limit)
func (h *TransactionHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, (*service.Manager).Withdraw)
}

// CreateTransferHandler moves funds between two accounts of one owner.
// It expects a JSON body with "source", "target" and "amount".
//
// Method: POST
// Path: /users/{owner}/transfers
// Success: 200 OK
// Error: 400 Bad Request (for invalid JSON or a non-positive amount)
// Error: 404 Not Found (if either account does not exist)
// Error: 422 Unprocessable Entity (for business rule violations)
// Error: 500 Internal Server Error (funds moved but history or accounts
// could not be saved)
func (h *TransactionHandler) CreateTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if !decode(w, r, &req) {
		return
	}
	amount, err := model.PositiveAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	var views []model.Record
	err = h.accounts.Do(ownerOf(r), func(m *service.Manager) error {
		if err := m.Transfer(r.Context(), req.Source, req.Target, amount); err != nil {
			return err
		}
		for _, name := range []string{req.Source, req.Target} {
			rec, err := recordOf(m, name)
			if err != nil {
				return err
			}
			views = append(views, rec)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// SavingsInterestHandler credits interest to every non-frozen savings account.
//
// Method: POST
// Path: /users/{owner}/interest/savings
// Success: 200 OK
func (h *TransactionHandler) SavingsInterestHandler(w http.ResponseWriter, r *http.Request) {
	h.interest(w, r, (*service.Manager).ApplyInterestToAllSavings)
}

// OverdraftInterestHandler charges overdraft interest on every non-frozen
// overdrawn account.
//
// Method: POST
// Path: /users/{owner}/interest/overdraft
// Success: 200 OK
func (h *TransactionHandler) OverdraftInterestHandler(w http.ResponseWriter, r *http.Request) {
	h.interest(w, r, (*service.Manager).ApplyOverdraftInterestToAll)
}

type fundsOp func(m *service.Manager, ctx context.Context, name string, amount float64) error

func (h *TransactionHandler) moveFunds(w http.ResponseWriter, r *http.Request, op fundsOp) {
	var req model.AmountRequest
	if !decode(w, r, &req) {
		return
	}
	amount, err := model.PositiveAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := mutateAndView(h.accounts, r, func(m *service.Manager, name string) error {
		return op(m, r.Context(), name, amount)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *TransactionHandler) interest(w http.ResponseWriter, r *http.Request, op func(*service.Manager, context.Context) (float64, error)) {
	var total float64
	err := h.accounts.Do(ownerOf(r), func(m *service.Manager) error {
		var err error
		total, err = op(m, r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.InterestResult{Total: total})
}
