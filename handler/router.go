package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every ledger endpoint under /users/{owner}.
func NewRouter(accounts Accounts) *mux.Router {
	accountHandler := NewAccountHandler(accounts)
	transactionHandler := NewTransactionHandler(accounts)

	r := mux.NewRouter()
	u := r.PathPrefix("/users/{owner}").Subrouter()

	u.HandleFunc("/accounts", accountHandler.CreateAccountHandler).Methods(http.MethodPost)
	u.HandleFunc("/accounts", accountHandler.ListAccountsHandler).Methods(http.MethodGet)
	u.HandleFunc("/accounts/{name}", accountHandler.GetAccountHandler).Methods(http.MethodGet)
	u.HandleFunc("/accounts/{name}", accountHandler.CloseAccountHandler).Methods(http.MethodDelete)
	u.HandleFunc("/accounts/{name}/freeze", accountHandler.FreezeHandler).Methods(http.MethodPost)
	u.HandleFunc("/accounts/{name}/unfreeze", accountHandler.UnfreezeHandler).Methods(http.MethodPost)
	u.HandleFunc("/accounts/{name}/limits", accountHandler.UpdateLimitsHandler).Methods(http.MethodPut)
	u.HandleFunc("/accounts/{name}/history", accountHandler.HistoryHandler).Methods(http.MethodGet)

	u.HandleFunc("/accounts/{name}/deposit", transactionHandler.DepositHandler).Methods(http.MethodPost)
	u.HandleFunc("/accounts/{name}/withdraw", transactionHandler.WithdrawHandler).Methods(http.MethodPost)
	u.HandleFunc("/transfers", transactionHandler.CreateTransferHandler).Methods(http.MethodPost)
	u.HandleFunc("/interest/savings", transactionHandler.SavingsInterestHandler).Methods(http.MethodPost)
	u.HandleFunc("/interest/overdraft", transactionHandler.OverdraftInterestHandler).Methods(http.MethodPost)

	return r
}
