package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"personal-ledger/model"
	"personal-ledger/service"
	"personal-ledger/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAccounts provides a mock implementation of Accounts for testing.
type MockAccounts struct {
	DoFunc func(owner string, fn func(*service.Manager) error) error
}

func (m *MockAccounts) Do(owner string, fn func(*service.Manager) error) error {
	return m.DoFunc(owner, fn)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	registry := service.NewRegistry(storage.NewMemoryAccountStore(), storage.NewMemoryLedger(), nil)
	return NewRouter(registry)
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeRecord(t *testing.T, rr *httptest.ResponseRecorder) model.Record {
	t.Helper()
	var rec model.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rec))
	return rec
}

func TestCreateAccountHandler(t *testing.T) {
	t.Run("success - checking", func(t *testing.T) {
		router := newTestRouter(t)
		body := `{"name": "Everyday", "type": "checking", "overdraft_limit": "250"}`

		rr := serve(t, router, "POST", "/users/alice/accounts", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		rec := decodeRecord(t, rr)
		assert.Equal(t, "Everyday", rec.Name)
		assert.Equal(t, model.KindChecking, rec.Kind)
		assert.Equal(t, 250.0, rec.OverdraftLimit)
		assert.Equal(t, model.CheckingTransferLimit, rec.TransferLimit)
	})

	t.Run("success - savings", func(t *testing.T) {
		router := newTestRouter(t)
		body := `{"name": "Rainy Day", "type": "savings", "interest_rate": 2.5}`

		rr := serve(t, router, "POST", "/users/alice/accounts", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, 2.5, decodeRecord(t, rr).InterestRate)
	})

	t.Run("duplicate name", func(t *testing.T) {
		router := newTestRouter(t)
		serve(t, router, "POST", "/users/alice/accounts", `{"name": "Everyday", "type": "checking"}`)

		rr := serve(t, router, "POST", "/users/alice/accounts", `{"name": "EVERYDAY", "type": "savings"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("capacity reached", func(t *testing.T) {
		router := newTestRouter(t)
		serve(t, router, "POST", "/users/alice/accounts", `{"name": "One", "type": "checking"}`)
		serve(t, router, "POST", "/users/alice/accounts", `{"name": "Two", "type": "checking"}`)

		rr := serve(t, router, "POST", "/users/alice/accounts", `{"name": "Three", "type": "checking"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("validation failures", func(t *testing.T) {
		router := newTestRouter(t)
		for _, body := range []string{
			`{"name": "Everyday", "type": "checking"`, // Malformed
			`{"name": "Everyday", "type": "brokerage"}`,
			`{"name": "a,b", "type": "checking"}`,
			`{"name": "Rainy\nDay", "type": "savings"}`,
			`{"name": "Everyday", "type": "checking", "overdraft_limit": "-5"}`,
		} {
			rr := serve(t, router, "POST", "/users/alice/accounts", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		}
	})

	t.Run("persistence failure", func(t *testing.T) {
		store := storage.NewMemoryAccountStore()
		registry := service.NewRegistry(store, storage.NewMemoryLedger(), nil)
		mock := &MockAccounts{
			DoFunc: func(owner string, fn func(*service.Manager) error) error {
				return errors.Join(registry.Do(owner, fn), model.ErrPersistence)
			},
		}

		rr := serve(t, NewRouter(mock), "POST", "/users/alice/accounts", `{"name": "Everyday", "type": "checking"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "persistence error")
	})
}

func TestGetAndListAccounts(t *testing.T) {
	router := newTestRouter(t)
	serve(t, router, "POST", "/users/alice/accounts", `{"name": "Rainy Day", "type": "savings", "interest_rate": "1"}`)
	serve(t, router, "POST", "/users/alice/accounts", `{"name": "Everyday", "type": "checking"}`)

	t.Run("get by case-insensitive name", func(t *testing.T) {
		rr := serve(t, router, "GET", "/users/alice/accounts/rainy%20day", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Equal(t, "Rainy Day", decodeRecord(t, rr).Name)
	})

	t.Run("not found", func(t *testing.T) {
		rr := serve(t, router, "GET", "/users/alice/accounts/missing", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("list puts checking first", func(t *testing.T) {
		rr := serve(t, router, "GET", "/users/alice/accounts", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var list []model.Record
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, "Everyday", list[0].Name)
		assert.Equal(t, "Rainy Day", list[1].Name)
	})

	t.Run("other owners see nothing", func(t *testing.T) {
		rr := serve(t, router, "GET", "/users/bob/accounts", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestFreezeAndCloseHandlers(t *testing.T) {
	router := newTestRouter(t)
	serve(t, router, "POST", "/users/alice/accounts", `{"name": "Everyday", "type": "checking", "overdraft_limit": 100}`)

	rr := serve(t, router, "POST", "/users/alice/accounts/Everyday/freeze", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeRecord(t, rr).Frozen)

	rr = serve(t, router, "POST", "/users/alice/accounts/Everyday/deposit", `{"amount": "10"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = serve(t, router, "POST", "/users/alice/accounts/Everyday/unfreeze", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeRecord(t, rr).Frozen)

	serve(t, router, "POST", "/users/alice/accounts/Everyday/withdraw", `{"amount": "30"}`)
	rr = serve(t, router, "DELETE", "/users/alice/accounts/Everyday", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "negative balance blocks close")

	serve(t, router, "POST", "/users/alice/accounts/Everyday/deposit", `{"amount": "30"}`)
	rr = serve(t, router, "DELETE", "/users/alice/accounts/Everyday", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(t, router, "GET", "/users/alice/accounts/Everyday", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateLimitsHandler(t *testing.T) {
	router := newTestRouter(t)
	serve(t, router, "POST", "/users/alice/accounts", `{"name": "Everyday", "type": "checking"}`)

	t.Run("partial update", func(t *testing.T) {
		rr := serve(t, router, "PUT", "/users/alice/accounts/Everyday/limits",
			`{"overdraft_limit": "500", "transfer_limit": "750.25"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		rec := decodeRecord(t, rr)
		assert.Equal(t, 500.0, rec.OverdraftLimit)
		assert.Equal(t, 750.25, rec.TransferLimit)
		assert.Equal(t, model.DefaultWithdrawalLimit, rec.WithdrawalLimit)
	})

	t.Run("negative value", func(t *testing.T) {
		rr := serve(t, router, "PUT", "/users/alice/accounts/Everyday/limits", `{"withdrawal_limit": "-1"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		rr := serve(t, router, "PUT", "/users/alice/accounts/Nope/limits", `{"withdrawal_limit": "1"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHistoryHandler(t *testing.T) {
	router := newTestRouter(t)
	serve(t, router, "POST", "/users/alice/accounts", `{"name": "Everyday", "type": "checking"}`)
	for _, amount := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		rr := serve(t, router, "POST", "/users/alice/accounts/Everyday/deposit", `{"amount": "`+amount+`"}`)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	t.Run("full history", func(t *testing.T) {
		rr := serve(t, router, "GET", "/users/alice/accounts/Everyday/history", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var lines []string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&lines))
		assert.Len(t, lines, 7)
		assert.True(t, strings.HasPrefix(lines[0], "Deposit: $1.00, "))
	})

	t.Run("last n", func(t *testing.T) {
		rr := serve(t, router, "GET", "/users/alice/accounts/Everyday/history?last=3", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var lines []string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&lines))
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "Deposit: $5.00, "))
		assert.True(t, strings.HasPrefix(lines[2], "Deposit: $7.00, "))
	})

	t.Run("invalid last", func(t *testing.T) {
		for _, q := range []string{"abc", "0", "-2"} {
			rr := serve(t, router, "GET", "/users/alice/accounts/Everyday/history?last="+q, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrAccountNotFound, http.StatusNotFound},
		{"validation", model.ErrInvalidAmount, http.StatusBadRequest},
		{"capacity", service.ErrDuplicateName, http.StatusConflict},
		{"state", model.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"persistence", model.ErrPersistence, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
