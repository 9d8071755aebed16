package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/model"
	"bankledger/internal/app/service/ledger"
	storagemock "bankledger/internal/app/storage/mock"
)

func newAccountRouter(t *testing.T) (http.Handler, *storagemock.MockAccountRepository, *storagemock.MockTransactionRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	accounts := storagemock.NewMockAccountRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	svc, err := ledger.New(accounts, transactions)
	if err != nil {
		t.Fatal(err)
	}
	h := NewAccountHandler(svc)

	r := chi.NewRouter()
	r.Get("/accounts/{id}/get-balance", h.GetBalance)
	r.Get("/accounts/{id}/get-history", h.GetHistory)
	return r, accounts, transactions
}

func TestGetBalance(t *testing.T) {
	r, accounts, _ := newAccountRouter(t)

	accounts.EXPECT().
		Read(gomock.Any(), int64(7)).
		Return(&model.Account{
			ID:      7,
			OwnerID: 1,
			Number:  "000000000075",
			Balance: model.MustParseMoney("49.99", "GBP"),
		}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/7/get-balance", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetBalanceNotFound(t *testing.T) {
	r, accounts, _ := newAccountRouter(t)

	accounts.EXPECT().
		Read(gomock.Any(), int64(404)).
		Return(nil, apperr.ErrNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/404/get-balance", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want=404", w.Code)
	}
}

func TestGetBalanceBadID(t *testing.T) {
	r, _, _ := newAccountRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/abc/get-balance", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", w.Code)
	}
}

func TestGetHistoryEmpty(t *testing.T) {
	r, _, transactions := newAccountRouter(t)

	transactions.EXPECT().
		AllByAccountID(gomock.Any(), int64(7)).
		Return([]*model.Transaction{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/7/get-history", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Body.String() != "[]" {
		t.Fatalf("empty history must serialize to [], got %s", w.Body.String())
	}
}
