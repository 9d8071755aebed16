package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bankledger/internal/app/logger"
	"bankledger/internal/app/model"
	"bankledger/internal/app/service/ledger"
	"bankledger/internal/app/service/onboarding"
)

type CustomerHandler struct {
	onboarding *onboarding.Service
	ledger     *ledger.Service
	currency   string
}

func NewCustomerHandler(ob *onboarding.Service, lg *ledger.Service, currency string) *CustomerHandler {
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &CustomerHandler{
		onboarding: ob,
		ledger:     lg,
		currency:   currency,
	}
}

// CreateCustomerAccount onboards a customer with an initial funded account.
func (h *CustomerHandler) CreateCustomerAccount(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Customer.CreateCustomerAccount")

	in := struct {
		Name          string          `json:"name" validate:"required,min=1,max=1024"`
		DepositAmount decimal.Decimal `json:"deposit_amount"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	deposit, err := model.NewMoney(in.DepositAmount, h.currency)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	customer, account, err := h.onboarding.OpenCustomerAccount(r.Context(), in.Name, deposit)
	if err != nil {
		log.Debug().Err(err).Send()
		WriteAppError(w, err)
		return
	}

	out := struct {
		Customer *model.Customer `json:"customer"`
		Account  *model.Account  `json:"account"`
	}{customer, account}

	WriteResponse(w, out, http.StatusOK)
}

// AddBankingAccount opens one more account for an existing customer.
func (h *CustomerHandler) AddBankingAccount(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Customer.AddBankingAccount")

	in := struct {
		OwnerID       int64           `json:"owner_id" validate:"required,gt=0"`
		DepositAmount decimal.Decimal `json:"deposit_amount"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	deposit, err := model.NewMoney(in.DepositAmount, h.currency)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	account, err := h.onboarding.AddAccount(r.Context(), in.OwnerID, deposit)
	if err != nil {
		log.Debug().Err(err).Send()
		WriteAppError(w, err)
		return
	}

	WriteResponse(w, account, http.StatusOK)
}

// GetBalances lists the customer's accounts with their balances.
func (h *CustomerHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Customer.GetBalances")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	accounts, err := h.ledger.BalancesByOwner(r.Context(), id)
	if err != nil {
		log.Debug().Err(err).Send()
		WriteAppError(w, err)
		return
	}

	WriteResponse(w, accounts, http.StatusOK)
}
