package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"bankledger/internal/app/logger"
	"bankledger/internal/app/model"
	"bankledger/internal/app/service/ledger"
	"bankledger/pkg/notify"
)

type TransactionHandler struct {
	ledger   *ledger.Service
	notifier *notify.Service
	currency string
}

func NewTransactionHandler(lg *ledger.Service, notifier *notify.Service, currency string) *TransactionHandler {
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &TransactionHandler{
		ledger:   lg,
		notifier: notifier,
		currency: currency,
	}
}

// Make executes a transfer between two accounts and returns the recorded
// transaction. The webhook notification is queued after the commit and has
// no bearing on the response.
func (h *TransactionHandler) Make(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Transaction.Make")

	in := struct {
		FromAccountID int64           `json:"from_banking_account" validate:"required,gt=0"`
		ToAccountID   int64           `json:"to_banking_account" validate:"required,gt=0"`
		DepositAmount decimal.Decimal `json:"deposit_amount"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	amount, err := model.NewMoney(in.DepositAmount, h.currency)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	m, err := h.ledger.Transfer(r.Context(), in.FromAccountID, in.ToAccountID, amount)
	if err != nil {
		log.Debug().Err(err).Send()
		WriteAppError(w, err)
		return
	}

	h.notifier.Enqueue(notify.Event{
		Reference:          m.Reference,
		SenderAccountID:    m.SenderAccountID,
		RecipientAccountID: m.RecipientAccountID,
		Amount:             m.Amount.Amount.StringFixed(model.MoneyScale),
		Currency:           m.Amount.Currency,
		CreatedAt:          m.CreatedAt,
	})

	WriteResponse(w, m, http.StatusOK)
}
