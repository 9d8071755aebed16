package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bankledger/internal/app/logger"
	"bankledger/internal/app/service/ledger"
)

type AccountHandler struct {
	ledger *ledger.Service
}

func NewAccountHandler(lg *ledger.Service) *AccountHandler {
	return &AccountHandler{
		ledger: lg,
	}
}

// GetBalance returns one account with its current balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Account.GetBalance")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	account, err := h.ledger.Balance(r.Context(), id)
	if err != nil {
		log.Debug().Err(err).Send()
		WriteAppError(w, err)
		return
	}

	WriteResponse(w, account, http.StatusOK)
}

// GetHistory returns the account's transactions, oldest first.
func (h *AccountHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Account.GetHistory")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	history, err := h.ledger.History(r.Context(), id)
	if err != nil {
		log.Debug().Err(err).Send()
		WriteAppError(w, err)
		return
	}

	WriteResponse(w, history, http.StatusOK)
}
