package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/alice"
	"github.com/rs/zerolog/hlog"

	"bankledger/internal/app/handler"
	mw "bankledger/internal/app/middleware"
)

func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	ch := handler.NewCustomerHandler(a.onboarding, a.ledger, a.config.Currency)
	ah := handler.NewAccountHandler(a.ledger)
	th := handler.NewTransactionHandler(a.ledger, a.notifier, a.config.Currency)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/create-customer-account", ch.CreateCustomerAccount)
		r.Post("/add-banking-account", ch.AddBankingAccount)
		r.Get("/{id}/accounts-balances", ch.GetBalances)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/{id}/get-balance", ah.GetBalance)
		r.Get("/{id}/get-history", ah.GetHistory)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.With(mw.Idempotency(a.redis, a.config.Redis.IdempotencyTTL)).
			Post("/make", th.Make)
	})

	chain := alice.New(
		hlog.NewHandler(a.logger.Logger),
		hlog.RequestIDHandler("request_id", "Request-Id"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Request")
		}),
	)

	return chain.Then(r)
}
