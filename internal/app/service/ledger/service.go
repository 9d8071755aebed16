// Package ledger is the transfer engine: it validates transfer requests and
// drives the storage layer's atomic two-account primitive. All balance
// mutation in the system funnels through here or through account creation.
package ledger

import (
	"context"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/logger"
	"bankledger/internal/app/model"
	"bankledger/internal/app/storage"
)

type Service struct {
	accounts     storage.AccountRepository
	transactions storage.TransactionRepository
}

func (s *Service) LoggerComponent() string {
	return "Ledger.Service"
}

func New(accounts storage.AccountRepository, transactions storage.TransactionRepository) (*Service, error) {
	s := &Service{
		accounts:     accounts,
		transactions: transactions,
	}
	return s, nil
}

// Transfer moves amount from sender to recipient and returns the recorded
// transaction. The adapter layer validates inputs syntactically; the checks
// here are defensive re-validation, cheap enough to run on every call. On
// any failure no balance is mutated and nothing is appended to the log.
func (s *Service) Transfer(ctx context.Context, senderID, recipientID int64, amount model.Money) (*model.Transaction, error) {
	l := logger.Get(ctx, s).With().
		Int64("sender_account_id", senderID).
		Int64("recipient_account_id", recipientID).
		Str("amount", amount.String()).
		Logger()
	l.Debug().Msg("Transfer requested")
	ctx = l.WithContext(ctx)

	if !amount.Positive() {
		return nil, apperr.ErrInvalidAmount
	}
	if senderID == recipientID {
		return nil, apperr.ErrSameAccount
	}

	m, err := s.accounts.Transfer(ctx, senderID, recipientID, amount)
	if err != nil {
		l.Debug().Err(err).Msg("Transfer failed")
		return nil, err
	}

	l.Info().
		Int64("transaction_id", m.ID).
		Str("reference", m.Reference).
		Msg("Transfer done")

	return m, nil
}

// Balance returns the account with its current balance.
func (s *Service) Balance(ctx context.Context, accountID int64) (*model.Account, error) {
	return s.accounts.Read(ctx, accountID)
}

// BalancesByOwner returns all accounts of a customer ordered by id.
func (s *Service) BalancesByOwner(ctx context.Context, ownerID int64) ([]*model.Account, error) {
	return s.accounts.AllByOwnerID(ctx, ownerID)
}

// History returns the account's transactions, sent and received, ordered by
// timestamp ascending with id breaking ties. An account with no activity is
// an empty slice, not an error.
func (s *Service) History(ctx context.Context, accountID int64) ([]*model.Transaction, error) {
	return s.transactions.AllByAccountID(ctx, accountID)
}
