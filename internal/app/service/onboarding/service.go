// Package onboarding creates customers together with their first funded
// account as one atomic unit. A customer without its account, or the
// reverse, is never observable.
package onboarding

import (
	"context"
	"database/sql"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/logger"
	"bankledger/internal/app/model"
	"bankledger/internal/app/storage"
)

type Service struct {
	db        *sql.DB
	customers storage.CustomerRepository
	accounts  storage.AccountRepository
}

func (s *Service) LoggerComponent() string {
	return "Onboarding.Service"
}

func New(db *sql.DB, customers storage.CustomerRepository, accounts storage.AccountRepository) (*Service, error) {
	s := &Service{
		db:        db,
		customers: customers,
		accounts:  accounts,
	}
	return s, nil
}

// OpenCustomerAccount creates one customer and one account owned by it
// inside a single serializable transaction. The customers name constraint
// surfaces concurrent duplicates as apperr.ErrDuplicateName.
func (s *Service) OpenCustomerAccount(ctx context.Context, name string, deposit model.Money) (*model.Customer, *model.Account, error) {
	l := logger.Get(ctx, s).With().Str("name", name).Logger()
	l.Debug().Msg("Opening customer account")
	ctx = l.WithContext(ctx)

	if name == "" {
		return nil, nil, apperr.ErrInvalidInput
	}
	if deposit.Negative() {
		return nil, nil, apperr.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		l.Error().Err(err).Msg("DB transaction begin")
		return nil, nil, apperr.ErrConflict
	}

	customer, err := s.customers.TxCreate(ctx, tx, &model.Customer{Name: name})
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}

	account, err := s.accounts.TxCreate(ctx, tx, &model.Account{
		OwnerID: customer.ID,
		Balance: deposit,
	})
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Msg("TX commit failed")
		return nil, nil, apperr.ErrConflict
	}

	l.Info().
		Int64("customer_id", customer.ID).
		Int64("account_id", account.ID).
		Msg("Customer onboarded")

	return customer, account, nil
}

// AddAccount opens one more account for an existing customer.
func (s *Service) AddAccount(ctx context.Context, ownerID int64, deposit model.Money) (*model.Account, error) {
	l := logger.Get(ctx, s).With().Int64("owner_id", ownerID).Logger()
	l.Debug().Msg("Adding account")
	ctx = l.WithContext(ctx)

	if deposit.Negative() {
		return nil, apperr.ErrInvalidAmount
	}

	// explicit owner read so an absent owner is reported as NotFound rather
	// than as a constraint violation
	if _, err := s.customers.Read(ctx, ownerID); err != nil {
		return nil, err
	}

	account, err := s.accounts.Create(ctx, &model.Account{
		OwnerID: ownerID,
		Balance: deposit,
	})
	if err != nil {
		return nil, err
	}

	l.Info().Int64("account_id", account.ID).Msg("Account added")

	return account, nil
}
