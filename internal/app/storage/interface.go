//go:generate mockgen -source=./interface.go -destination=./mock/storage.go -package=storagemock
package storage

import (
	"context"
	"database/sql"

	"bankledger/internal/app/model"
)

type CustomerRepository interface {
	// Create a new model.Customer; apperr.ErrDuplicateName on a name collision
	Create(ctx context.Context, m *model.Customer) (*model.Customer, error)
	// TxCreate a new model.Customer within the tx
	TxCreate(ctx context.Context, tx *sql.Tx, m *model.Customer) (*model.Customer, error)
	// Read instance of model.Customer
	Read(ctx context.Context, id int64) (*model.Customer, error)
}

type AccountRepository interface {
	// Create a new model.Account
	Create(ctx context.Context, m *model.Account) (*model.Account, error)
	// TxCreate a new model.Account within the tx
	TxCreate(ctx context.Context, tx *sql.Tx, m *model.Account) (*model.Account, error)
	// Read instance of model.Account
	Read(ctx context.Context, id int64) (*model.Account, error)
	// ReadByNumber instance of model.Account
	ReadByNumber(ctx context.Context, number string) (*model.Account, error)
	// AllByOwnerID returns the owner's accounts ordered by id ascending.
	// An existing owner without accounts yields an empty slice, not an error.
	AllByOwnerID(ctx context.Context, ownerID int64) ([]*model.Account, error)
	// Transfer atomically debits sender, credits recipient and appends one
	// transaction record. All three writes become visible together or not at
	// all. Contention surfaces as a retryable apperr.ErrConflict.
	Transfer(ctx context.Context, senderID, recipientID int64, amount model.Money) (*model.Transaction, error)
}

type TransactionRepository interface {
	// TxCreate appends a transaction record within the tx. Only ever called
	// from inside the account transfer's atomic unit.
	TxCreate(ctx context.Context, tx *sql.Tx, m *model.Transaction) (*model.Transaction, error)
	// AllByAccountID returns every transaction the account sent or received,
	// ordered by created_at ascending with id as tie-breaker.
	AllByAccountID(ctx context.Context, accountID int64) ([]*model.Transaction, error)
}
