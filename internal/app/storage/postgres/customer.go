package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/logger"
	"bankledger/internal/app/model"
	"bankledger/internal/app/storage"
)

// storage.CustomerRepository interface implementation
var _ storage.CustomerRepository = (*CustomerRepository)(nil)

type CustomerRepository struct {
	db *sql.DB
}

func (r *CustomerRepository) LoggerComponent() string {
	return "CustomerRepository"
}

func NewCustomerRepository(db *sql.DB) (*CustomerRepository, error) {
	s := &CustomerRepository{
		db: db,
	}
	return s, nil
}

// Create implementation of interface storage.CustomerRepository
func (r *CustomerRepository) Create(ctx context.Context, m *model.Customer) (*model.Customer, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelDefault,
	})
	if err != nil {
		return nil, fmt.Errorf("tx begin: %w", err)
	}

	res, err := r.TxCreate(ctx, tx, m)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError("tx commit", err)
	}

	return res, nil
}

// TxCreate implementation of interface storage.CustomerRepository.
// The UNIQUE constraint on name closes the race between two concurrent
// creations of the same customer: the second writer gets ErrDuplicateName
// from the store itself, never from a check-then-insert.
func (r *CustomerRepository) TxCreate(ctx context.Context, tx *sql.Tx, m *model.Customer) (*model.Customer, error) {
	l := logger.Get(ctx, r).With().Str("name", m.Name).Logger()

	if m.Name == "" {
		return nil, apperr.ErrInvalidInput
	}

	const SQL = `
		INSERT INTO customers (name)
		VALUES ($1)
		RETURNING id, created_at
`

	err := tx.QueryRowContext(ctx, SQL, m.Name).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			l.Debug().Msg("Duplicate customer name")
			return nil, apperr.ErrDuplicateName
		}

		return nil, mapError("insert", err)
	}

	return m, nil
}

// Read implementation of interface storage.CustomerRepository
func (r *CustomerRepository) Read(ctx context.Context, id int64) (*model.Customer, error) {
	const SQL = `
		SELECT id, name, created_at
		FROM customers
		WHERE id=$1
`
	m := &model.Customer{}

	err := r.db.QueryRowContext(ctx, SQL, id).Scan(&m.ID, &m.Name, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, mapError("select", err)
	}

	return m, nil
}
