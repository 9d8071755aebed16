package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/xid"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/logger"
	"bankledger/internal/app/model"
	"bankledger/internal/app/storage"
)

// storage.TransactionRepository interface implementation
var _ storage.TransactionRepository = (*TransactionRepository)(nil)

type TransactionRepository struct {
	db *sql.DB
}

func (r *TransactionRepository) LoggerComponent() string {
	return "TransactionRepository"
}

func NewTransactionRepository(db *sql.DB) (*TransactionRepository, error) {
	s := &TransactionRepository{
		db: db,
	}
	return s, nil
}

// TxCreate implementation of interface storage.TransactionRepository.
// Runs only inside the account transfer's atomic unit; the id and timestamp
// are store-assigned on insert.
func (r *TransactionRepository) TxCreate(ctx context.Context, tx *sql.Tx, m *model.Transaction) (*model.Transaction, error) {
	l := logger.Get(ctx, r).With().Str("method", "TxCreate").Logger()

	if !m.Amount.Positive() {
		return nil, apperr.ErrInvalidAmount
	}

	m.Reference = xid.New().String()

	const SQL = `
		INSERT INTO transactions (reference, sender_account_id, recipient_account_id, amount, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
`

	err := tx.QueryRowContext(ctx, SQL,
		m.Reference, m.SenderAccountID, m.RecipientAccountID, m.Amount.Amount, m.Amount.Currency).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		l.Debug().Err(err).Msg("Transaction insert failed")
		return nil, mapError("insert", err)
	}

	return m, nil
}

// AllByAccountID implementation of interface storage.TransactionRepository.
// An existing account with no activity yields an empty slice; only an absent
// account is an error.
func (r *TransactionRepository) AllByAccountID(ctx context.Context, accountID int64) ([]*model.Transaction, error) {
	const sqlAccount = `SELECT id FROM accounts WHERE id=$1`
	var id int64
	if err := r.db.QueryRowContext(ctx, sqlAccount, accountID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, mapError("account select", err)
	}

	const SQL = `
		SELECT id, reference, sender_account_id, recipient_account_id, amount, currency, created_at
		FROM transactions
		WHERE sender_account_id=$1 OR recipient_account_id=$1
		ORDER BY created_at, id
`
	res := make([]*model.Transaction, 0)

	rows, err := r.db.QueryContext(ctx, SQL, accountID)
	if err != nil {
		return nil, mapError("select", err)
	}
	defer rows.Close()

	for rows.Next() {
		m := &model.Transaction{}
		err := rows.Scan(&m.ID, &m.Reference, &m.SenderAccountID, &m.RecipientAccountID,
			&m.Amount.Amount, &m.Amount.Currency, &m.CreatedAt)
		if err != nil {
			return nil, mapError("scan", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("rows", err)
	}

	return res, nil
}
