package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ferdypruis/go-luhn"
	"github.com/shopspring/decimal"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/logger"
	"bankledger/internal/app/model"
	"bankledger/internal/app/storage"
)

// storage.AccountRepository interface implementation
var _ storage.AccountRepository = (*AccountRepository)(nil)

type AccountRepository struct {
	db           *sql.DB
	transactions storage.TransactionRepository
}

func (r *AccountRepository) LoggerComponent() string {
	return "AccountRepository"
}

func NewAccountRepository(db *sql.DB, transactions storage.TransactionRepository) (*AccountRepository, error) {
	s := &AccountRepository{
		db:           db,
		transactions: transactions,
	}
	return s, nil
}

// Create implementation of interface storage.AccountRepository
func (r *AccountRepository) Create(ctx context.Context, m *model.Account) (*model.Account, error) {
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

// TxCreate implementation of interface storage.AccountRepository.
// The row is inserted first so the store-assigned id can seed the account
// number, which then gets its Luhn check digit appended.
func (r *AccountRepository) TxCreate(ctx context.Context, tx *sql.Tx, m *model.Account) (*model.Account, error) {
	l := logger.Get(ctx, r).With().Int64("owner_id", m.OwnerID).Logger()

	if m.Balance.Negative() {
		return nil, apperr.ErrInvalidAmount
	}
	if m.Balance.Currency == "" {
		m.Balance.Currency = model.DefaultCurrency
	}

	const SQL = `
		INSERT INTO accounts (owner_id, currency, balance)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
`

	err := tx.QueryRowContext(ctx, SQL, m.OwnerID, m.Balance.Currency, m.Balance.Amount).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		// absent owner trips the FK constraint
		l.Debug().Err(err).Msg("Account insert failed")
		return nil, mapError("insert", err)
	}

	number, err := luhn.Sign(fmt.Sprintf("%011d", m.ID))
	if err != nil {
		return nil, fmt.Errorf("number sign: %w", err)
	}

	const sqlNumber = `UPDATE accounts SET number=$1 WHERE id=$2`
	if _, err := tx.ExecContext(ctx, sqlNumber, number, m.ID); err != nil {
		return nil, mapError("number update", err)
	}
	m.Number = number

	return m, nil
}

// Read implementation of interface storage.AccountRepository
func (r *AccountRepository) Read(ctx context.Context, id int64) (*model.Account, error) {
	const SQL = `
		SELECT id, owner_id, number, currency, balance, created_at
		FROM accounts
		WHERE id=$1
`
	return r.readOne(ctx, SQL, id)
}

// ReadByNumber implementation of interface storage.AccountRepository
func (r *AccountRepository) ReadByNumber(ctx context.Context, number string) (*model.Account, error) {
	if !luhn.Valid(number) {
		return nil, apperr.ErrNotFound
	}

	const SQL = `
		SELECT id, owner_id, number, currency, balance, created_at
		FROM accounts
		WHERE number=$1
`
	return r.readOne(ctx, SQL, number)
}

func (r *AccountRepository) readOne(ctx context.Context, query string, arg interface{}) (*model.Account, error) {
	m := &model.Account{}

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&m.ID, &m.OwnerID, &m.Number, &m.Balance.Currency, &m.Balance.Amount, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, mapError("select", err)
	}

	return m, nil
}

// AllByOwnerID implementation of interface storage.AccountRepository
func (r *AccountRepository) AllByOwnerID(ctx context.Context, ownerID int64) ([]*model.Account, error) {
	const sqlOwner = `SELECT id FROM customers WHERE id=$1`
	var id int64
	if err := r.db.QueryRowContext(ctx, sqlOwner, ownerID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, mapError("owner select", err)
	}

	const SQL = `
		SELECT id, owner_id, number, currency, balance, created_at
		FROM accounts
		WHERE owner_id=$1
		ORDER BY id
`
	res := make([]*model.Account, 0)

	rows, err := r.db.QueryContext(ctx, SQL, ownerID)
	if err != nil {
		return nil, mapError("select", err)
	}
	defer rows.Close()

	for rows.Next() {
		m := &model.Account{}
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Number, &m.Balance.Currency, &m.Balance.Amount, &m.CreatedAt); err != nil {
			return nil, mapError("scan", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("rows", err)
	}

	return res, nil
}

// Transfer implementation of interface storage.AccountRepository.
//
// Both rows are locked with FOR UPDATE in ascending id order so that two
// opposite transfers between the same pair cannot deadlock. Existence is
// still reported sender-first regardless of lock order. Debit, credit and
// the transaction append commit as one serializable unit.
func (r *AccountRepository) Transfer(ctx context.Context, senderID, recipientID int64, amount model.Money) (*model.Transaction, error) {
	l := logger.Get(ctx, r).With().
		Str("method", "Transfer").
		Int64("sender_account_id", senderID).
		Int64("recipient_account_id", recipientID).
		Str("amount", amount.String()).
		Logger()
	l.Debug().Msg("Executing transfer")
	ctx = l.WithContext(ctx)

	if senderID == recipientID {
		return nil, apperr.ErrSameAccount
	}
	if !amount.Positive() {
		return nil, apperr.ErrInvalidAmount
	}

	started := time.Now()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		l.Error().Err(err).Msg("DB transaction begin")
		return nil, mapError("tx begin", err)
	}

	type locked struct {
		found    bool
		currency string
		balance  decimal.Decimal
	}

	const sqlLock = `SELECT currency, balance FROM accounts WHERE id=$1 FOR UPDATE`

	rows := map[int64]*locked{senderID: {}, recipientID: {}}
	first, second := senderID, recipientID
	if second < first {
		first, second = second, first
	}
	for _, id := range []int64{first, second} {
		row := rows[id]
		err := tx.QueryRowContext(ctx, sqlLock, id).Scan(&row.currency, &row.balance)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			l.Error().Err(err).Int64("account_id", id).Msg("DB lock error")
			_ = tx.Rollback()
			return nil, mapError("lock", err)
		}
		row.found = true
	}

	sender, recipient := rows[senderID], rows[recipientID]
	if !sender.found {
		_ = tx.Rollback()
		return nil, fmt.Errorf("sender account %d: %w", senderID, apperr.ErrNotFound)
	}
	if !recipient.found {
		_ = tx.Rollback()
		return nil, fmt.Errorf("recipient account %d: %w", recipientID, apperr.ErrNotFound)
	}
	if sender.currency != recipient.currency || sender.currency != amount.Currency {
		_ = tx.Rollback()
		return nil, apperr.ErrCurrencyMismatch
	}
	if sender.balance.LessThan(amount.Amount) {
		l.Debug().Str("balance", sender.balance.String()).Msg("Insufficient funds")
		_ = tx.Rollback()
		return nil, apperr.ErrInsufficientFunds
	}

	const sqlDebit = `UPDATE accounts SET balance=balance-$1 WHERE id=$2`
	if _, err := tx.ExecContext(ctx, sqlDebit, amount.Amount, senderID); err != nil {
		l.Error().Err(err).Msg("Debit failed")
		_ = tx.Rollback()
		return nil, mapError("debit", err)
	}

	const sqlCredit = `UPDATE accounts SET balance=balance+$1 WHERE id=$2`
	if _, err := tx.ExecContext(ctx, sqlCredit, amount.Amount, recipientID); err != nil {
		l.Error().Err(err).Msg("Credit failed")
		_ = tx.Rollback()
		return nil, mapError("credit", err)
	}

	m, err := r.transactions.TxCreate(ctx, tx, &model.Transaction{
		SenderAccountID:    senderID,
		RecipientAccountID: recipientID,
		Amount:             amount,
	})
	if err != nil {
		l.Error().Err(err).Msg("TX insert failed")
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Msg("TX commit failed")
		return nil, mapError("tx commit", err)
	}

	l.Debug().Dur("duration", time.Since(started)).Msg("Done executing transfer")

	return m, nil
}
