package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/model"
)

func newTransactionRepo(t *testing.T) (*TransactionRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	r, err := NewTransactionRepository(db)
	if err != nil {
		t.Fatal(err)
	}
	return r, mock, db
}

func TestTransactionTxCreateRejectsNonPositive(t *testing.T) {
	r, mock, db := newTransactionRepo(t)

	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}

	zero := model.MustParseMoney("0", "GBP")
	if _, err := r.TxCreate(context.Background(), tx, &model.Transaction{
		SenderAccountID:    1,
		RecipientAccountID: 2,
		Amount:             zero,
	}); !errors.Is(err, apperr.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionHistoryOrdering(t *testing.T) {
	r, mock, _ := newTransactionRepo(t)
	base := time.Now()

	mock.ExpectQuery(`SELECT id FROM accounts WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`(?s)SELECT id, reference, sender_account_id, recipient_account_id, amount, currency, created_at.*FROM transactions.*ORDER BY created_at, id`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "sender_account_id", "recipient_account_id", "amount", "currency", "created_at",
		}).
			AddRow(int64(1), "ref-1", int64(1), int64(2), "50.01", "GBP", base).
			AddRow(int64(2), "ref-2", int64(1), int64(3), "13.12", "GBP", base.Add(time.Second)).
			AddRow(int64(4), "ref-4", int64(2), int64(1), "4.99", "GBP", base.Add(3*time.Second)))

	mm, err := r.AllByAccountID(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(mm) != 3 {
		t.Fatalf("len=%d want=3", len(mm))
	}
	for i, wantID := range []int64{1, 2, 4} {
		if mm[i].ID != wantID {
			t.Fatalf("history[%d].ID=%d want=%d", i, mm[i].ID, wantID)
		}
	}
	if mm[0].Amount.String() != "50.01 GBP" {
		t.Fatalf("amount=%s", mm[0].Amount.String())
	}
	if mm[2].SenderAccountID != 2 || mm[2].RecipientAccountID != 1 {
		t.Fatalf("received transfer mangled: %+v", mm[2])
	}
}

// A fresh account with no activity yields an empty sequence, not an error.
func TestTransactionHistoryEmpty(t *testing.T) {
	r, mock, _ := newTransactionRepo(t)

	mock.ExpectQuery(`SELECT id FROM accounts WHERE id=\$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery(`(?s)SELECT id, reference.*FROM transactions`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "sender_account_id", "recipient_account_id", "amount", "currency", "created_at",
		}))

	mm, err := r.AllByAccountID(context.Background(), 9)
	if err != nil {
		t.Fatal(err)
	}
	if mm == nil || len(mm) != 0 {
		t.Fatalf("want empty slice, got %v", mm)
	}
}

func TestTransactionHistoryAccountNotFound(t *testing.T) {
	r, mock, _ := newTransactionRepo(t)

	mock.ExpectQuery(`SELECT id FROM accounts WHERE id=\$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	if _, err := r.AllByAccountID(context.Background(), 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
