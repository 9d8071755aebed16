package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"bankledger/internal/app/apperr"
	"bankledger/internal/app/model"
	storagemock "bankledger/internal/app/storage/mock"
)

func newService(t *testing.T) (*Service, *storagemock.MockAccountRepository, *storagemock.MockTransactionRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	accounts := storagemock.NewMockAccountRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	s, err := New(accounts, transactions)
	if err != nil {
		t.Fatal(err)
	}
	return s, accounts, transactions
}

func TestTransfer(t *testing.T) {
	s, accounts, _ := newService(t)
	amount := model.MustParseMoney("50.01", "GBP")
	want := &model.Transaction{
		ID:                 1,
		Reference:          "c6gq5q1l6hc3d2jvs1og",
		SenderAccountID:    1,
		RecipientAccountID: 2,
		Amount:             amount,
	}

	accounts.EXPECT().
		Transfer(gomock.Any(), int64(1), int64(2), amount).
		Return(want, nil)

	m, err := s.Transfer(context.Background(), 1, 2, amount)
	if err != nil {
		t.Fatal(err)
	}
	if m != want {
		t.Fatalf("got %+v", m)
	}
}

// The engine re-validates defensively before touching the store: a bad
// amount or a self-transfer never reaches the repository.
func TestTransferRejectsBeforeStore(t *testing.T) {
	tests := []struct {
		name        string
		senderID    int64
		recipientID int64
		amount      model.Money
		wantErr     error
	}{
		{"zero amount", 1, 2, model.MustParseMoney("0", "GBP"), apperr.ErrInvalidAmount},
		{"negative amount", 1, 2, model.MustParseMoney("-5.00", "GBP"), apperr.ErrInvalidAmount},
		{"same account", 3, 3, model.MustParseMoney("1.00", "GBP"), apperr.ErrSameAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newService(t)

			_, err := s.Transfer(context.Background(), tt.senderID, tt.recipientID, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransferPropagatesStoreFailure(t *testing.T) {
	s, accounts, _ := newService(t)
	amount := model.MustParseMoney("50.01", "GBP")

	accounts.EXPECT().
		Transfer(gomock.Any(), int64(1), int64(2), amount).
		Return(nil, apperr.ErrInsufficientFunds)

	_, err := s.Transfer(context.Background(), 1, 2, amount)
	if !errors.Is(err, apperr.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	s, _, transactions := newService(t)
	want := []*model.Transaction{{ID: 1}, {ID: 2}}

	transactions.EXPECT().
		AllByAccountID(gomock.Any(), int64(7)).
		Return(want, nil)

	mm, err := s.History(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(mm) != 2 || mm[0].ID != 1 || mm[1].ID != 2 {
		t.Fatalf("got %v", mm)
	}
}

func TestBalance(t *testing.T) {
	s, accounts, _ := newService(t)
	want := &model.Account{ID: 7, Balance: model.MustParseMoney("100.00", "GBP")}

	accounts.EXPECT().
		Read(gomock.Any(), int64(7)).
		Return(want, nil)

	m, err := s.Balance(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if m != want {
		t.Fatalf("got %+v", m)
	}
}

func TestBalancesByOwner(t *testing.T) {
	s, accounts, _ := newService(t)

	accounts.EXPECT().
		AllByOwnerID(gomock.Any(), int64(3)).
		Return([]*model.Account{}, nil)

	mm, err := s.BalancesByOwner(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(mm) != 0 {
		t.Fatalf("got %v", mm)
	}
}
