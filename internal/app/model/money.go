package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"bankledger/internal/app/apperr"
)

// DefaultCurrency is assumed for every amount that arrives without an
// explicit currency code.
const DefaultCurrency = "GBP"

// MoneyScale is the number of fractional digits every persisted amount
// must be representable at.
const MoneyScale = 2

// Money is an exact decimal amount tagged with a currency code. The zero
// value is 0.00 in the default currency. Arithmetic never goes through
// binary floating point.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney validates amount against the required scale. Amounts needing more
// than MoneyScale fractional digits fail with apperr.ErrInvalidAmount.
// Negative amounts are representable; positivity is the caller's check.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if !amount.Equal(amount.Round(MoneyScale)) {
		return Money{}, apperr.ErrInvalidAmount
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// ParseMoney builds Money from its decimal string form.
func ParseMoney(s string, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, apperr.ErrInvalidAmount
	}
	return NewMoney(d, currency)
}

// MustParseMoney is ParseMoney for statically known literals.
func MustParseMoney(s string, currency string) Money {
	m, err := ParseMoney(s, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add fails with apperr.ErrCurrencyMismatch when currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperr.ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub fails with apperr.ErrCurrencyMismatch when currencies differ. The
// result may be negative; going below zero is the ledger's check, not ours.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperr.ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Cmp returns -1, 0 or 1; comparing across currencies fails with
// apperr.ErrCurrencyMismatch.
func (m Money) Cmp(other Money) (int, error) {
	if m.Currency != other.Currency {
		return 0, apperr.ErrCurrencyMismatch
	}
	return m.Amount.Cmp(other.Amount), nil
}

// Positive reports whether the amount is strictly greater than zero.
func (m Money) Positive() bool {
	return m.Amount.IsPositive()
}

// Negative reports whether the amount is below zero.
func (m Money) Negative() bool {
	return m.Amount.IsNegative()
}

func (m Money) String() string {
	return m.Amount.StringFixed(MoneyScale) + " " + m.Currency
}

// MarshalJSON implements the json.Marshaler interface.
func (m Money) MarshalJSON() ([]byte, error) {
	o := struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}{
		Amount:   m.Amount.StringFixed(MoneyScale),
		Currency: m.Currency,
	}

	return json.Marshal(o)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (m *Money) UnmarshalJSON(b []byte) error {
	o := struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}{}
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}

	v, err := NewMoney(o.Amount, o.Currency)
	if err != nil {
		return err
	}
	*m = v

	return nil
}
