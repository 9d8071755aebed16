package model

import "time"

// Transaction is one completed transfer between two accounts. Rows are
// append-only and immutable; ids increase monotonically, so created_at with
// id as tie-breaker gives a stable history order. Reference is the opaque
// code handed to external systems.
type Transaction struct {
	ID                 int64     `json:"id"`
	Reference          string    `json:"reference"`
	SenderAccountID    int64     `json:"sender_account_id"`
	RecipientAccountID int64     `json:"recipient_account_id"`
	Amount             Money     `json:"amount"`
	CreatedAt          time.Time `json:"created_at"`
}
