package model

import "time"

// Account holds a customer's balance in a single currency fixed at creation.
// The balance is mutated only inside the storage layer's atomic units and
// never goes negative as the result of a transfer.
type Account struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Number    string    `json:"number"`
	Balance   Money     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}
