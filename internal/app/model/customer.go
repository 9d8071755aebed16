package model

import "time"

// Customer owns zero or more accounts. Name is unique across all customers,
// enforced by the storage layer. Customers are never mutated after creation.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
