package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// TransactionCategory names what a ledger entry was for.
type TransactionCategory string

const (
	CategoryLicense TransactionCategory = "license"
	CategoryCourse  TransactionCategory = "course"
	CategoryTopup   TransactionCategory = "topup"
)

// Transaction is an append-only ledger entry. Amount is always positive;
// Type carries the direction. A course purchase writes two entries with
// equal amounts whose CounterpartID fields point at each other. A license
// purchase writes a single debit with no counterpart (the platform is the
// payee).
type Transaction struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	Type          TransactionType     `json:"type"`
	Category      TransactionCategory `json:"category"`
	Amount        int64               `json:"amount"`
	RelatedID     *uuid.UUID          `json:"related_id,omitempty"`
	CounterpartID *uuid.UUID          `json:"counterpart_id,omitempty"`
	Description   string              `json:"description,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}
