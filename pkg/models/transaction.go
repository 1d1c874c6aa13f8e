package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state a transaction was in when the API served it.
type Status string

const (
	StatusAuthorised Status = "AUTHORISED"
	StatusComplete   Status = "COMPLETE"
	StatusCancelled  Status = "CANCELLED"
	StatusExpired    Status = "EXPIRED"
)

// Direction tells which way the money moved.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Amount is a monetary value in minor units (cents for EUR).
type Amount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

// Decimal returns the amount in major units, exact.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.Value, -2)
}

// Transaction is one normalized entry of the account history. Immutable once
// built, ordered as the API returned it.
type Transaction struct {
	ID           string    `json:"id"`
	Amount       Amount    `json:"amount"`
	Status       Status    `json:"status"`
	Direction    Direction `json:"direction"`
	CreatedAt    time.Time `json:"createdAt"`
	Counterparty string    `json:"counterparty"`
	Reference    string    `json:"reference,omitempty"`
	Note         string    `json:"note,omitempty"`
}

// SignedAmount applies the ledger sign convention: debits are negative,
// credits positive.
func (t *Transaction) SignedAmount() (decimal.Decimal, error) {
	switch t.Direction {
	case DirectionDebit:
		return t.Amount.Decimal().Neg(), nil
	case DirectionCredit:
		return t.Amount.Decimal(), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unknown direction %q for transaction %s", t.Direction, t.ID)
	}
}

// Memo joins reference and note the way the mobile app displays them.
func (t *Transaction) Memo() string {
	switch {
	case t.Reference != "" && t.Note != "":
		return t.Reference + " - " + t.Note
	case t.Reference != "":
		return t.Reference
	default:
		return t.Note
	}
}

// APITransaction mirrors the wire shape of a single history entry. Pointer
// fields let us tell an absent key from a zero value before normalizing.
type APITransaction struct {
	ID           string  `json:"id"`
	Amount       *Amount `json:"amount"`
	Status       string  `json:"status"`
	Direction    string  `json:"direction"`
	CreatedAt    string  `json:"createdAt"`
	Counterparty string  `json:"counterparty"`
	Reference    string  `json:"reference"`
	Note         string  `json:"note"`
}

// createdAt comes back RFC3339 with or without fractional seconds; CSV
// exports sometimes carry a bare date.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// Normalize validates the raw entry and converts it into a Transaction.
// Missing required fields fail here instead of surfacing as zero values deep
// in the QIF writer.
func (t APITransaction) Normalize() (*Transaction, error) {
	if t.ID == "" {
		return nil, fmt.Errorf("transaction has no id")
	}
	if t.Amount == nil {
		return nil, fmt.Errorf("transaction %s has no amount", t.ID)
	}
	if t.Amount.Currency == "" {
		return nil, fmt.Errorf("transaction %s has no currency", t.ID)
	}
	if t.Status == "" {
		return nil, fmt.Errorf("transaction %s has no status", t.ID)
	}
	if t.Direction == "" {
		return nil, fmt.Errorf("transaction %s has no direction", t.ID)
	}

	createdAt, err := parseCreatedAt(t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
	}

	return &Transaction{
		ID:           t.ID,
		Amount:       *t.Amount,
		Status:       Status(t.Status),
		Direction:    Direction(t.Direction),
		CreatedAt:    createdAt,
		Counterparty: t.Counterparty,
		Reference:    t.Reference,
		Note:         t.Note,
	}, nil
}

func parseCreatedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing createdAt")
	}
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable createdAt %q", s)
}
