package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TypeTransaction is the document type of transactions.
const TypeTransaction = "transaction"

// DefaultTransactionTitle is used when an expense is recorded without a title.
const DefaultTransactionTitle = "未記入"

// Transaction represents one expense recorded against a group.
type Transaction struct {
	// ID is the document ID (UUID format).
	ID string `json:"_id,omitempty"`

	// Title describes the expense (e.g., "Lunch").
	Title string `json:"title"`

	// Amount is the expense amount in the ledger currency.
	// Encoded as a decimal string so no precision is lost in JSON.
	Amount decimal.Decimal `json:"amount"`

	// Date is when the expense was recorded.
	Date time.Time `json:"date"`

	// UserID is the user who recorded the expense.
	UserID string `json:"userId"`

	// GroupID is the group the expense belongs to.
	GroupID string `json:"groupId"`
}

// Validate checks the fields required of a stored transaction.
func (t *Transaction) Validate() error {
	switch {
	case t.ID == "":
		return errors.New("transaction: missing _id")
	case t.GroupID == "":
		return errors.New("transaction: missing groupId")
	case t.Date.IsZero():
		return errors.New("transaction: missing date")
	}
	return nil
}
