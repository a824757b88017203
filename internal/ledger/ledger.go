package ledger

import (
	"context"
	"errors"
	"time"
)

// Transaction types recorded in the append-only ledger.
const (
	TypeDebit      = "debit"
	TypeCredit     = "credit"
	TypeInvestment = "investment"
)

// ErrInsufficientBalance occurs when a posting would take the payer's balance
// below zero.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Transaction is one immutable ledger entry.
type Transaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Type         string    `gorm:"not null" json:"type"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Description  string    `json:"description"`
	Counterparty string    `json:"recipient"`
	Timestamp    time.Time `json:"timestamp"`
}

// TableName keeps the table name aligned with the seeded demo database.
func (Transaction) TableName() string {
	return "transactions"
}

// PaymentPosting captures one peer-to-peer balance mutation.
type PaymentPosting struct {
	PayerID   uint
	PayeeID   uint
	Amount    float64
	PayerName string
	PayeeName string
}

// PaymentResult reports the payer's balance after a successful posting.
type PaymentResult struct {
	NewBalance float64
}

// Ledger defines the contract implemented by ledger backends. A payment is a
// single atomic unit: the transaction rows exist if and only if the balance
// mutation succeeded, and a failed posting never mutates state.
type Ledger interface {
	Balance(ctx context.Context, userID uint) (float64, error)
	ExecutePayment(ctx context.Context, posting PaymentPosting) (PaymentResult, error)
	RecordInvestment(ctx context.Context, userID uint, amount float64, description string) (float64, error)
	Transactions(ctx context.Context, userID uint, limit int) ([]Transaction, error)
	Reassign(ctx context.Context, fromUserID, toUserID uint) error
}
