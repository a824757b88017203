package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voicepay/voicepay/internal/user"
)

type inMemoryLedger struct {
	mu     sync.Mutex
	users  user.Repository
	nextID uint
	rows   map[uint][]Transaction
}

// NewInMemory creates a concurrency-safe ledger over an in-memory user
// repository, useful for unit tests.
func NewInMemory(users user.Repository) Ledger {
	return &inMemoryLedger{users: users, nextID: 1, rows: make(map[uint][]Transaction)}
}

func (l *inMemoryLedger) Balance(ctx context.Context, userID uint) (float64, error) {
	u, err := l.users.ByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

func (l *inMemoryLedger) ExecutePayment(ctx context.Context, posting PaymentPosting) (PaymentResult, error) {
	if posting.Amount <= 0 {
		return PaymentResult{}, fmt.Errorf("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payer, err := l.users.ByID(ctx, posting.PayerID)
	if err != nil {
		return PaymentResult{}, err
	}
	payee, err := l.users.ByID(ctx, posting.PayeeID)
	if err != nil {
		return PaymentResult{}, err
	}
	if payer.Balance < posting.Amount {
		return PaymentResult{}, ErrInsufficientBalance
	}

	newBalance := payer.Balance - posting.Amount
	if err := l.users.UpdateBalance(ctx, payer.ID, newBalance); err != nil {
		return PaymentResult{}, err
	}
	if err := l.users.UpdateBalance(ctx, payee.ID, payee.Balance+posting.Amount); err != nil {
		return PaymentResult{}, err
	}

	now := time.Now().UTC()
	l.append(Transaction{
		UserID:       payer.ID,
		Type:         TypeDebit,
		Amount:       posting.Amount,
		Description:  fmt.Sprintf("Paid ₹%.0f to %s", posting.Amount, posting.PayeeName),
		Counterparty: posting.PayeeName,
		Timestamp:    now,
	})
	l.append(Transaction{
		UserID:       payee.ID,
		Type:         TypeCredit,
		Amount:       posting.Amount,
		Description:  fmt.Sprintf("Received ₹%.0f from %s", posting.Amount, posting.PayerName),
		Counterparty: posting.PayerName,
		Timestamp:    now,
	})

	return PaymentResult{NewBalance: newBalance}, nil
}

func (l *inMemoryLedger) RecordInvestment(ctx context.Context, userID uint, amount float64, description string) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	u, err := l.users.ByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if u.Balance < amount {
		return 0, ErrInsufficientBalance
	}

	newBalance := u.Balance - amount
	if err := l.users.UpdateBalance(ctx, u.ID, newBalance); err != nil {
		return 0, err
	}
	l.append(Transaction{
		UserID:      u.ID,
		Type:        TypeInvestment,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
	return newBalance, nil
}

func (l *inMemoryLedger) Transactions(_ context.Context, userID uint, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rows := l.rows[userID]
	out := make([]Transaction, 0, limit)
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, rows[i])
	}
	return out, nil
}

func (l *inMemoryLedger) Reassign(_ context.Context, fromUserID, toUserID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	moved := l.rows[fromUserID]
	delete(l.rows, fromUserID)
	for i := range moved {
		moved[i].UserID = toUserID
	}
	l.rows[toUserID] = append(l.rows[toUserID], moved...)
	return nil
}

func (l *inMemoryLedger) append(t Transaction) {
	t.ID = l.nextID
	l.nextID++
	l.rows[t.UserID] = append(l.rows[t.UserID], t)
}
