package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/voicepay/voicepay/internal/user"
)

// GormLedger posts balance mutations and transaction rows against the SQLite
// demo database.
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger builds a ledger backed by gorm.
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

// Balance returns the current cash balance for a user.
func (l *GormLedger) Balance(ctx context.Context, userID uint) (float64, error) {
	var u user.User
	err := l.db.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, user.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

// ExecutePayment moves funds between two users inside one database
// transaction. SQLite serialises writers, so this is also the critical
// section guarding against lost updates under concurrent payments.
func (l *GormLedger) ExecutePayment(ctx context.Context, posting PaymentPosting) (PaymentResult, error) {
	if posting.Amount <= 0 {
		return PaymentResult{}, fmt.Errorf("amount must be positive")
	}

	var newBalance float64
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payer, payee user.User
		if err := tx.First(&payer, posting.PayerID).Error; err != nil {
			return notFoundOr(err)
		}
		if err := tx.First(&payee, posting.PayeeID).Error; err != nil {
			return notFoundOr(err)
		}
		if payer.Balance < posting.Amount {
			return ErrInsufficientBalance
		}

		newBalance = payer.Balance - posting.Amount
		if err := tx.Model(&user.User{}).Where("id = ?", payer.ID).
			Update("balance", newBalance).Error; err != nil {
			return err
		}
		if err := tx.Model(&user.User{}).Where("id = ?", payee.ID).
			Update("balance", payee.Balance+posting.Amount).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		rows := []Transaction{
			{
				UserID:       payer.ID,
				Type:         TypeDebit,
				Amount:       posting.Amount,
				Description:  fmt.Sprintf("Paid ₹%.0f to %s", posting.Amount, posting.PayeeName),
				Counterparty: posting.PayeeName,
				Timestamp:    now,
			},
			{
				UserID:       payee.ID,
				Type:         TypeCredit,
				Amount:       posting.Amount,
				Description:  fmt.Sprintf("Received ₹%.0f from %s", posting.Amount, posting.PayerName),
				Counterparty: posting.PayerName,
				Timestamp:    now,
			},
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return PaymentResult{}, err
	}
	return PaymentResult{NewBalance: newBalance}, nil
}

// RecordInvestment debits the user and appends one investment entry.
func (l *GormLedger) RecordInvestment(ctx context.Context, userID uint, amount float64, description string) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	var newBalance float64
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u user.User
		if err := tx.First(&u, userID).Error; err != nil {
			return notFoundOr(err)
		}
		if u.Balance < amount {
			return ErrInsufficientBalance
		}

		newBalance = u.Balance - amount
		if err := tx.Model(&user.User{}).Where("id = ?", u.ID).
			Update("balance", newBalance).Error; err != nil {
			return err
		}
		row := Transaction{
			UserID:      u.ID,
			Type:        TypeInvestment,
			Amount:      amount,
			Description: description,
			Timestamp:   time.Now().UTC(),
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Transactions lists the newest entries for a user.
func (l *GormLedger) Transactions(ctx context.Context, userID uint, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []Transaction
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Reassign moves all ledger entries to another user during account linking.
func (l *GormLedger) Reassign(ctx context.Context, fromUserID, toUserID uint) error {
	return l.db.WithContext(ctx).Model(&Transaction{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user.ErrNotFound
	}
	return err
}
