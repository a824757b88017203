package payments

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/notification"
	"github.com/voicepay/voicepay/internal/user"
)

// ErrRecipientNotFound indicates the free-text recipient resolved to no known user.
var ErrRecipientNotFound = errors.New("recipient not found")

// Service executes confirmed payment intents against the ledger.
type Service struct {
	users    *user.Service
	ledger   ledger.Ledger
	notifier notification.Notifier
}

// NewService constructs a payment service.
func NewService(users *user.Service, ledgerBackend ledger.Ledger, notifier notification.Notifier) *Service {
	return &Service{users: users, ledger: ledgerBackend, notifier: notifier}
}

// PayInput captures a PIN-confirmed payment request.
type PayInput struct {
	UserID    uint
	Recipient string
	Amount    float64
	PIN       string
}

// Nudge suggests investing the round-off of a payment amount.
type Nudge struct {
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
	Type    string  `json:"type"`
}

// PayResult describes a completed payment.
type PayResult struct {
	Recipient  string
	NewBalance float64
	Nudge      Nudge
}

// Pay validates the PIN, resolves the recipient and posts the balance
// mutation as one atomic ledger unit. Any failure leaves the ledger
// untouched; repeating a failing call never mutates state.
func (s *Service) Pay(ctx context.Context, input PayInput) (PayResult, error) {
	if input.Amount <= 0 {
		return PayResult{}, fmt.Errorf("amount must be positive")
	}

	payer, err := s.users.Get(ctx, input.UserID)
	if err != nil {
		return PayResult{}, err
	}

	if err := s.users.VerifyPIN(ctx, input.UserID, input.PIN); err != nil {
		return PayResult{}, err
	}

	recipient, err := s.resolveRecipient(ctx, input.Recipient)
	if err != nil {
		return PayResult{}, err
	}
	if recipient.ID == payer.ID {
		return PayResult{}, user.ErrSelfPayment
	}

	res, err := s.ledger.ExecutePayment(ctx, ledger.PaymentPosting{
		PayerID:   payer.ID,
		PayeeID:   recipient.ID,
		Amount:    input.Amount,
		PayerName: payer.Name,
		PayeeName: recipient.Name,
	})
	if err != nil {
		return PayResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPayment,
			Destination: recipient.Name,
			Body:        fmt.Sprintf("You received ₹%.0f from %s", input.Amount, payer.Name),
		})
	}

	return PayResult{
		Recipient:  recipient.Name,
		NewBalance: res.NewBalance,
		Nudge:      RoundOffNudge(input.Amount),
	}, nil
}

// RoundOffNudge computes the round-up-to-nearest-10 investment suggestion.
// Amounts already on a multiple of ten still nudge a full ₹10.
func RoundOffNudge(amount float64) Nudge {
	rem := math.Mod(amount, 10)
	roundoff := 10 - rem
	if rem == 0 {
		roundoff = 10
	}
	return Nudge{
		Amount:  roundoff,
		Message: fmt.Sprintf("Round off ₹%.0f and invest in gold!", roundoff),
		Type:    "gold",
	}
}

func (s *Service) resolveRecipient(ctx context.Context, recipient string) (user.User, error) {
	if digits := digitsOnly(recipient); len(digits) == 10 {
		if u, err := s.users.ByPhone(ctx, digits); err == nil {
			return u, nil
		}
	}
	u, err := s.users.Resolve(ctx, recipient)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrRecipientNotFound
	}
	return u, err
}

func digitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
