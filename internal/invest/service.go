package invest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/notification"
	"github.com/voicepay/voicepay/internal/user"
)

// Service buys instruments for users and values their portfolios.
type Service struct {
	users     *user.Service
	positions Repository
	ledger    ledger.Ledger
	prices    PriceSource
	notifier  notification.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs an investment service.
func NewService(users *user.Service, positions Repository, ledgerBackend ledger.Ledger, prices PriceSource, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		users:     users,
		positions: positions,
		ledger:    ledgerBackend,
		prices:    prices,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// InvestInput captures an investment purchase request.
type InvestInput struct {
	UserID     uint
	Instrument string
	Amount     float64
}

// InvestResult describes a completed purchase.
type InvestResult struct {
	Instrument string
	Amount     float64
	Units      float64
	Price      float64
	NewBalance float64
}

// Invest quotes the instrument, records the purchased units and debits the
// user's balance atomically. The position row is written before the debit and
// deleted again when the debit fails, so a partial failure never leaves the
// user charged for units they do not hold.
func (s *Service) Invest(ctx context.Context, input InvestInput) (InvestResult, error) {
	if input.Amount <= 0 {
		return InvestResult{}, fmt.Errorf("amount must be positive")
	}

	investor, err := s.users.Get(ctx, input.UserID)
	if err != nil {
		return InvestResult{}, err
	}

	price, err := s.prices.Price(input.Instrument)
	if err != nil {
		return InvestResult{}, err
	}
	units := input.Amount / price

	position := Position{
		UserID:         investor.ID,
		InstrumentType: input.Instrument,
		Amount:         input.Amount,
		Units:          units,
		PurchasePrice:  price,
		PurchaseDate:   s.now(),
	}
	if err := s.positions.Create(ctx, &position); err != nil {
		return InvestResult{}, err
	}

	description := fmt.Sprintf("Invested ₹%.0f in %s", input.Amount, input.Instrument)
	newBalance, err := s.ledger.RecordInvestment(ctx, investor.ID, input.Amount, description)
	if err != nil {
		if delErr := s.positions.Delete(ctx, position.ID); delErr != nil && s.logger != nil {
			s.logger.Error("orphaned position left after failed debit", "position_id", position.ID, "error", delErr)
		}
		return InvestResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindInvestment,
			Destination: investor.Name,
			Body:        fmt.Sprintf("Invested ₹%.0f in %s (%.4f units @ ₹%.2f)", input.Amount, input.Instrument, units, price),
		})
	}

	return InvestResult{
		Instrument: input.Instrument,
		Amount:     input.Amount,
		Units:      units,
		Price:      price,
		NewBalance: newBalance,
	}, nil
}

// Portfolio values every holding of the user at current prices. Instruments
// with no quote fall back to purchase price so a market outage never zeroes
// the view.
func (s *Service) Portfolio(ctx context.Context, userID uint) (Portfolio, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return Portfolio{}, err
	}

	positions, err := s.positions.ByUser(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}

	type bucket struct {
		invested float64
		units    float64
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0, 4)
	for _, p := range positions {
		b, ok := buckets[p.InstrumentType]
		if !ok {
			b = &bucket{}
			buckets[p.InstrumentType] = b
			order = append(order, p.InstrumentType)
		}
		b.invested += p.Amount
		b.units += p.Units
	}

	out := Portfolio{Investments: make([]Holding, 0, len(order))}
	for _, instrument := range order {
		b := buckets[instrument]
		avgPrice := 0.0
		if b.units > 0 {
			avgPrice = b.invested / b.units
		}

		price, err := s.prices.Price(instrument)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("price lookup failed, valuing at cost", "instrument", instrument, "error", err)
			}
			price = avgPrice
		}

		value := b.units * price
		returns := value - b.invested
		pct := 0.0
		if b.invested > 0 {
			pct = returns / b.invested * 100
		}

		out.Investments = append(out.Investments, Holding{
			Type:             instrument,
			InvestedAmount:   b.invested,
			CurrentValue:     value,
			Units:            b.units,
			AvgPurchasePrice: avgPrice,
			CurrentPrice:     price,
			Returns:          returns,
			ReturnPercentage: pct,
		})
		out.TotalInvested += b.invested
		out.CurrentValue += value
	}

	out.TotalReturn = out.CurrentValue - out.TotalInvested
	if out.TotalInvested > 0 {
		out.ReturnPercentage = out.TotalReturn / out.TotalInvested * 100
	}
	return out, nil
}

// Summary renders a short spoken-style description of the portfolio.
func (s *Service) Summary(ctx context.Context, userID uint) (string, error) {
	p, err := s.Portfolio(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(p.Investments) == 0 {
		return "You have no investments yet. Start small, round off your payments into gold!", nil
	}

	msg := fmt.Sprintf("You have invested ₹%.0f. Current value is ₹%.0f", p.TotalInvested, p.CurrentValue)
	if p.TotalReturn >= 0 {
		msg += fmt.Sprintf(", up ₹%.0f (%.1f%%).", p.TotalReturn, p.ReturnPercentage)
	} else {
		msg += fmt.Sprintf(", down ₹%.0f (%.1f%%).", -p.TotalReturn, -p.ReturnPercentage)
	}
	return msg, nil
}

// Reassign moves portfolio rows during account linking. Satisfies
// user.Reassigner.
func (s *Service) Reassign(ctx context.Context, fromUserID, toUserID uint) error {
	return s.positions.Reassign(ctx, fromUserID, toUserID)
}
