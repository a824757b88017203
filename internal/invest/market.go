package invest

import (
	"errors"
	"math/rand"
	"sync"
)

var (
	// ErrUnknownInstrument indicates an instrument type with no ticker mapping.
	ErrUnknownInstrument = errors.New("unknown instrument type")
	// ErrMarketData indicates no price could be produced for the instrument.
	ErrMarketData = errors.New("market data unavailable")
)

// Instrument tickers for the supported demo investments.
var tickers = map[string]string{
	"gold":   "GOLDBEES.NS",
	"nifty":  "NIFTYBEES.NS",
	"liquid": "LIQUIDBEES.NS",
}

var fallbackPrices = map[string]float64{
	"GOLDBEES.NS":   72.8,
	"NIFTYBEES.NS":  285.0,
	"LIQUIDBEES.NS": 1000.0,
}

var fallbackWeeklyReturns = map[string]float64{
	"GOLDBEES.NS":   2.5,
	"NIFTYBEES.NS":  1.8,
	"LIQUIDBEES.NS": 0.15,
}

var tickerNames = map[string]string{
	"GOLDBEES.NS":   "Gold ETF",
	"NIFTYBEES.NS":  "Nifty 50 ETF",
	"LIQUIDBEES.NS": "Liquid ETF",
}

// PriceSource quotes a current price for an instrument type.
type PriceSource interface {
	Price(instrument string) (float64, error)
}

// StaticPrices serves the fallback price table with a gradual upward drift:
// every third lookup of an instrument bumps its price by 0.1-0.5% to simulate
// market movement without a live data feed.
type StaticPrices struct {
	mu     sync.Mutex
	prices map[string]float64
	checks map[string]int
	rng    *rand.Rand
}

const driftEveryNChecks = 3

// NewStaticPrices builds the fallback price source.
func NewStaticPrices(seed int64) *StaticPrices {
	prices := make(map[string]float64, len(fallbackPrices))
	for ticker, price := range fallbackPrices {
		prices[ticker] = price
	}
	return &StaticPrices{
		prices: prices,
		checks: make(map[string]int),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Price returns the current simulated price for an instrument type.
func (p *StaticPrices) Price(instrument string) (float64, error) {
	ticker, ok := tickers[instrument]
	if !ok {
		return 0, ErrUnknownInstrument
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.prices[ticker]
	if !ok {
		return 0, ErrMarketData
	}

	p.checks[ticker]++
	if p.checks[ticker] >= driftEveryNChecks {
		p.checks[ticker] = 0
		price *= 1 + (0.001 + p.rng.Float64()*0.004)
		p.prices[ticker] = price
	}

	return price, nil
}

// TopPerformer returns the ticker, display name and weekly return of the best
// performing instrument from the fallback return table.
func TopPerformer() (ticker, name string, weeklyReturn float64) {
	for t, r := range fallbackWeeklyReturns {
		if ticker == "" || r > weeklyReturn {
			ticker, weeklyReturn = t, r
		}
	}
	return ticker, tickerNames[ticker], weeklyReturn
}
