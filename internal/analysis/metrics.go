package analysis

import (
	"sync"
	"time"

	"github.com/obsim/order-book-simulator/internal/book"
)

// MetricsCalculator samples top-of-book liquidity metrics: bid-ask spread in
// ticks and basis points, and best-level depth in dollars. Snapshots read
// the order book, so TakeSnapshot must run while no mutation is in flight;
// the exchange service calls it inside its submission lock.
type MetricsCalculator struct {
	book     *book.OrderBook
	tickSize float64

	mu              sync.Mutex
	samples         int
	lastSnapshot    time.Time
	sumSpreadTicks  float64
	sumSpreadBps    float64
	sumDepthDollars float64
}

// Summary is the running average over all snapshots taken so far.
type Summary struct {
	Samples         int       `json:"samples"`
	LastSnapshot    time.Time `json:"last_snapshot"`
	AvgSpreadTicks  float64   `json:"avg_spread_ticks"`
	AvgSpreadBps    float64   `json:"avg_spread_bps"`
	AvgDepthDollars float64   `json:"avg_depth_dollars"`
}

func NewMetricsCalculator(b *book.OrderBook, tickSize float64) *MetricsCalculator {
	return &MetricsCalculator{book: b, tickSize: tickSize}
}

// TakeSnapshot records one observation of the current book state. One-sided
// or empty books are skipped: spread is undefined without both a bid and an
// ask.
func (m *MetricsCalculator) TakeSnapshot(ts time.Time) {
	bestBid, hasBid := m.book.BestBid()
	bestAsk, hasAsk := m.book.BestAsk()
	if !hasBid || !hasAsk {
		return
	}

	bidVolume, _ := m.book.BestBidVolume()
	askVolume, _ := m.book.BestAskVolume()

	spread := bestAsk - bestBid
	midpoint := (bestAsk + bestBid) / 2
	depth := bestBid*float64(bidVolume) + bestAsk*float64(askVolume)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples++
	m.lastSnapshot = ts
	m.sumSpreadTicks += spread / m.tickSize
	m.sumSpreadBps += spread / midpoint * 10000
	m.sumDepthDollars += depth
}

// Summary returns the averages over every snapshot. The second return is
// false when no snapshot has been recorded yet.
func (m *MetricsCalculator) Summary() (Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.samples == 0 {
		return Summary{}, false
	}
	n := float64(m.samples)
	return Summary{
		Samples:         m.samples,
		LastSnapshot:    m.lastSnapshot,
		AvgSpreadTicks:  m.sumSpreadTicks / n,
		AvgSpreadBps:    m.sumSpreadBps / n,
		AvgDepthDollars: m.sumDepthDollars / n,
	}, true
}
