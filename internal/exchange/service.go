package exchange

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obsim/order-book-simulator/internal/account"
	"github.com/obsim/order-book-simulator/internal/analysis"
	"github.com/obsim/order-book-simulator/internal/book"
	"github.com/obsim/order-book-simulator/internal/broadcast"
	"github.com/obsim/order-book-simulator/internal/matching"
	"github.com/obsim/order-book-simulator/internal/storage"
	"github.com/obsim/order-book-simulator/internal/types"
)

// OrderStatus describes how much of a submitted order executed.
type OrderStatus string

const (
	StatusOpen    OrderStatus = "open"
	StatusPartial OrderStatus = "partially_filled"
	StatusFilled  OrderStatus = "filled"
)

// SubmitResult is what a caller gets back from one submission: the accepted
// order (with its remaining quantity), the trades it produced, and the
// resulting status.
type SubmitResult struct {
	Order     *types.Order
	Trades    []*types.Trade
	Remaining int64
	Status    OrderStatus
}

// TopOfBook is a consistent snapshot of both best levels.
type TopOfBook struct {
	BestBid   float64
	BestAsk   float64
	HasBid    bool
	HasAsk    bool
	BidVolume int64
	AskVolume int64
}

// Deps carries the collaborators a Service is wired with. Orders and Trades
// are required; AccountStore, Metrics, and Sinks may be left empty.
type Deps struct {
	Engine       *matching.Engine
	Accounts     *account.Manager
	Orders       storage.OrderStore
	Trades       storage.TradeStore
	AccountStore storage.AccountStore
	Metrics      *analysis.MetricsCalculator
	Sinks        []broadcast.TradeSink
	Logger       zerolog.Logger
}

// Service serializes all access to the matching engine. The engine and the
// book underneath it are single-writer by contract, so one mutex guards the
// whole submission path: account checks, matching, settlement, persistence,
// and broadcast happen atomically with respect to other submissions. Trades
// therefore reach every sink in the exact order they were generated.
//
// Reads that need a stable view of the book (top of book, depth) take the
// same mutex. Store reads go to the thread-safe stores directly.
type Service struct {
	mu sync.Mutex

	engine   *matching.Engine
	accounts *account.Manager
	orders   storage.OrderStore
	trades   storage.TradeStore
	acctSt   storage.AccountStore
	metrics  *analysis.MetricsCalculator
	sinks    []broadcast.TradeSink
	log      zerolog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		engine:   d.Engine,
		accounts: d.Accounts,
		orders:   d.Orders,
		trades:   d.Trades,
		acctSt:   d.AccountStore,
		metrics:  d.Metrics,
		sinks:    d.Sinks,
		log:      d.Logger,
	}
}

// SubmitOrder runs one order through the full pipeline. Inputs are assumed
// to have passed boundary validation; the service checks only what depends
// on live state: the trader exists and is active, and a buy is funded for
// its worst case (limit price times full quantity) before it can match.
// Once matching runs the book mutation is final; settlement and persistence
// consume the result and cannot unwind it.
func (s *Service) SubmitOrder(traderID uuid.UUID, side types.Side, price float64, quantity int64, priority types.Priority) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, err := s.accounts.Get(traderID)
	if err != nil {
		return nil, err
	}
	if !acct.Active {
		return nil, account.ErrAccountInactive
	}

	order := types.NewOrder(traderID, side, price, quantity, priority)

	if side == types.Buy {
		ok, err := s.accounts.CanAfford(traderID, account.OrderCost(order))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, account.ErrInsufficientFunds
		}
	}

	if err := s.orders.Save(order); err != nil {
		s.log.Warn().Err(err).Stringer("order_id", order.ID).Msg("order persist failed")
	}

	originalQty := order.Quantity
	trades := s.engine.ProcessOrder(order)

	if len(trades) > 0 {
		if err := s.accounts.Settle(trades); err != nil {
			// The book mutation is final; a settlement failure is a ledger
			// discrepancy to surface, not a reason to unwind fills.
			s.log.Error().Err(err).Stringer("taker_order_id", order.ID).Msg("settlement failed")
		}
		s.persistFills(order, trades)
	}

	if s.metrics != nil {
		s.metrics.TakeSnapshot(time.Now().UTC())
	}

	for _, sink := range s.sinks {
		sink.Publish(trades)
	}

	result := &SubmitResult{
		Order:     order,
		Trades:    trades,
		Remaining: order.Quantity,
		Status:    status(originalQty, order.Quantity),
	}

	s.log.Info().
		Stringer("order_id", order.ID).
		Stringer("trader_id", traderID).
		Str("side", string(side)).
		Float64("price", price).
		Int64("quantity", originalQty).
		Int64("remaining", order.Quantity).
		Int("trades", len(trades)).
		Msg("order processed")

	return result, nil
}

// persistFills writes the post-match state of every touched order, the trade
// batch, and the settled account balances. Failures are logged and skipped;
// the in-memory state stays authoritative.
func (s *Service) persistFills(taker *types.Order, trades []*types.Trade) {
	for _, tr := range trades {
		maker, err := s.orders.Get(tr.MakerOrderID)
		if err != nil {
			continue
		}
		if err := s.orders.Update(maker); err != nil {
			s.log.Warn().Err(err).Stringer("order_id", maker.ID).Msg("maker order update failed")
		}
	}
	if err := s.orders.Update(taker); err != nil {
		s.log.Warn().Err(err).Stringer("order_id", taker.ID).Msg("taker order update failed")
	}

	if err := s.trades.SaveBatch(trades); err != nil {
		s.log.Warn().Err(err).Int("count", len(trades)).Msg("trade persist failed")
	}

	if s.acctSt != nil {
		for _, id := range touchedTraders(trades) {
			acct, err := s.accounts.Get(id)
			if err != nil {
				continue
			}
			if err := s.acctSt.Save(&acct); err != nil {
				s.log.Warn().Err(err).Stringer("trader_id", id).Msg("account persist failed")
			}
		}
	}
}

func touchedTraders(trades []*types.Trade) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(trades)*2)
	var ids []uuid.UUID
	for _, tr := range trades {
		for _, id := range [2]uuid.UUID{tr.MakerTraderID, tr.TakerTraderID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func status(original, remaining int64) OrderStatus {
	switch {
	case remaining == 0:
		return StatusFilled
	case remaining < original:
		return StatusPartial
	default:
		return StatusOpen
	}
}

// RegisterTrader creates an account and persists the initial snapshot.
func (s *Service) RegisterTrader(username string) (account.Account, error) {
	acct, err := s.accounts.Register(username)
	if err != nil {
		return account.Account{}, err
	}

	if s.acctSt != nil {
		if err := s.acctSt.Save(&acct); err != nil {
			s.log.Warn().Err(err).Stringer("trader_id", acct.TraderID).Msg("account persist failed")
		}
	}

	s.log.Info().Stringer("trader_id", acct.TraderID).Str("username", username).Msg("trader registered")
	return acct, nil
}

// GetTrader returns the trader's current account state.
func (s *Service) GetTrader(traderID uuid.UUID) (account.Account, error) {
	return s.accounts.Get(traderID)
}

// ListTraders returns every registered account.
func (s *Service) ListTraders() []account.Account {
	return s.accounts.All()
}

// DeactivateTrader disables an account; its resting orders stay on the book.
func (s *Service) DeactivateTrader(traderID uuid.UUID) error {
	if err := s.accounts.Deactivate(traderID); err != nil {
		return err
	}
	if s.acctSt != nil {
		if acct, err := s.accounts.Get(traderID); err == nil {
			if err := s.acctSt.Save(&acct); err != nil {
				s.log.Warn().Err(err).Stringer("trader_id", traderID).Msg("account persist failed")
			}
		}
	}
	return nil
}

// TopOfBook returns both best levels in one consistent view.
func (s *Service) TopOfBook() TopOfBook {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.engine.Book()
	var top TopOfBook
	top.BestBid, top.HasBid = b.BestBid()
	top.BestAsk, top.HasAsk = b.BestAsk()
	if top.HasBid {
		top.BidVolume, _ = b.BestBidVolume()
	}
	if top.HasAsk {
		top.AskVolume, _ = b.BestAskVolume()
	}
	return top
}

// Depth returns aggregated price levels for both sides, bids from highest
// and asks from lowest.
func (s *Service) Depth() book.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Book().Snapshot()
}

// RecentTrades returns up to limit most recent trades, newest first.
func (s *Service) RecentTrades(limit int) ([]*types.Trade, error) {
	return s.trades.GetRecent(limit)
}

// OrdersByTrader returns every stored order a trader has submitted.
func (s *Service) OrdersByTrader(traderID uuid.UUID) []*types.Order {
	return s.orders.GetByTrader(traderID)
}

// Metrics returns the liquidity metric averages collected so far.
func (s *Service) Metrics() (analysis.Summary, bool) {
	if s.metrics == nil {
		return analysis.Summary{}, false
	}
	return s.metrics.Summary()
}
