package exchange_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsim/order-book-simulator/internal/account"
	"github.com/obsim/order-book-simulator/internal/analysis"
	"github.com/obsim/order-book-simulator/internal/book"
	"github.com/obsim/order-book-simulator/internal/broadcast"
	"github.com/obsim/order-book-simulator/internal/exchange"
	"github.com/obsim/order-book-simulator/internal/matching"
	"github.com/obsim/order-book-simulator/internal/storage/memory"
	"github.com/obsim/order-book-simulator/internal/types"
)

func newTestService(t *testing.T) (*exchange.Service, *broadcast.Hub) {
	t.Helper()

	engine := matching.NewEngine(book.NewOrderBook())
	hub := broadcast.NewHub(64, zerolog.Nop())
	t.Cleanup(hub.Close)

	svc := exchange.NewService(exchange.Deps{
		Engine:   engine,
		Accounts: account.NewManager(decimal.NewFromInt(1000)),
		Orders:   memory.NewOrderStore(1000),
		Trades:   memory.NewTradeStore(1000),
		Metrics:  analysis.NewMetricsCalculator(engine.Book(), 0.01),
		Sinks:    []broadcast.TradeSink{hub},
		Logger:   zerolog.Nop(),
	})
	return svc, hub
}

func register(t *testing.T, svc *exchange.Service, username string) account.Account {
	t.Helper()
	acct, err := svc.RegisterTrader(username)
	require.NoError(t, err)
	return acct
}

func TestSubmitOrderUnknownTrader(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SubmitOrder(uuid.New(), types.Buy, 100, 10, types.PriorityMedium)
	assert.ErrorIs(t, err, account.ErrTraderNotFound)
}

func TestSubmitOrderInactiveTrader(t *testing.T) {
	svc, _ := newTestService(t)
	acct := register(t, svc, "alice")

	require.NoError(t, svc.DeactivateTrader(acct.TraderID))

	_, err := svc.SubmitOrder(acct.TraderID, types.Sell, 100, 10, types.PriorityMedium)
	assert.ErrorIs(t, err, account.ErrAccountInactive)
}

func TestSubmitRejectsUnderfundedBuy(t *testing.T) {
	svc, _ := newTestService(t)
	acct := register(t, svc, "alice")

	// Worst case cost 20*100 = 2000 against a 1000 starting balance.
	_, err := svc.SubmitOrder(acct.TraderID, types.Buy, 100, 20, types.PriorityMedium)
	assert.ErrorIs(t, err, account.ErrInsufficientFunds)

	top := svc.TopOfBook()
	assert.False(t, top.HasBid, "rejected order must not reach the book")
}

func TestSellRequiresNoFunds(t *testing.T) {
	svc, _ := newTestService(t)
	acct := register(t, svc, "alice")

	// Far beyond the balance; sells are not funds-checked.
	res, err := svc.SubmitOrder(acct.TraderID, types.Sell, 500, 100, types.PriorityMedium)
	require.NoError(t, err)
	assert.Equal(t, exchange.StatusOpen, res.Status)
}

func TestSubmitMatchSettlesAndPersists(t *testing.T) {
	svc, _ := newTestService(t)
	seller := register(t, svc, "seller")
	buyer := register(t, svc, "buyer")

	res, err := svc.SubmitOrder(seller.TraderID, types.Sell, 50, 10, types.PriorityMedium)
	require.NoError(t, err)
	require.Equal(t, exchange.StatusOpen, res.Status)

	res, err = svc.SubmitOrder(buyer.TraderID, types.Buy, 50, 10, types.PriorityMedium)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, exchange.StatusFilled, res.Status)
	assert.EqualValues(t, 0, res.Remaining)

	buyerAcct, err := svc.GetTrader(buyer.TraderID)
	require.NoError(t, err)
	sellerAcct, err := svc.GetTrader(seller.TraderID)
	require.NoError(t, err)
	assert.True(t, buyerAcct.Balance.Equal(decimal.NewFromInt(500)), "buyer balance = %s", buyerAcct.Balance)
	assert.True(t, sellerAcct.Balance.Equal(decimal.NewFromInt(1500)), "seller balance = %s", sellerAcct.Balance)

	trades, err := svc.RecentTrades(10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, res.Trades[0].ID, trades[0].ID)

	// Both order records reflect the fill.
	for _, o := range svc.OrdersByTrader(seller.TraderID) {
		assert.EqualValues(t, 0, o.Quantity)
	}
}

func TestPartialFillStatusAndRemainder(t *testing.T) {
	svc, _ := newTestService(t)
	seller := register(t, svc, "seller")
	buyer := register(t, svc, "buyer")

	_, err := svc.SubmitOrder(seller.TraderID, types.Sell, 10, 40, types.PriorityMedium)
	require.NoError(t, err)

	res, err := svc.SubmitOrder(buyer.TraderID, types.Buy, 10, 60, types.PriorityMedium)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, exchange.StatusPartial, res.Status)
	assert.EqualValues(t, 20, res.Remaining)

	top := svc.TopOfBook()
	assert.True(t, top.HasBid)
	assert.Equal(t, 10.0, top.BestBid)
	assert.EqualValues(t, 20, top.BidVolume)
	assert.False(t, top.HasAsk)
}

func TestTradesReachSubscribersInOrder(t *testing.T) {
	svc, hub := newTestService(t)
	seller := register(t, svc, "seller")
	buyer := register(t, svc, "buyer")

	sub := hub.Subscribe()
	defer sub.Close()

	// Three resting asks, one sweeping buy: three trades in known order.
	for _, price := range []float64{11, 12, 13} {
		_, err := svc.SubmitOrder(seller.TraderID, types.Sell, price, 5, types.PriorityMedium)
		require.NoError(t, err)
	}
	res, err := svc.SubmitOrder(buyer.TraderID, types.Buy, 13, 15, types.PriorityMedium)
	require.NoError(t, err)
	require.Len(t, res.Trades, 3)

	for i, want := range res.Trades {
		got := <-sub.C()
		assert.Equal(t, want.ID, got.ID, "trade %d out of order", i)
	}
}

func TestDepthAggregatesLevels(t *testing.T) {
	svc, _ := newTestService(t)
	trader := register(t, svc, "alice")

	_, err := svc.SubmitOrder(trader.TraderID, types.Sell, 101, 5, types.PriorityMedium)
	require.NoError(t, err)
	_, err = svc.SubmitOrder(trader.TraderID, types.Sell, 101, 7, types.PriorityMedium)
	require.NoError(t, err)
	_, err = svc.SubmitOrder(trader.TraderID, types.Sell, 103, 4, types.PriorityMedium)
	require.NoError(t, err)

	depth := svc.Depth()
	require.Len(t, depth.Asks, 2)
	assert.Equal(t, 101.0, depth.Asks[0].Price)
	assert.EqualValues(t, 12, depth.Asks[0].Quantity)
	assert.Equal(t, 2, depth.Asks[0].Orders)
	assert.Equal(t, 103.0, depth.Asks[1].Price)
}

func TestMetricsSampledOnSubmission(t *testing.T) {
	svc, _ := newTestService(t)
	trader := register(t, svc, "alice")

	_, err := svc.SubmitOrder(trader.TraderID, types.Sell, 101, 5, types.PriorityMedium)
	require.NoError(t, err)
	_, err = svc.SubmitOrder(trader.TraderID, types.Buy, 100, 5, types.PriorityMedium)
	require.NoError(t, err)

	summary, ok := svc.Metrics()
	require.True(t, ok)
	assert.Equal(t, 1, summary.Samples)
	assert.InDelta(t, 100.0, summary.AvgSpreadTicks, 1e-6)
}
