package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsim/order-book-simulator/internal/account"
	"github.com/obsim/order-book-simulator/internal/analysis"
	"github.com/obsim/order-book-simulator/internal/api/handlers"
	"github.com/obsim/order-book-simulator/internal/api/models"
	"github.com/obsim/order-book-simulator/internal/api/routes"
	"github.com/obsim/order-book-simulator/internal/book"
	"github.com/obsim/order-book-simulator/internal/broadcast"
	"github.com/obsim/order-book-simulator/internal/exchange"
	"github.com/obsim/order-book-simulator/internal/matching"
	"github.com/obsim/order-book-simulator/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
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

	h := handlers.NewHandler(svc, hub, zerolog.Nop())
	srv := httptest.NewServer(routes.SetupRoutes(h, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func registerTrader(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	resp, body := postJSON(t, srv, "/api/v1/traders", models.RegisterTraderRequest{Username: username})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var parsed models.RegisterTraderResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.NotNil(t, parsed.Trader)
	return parsed.Trader.TraderID
}

func TestRegisterTrader(t *testing.T) {
	srv := newTestServer(t)

	traderID := registerTrader(t, srv, "alice")
	assert.NotEmpty(t, traderID)

	// Duplicate username conflicts.
	resp, body := postJSON(t, srv, "/api/v1/traders", models.RegisterTraderRequest{Username: "alice"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "body: %s", body)
}

func TestSubmitOrderValidation(t *testing.T) {
	srv := newTestServer(t)
	traderID := registerTrader(t, srv, "alice")

	cases := []struct {
		name     string
		req      models.SubmitOrderRequest
		wantCode models.ErrorCode
	}{
		{"bad side", models.SubmitOrderRequest{TraderID: traderID, Side: "hold", Price: 10, Quantity: 5}, models.ErrInvalidSide},
		{"bad price", models.SubmitOrderRequest{TraderID: traderID, Side: "buy", Price: 0, Quantity: 5}, models.ErrInvalidPrice},
		{"bad quantity", models.SubmitOrderRequest{TraderID: traderID, Side: "buy", Price: 10, Quantity: -1}, models.ErrInvalidQuantity},
		{"bad priority", models.SubmitOrderRequest{TraderID: traderID, Side: "buy", Price: 10, Quantity: 5, Priority: 7}, models.ErrInvalidPriority},
		{"bad trader id", models.SubmitOrderRequest{TraderID: "not-a-uuid", Side: "buy", Price: 10, Quantity: 5}, models.ErrInvalidTraderID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postJSON(t, srv, "/api/v1/orders", tc.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var parsed models.BaseResponse
			require.NoError(t, json.Unmarshal(body, &parsed))
			require.NotNil(t, parsed.Error)
			assert.Equal(t, tc.wantCode, parsed.Error.Code)
		})
	}
}

func TestSubmitOrderUnknownTrader(t *testing.T) {
	srv := newTestServer(t)

	req := models.SubmitOrderRequest{
		TraderID: "6a0f2a44-9c1b-4a7e-9e39-0d8c2f6a1b23",
		Side:     "buy", Price: 10, Quantity: 5,
	}
	resp, _ := postJSON(t, srv, "/api/v1/orders", req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitOrderUnderfundedBuy(t *testing.T) {
	srv := newTestServer(t)
	traderID := registerTrader(t, srv, "alice")

	req := models.SubmitOrderRequest{TraderID: traderID, Side: "buy", Price: 100, Quantity: 20}
	resp, body := postJSON(t, srv, "/api/v1/orders", req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "body: %s", body)
}

func TestOrderFlowThroughAPI(t *testing.T) {
	srv := newTestServer(t)
	seller := registerTrader(t, srv, "seller")
	buyer := registerTrader(t, srv, "buyer")

	resp, body := postJSON(t, srv, "/api/v1/orders",
		models.SubmitOrderRequest{TraderID: seller, Side: "sell", Price: 50, Quantity: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var submit models.SubmitOrderResponse
	resp, body = postJSON(t, srv, "/api/v1/orders",
		models.SubmitOrderRequest{TraderID: buyer, Side: "buy", Price: 50, Quantity: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	require.NoError(t, json.Unmarshal(body, &submit))
	assert.Equal(t, "filled", submit.Status)
	require.Len(t, submit.Trades, 1)
	assert.Equal(t, 50.0, submit.Trades[0].Price)
	assert.EqualValues(t, 4, submit.Trades[0].Quantity)

	var top models.TopOfBookResponse
	getJSON(t, srv, "/api/v1/orderbook/top", &top)
	require.NotNil(t, top.BestAsk)
	assert.Equal(t, 50.0, top.BestAsk.Price)
	assert.EqualValues(t, 6, top.BestAsk.Quantity)
	assert.Nil(t, top.BestBid)

	var trades models.GetTradesResponse
	getJSON(t, srv, "/api/v1/trades", &trades)
	assert.Equal(t, 1, trades.Count)

	var depth models.OrderBookResponse
	getJSON(t, srv, "/api/v1/orderbook", &depth)
	require.Len(t, depth.Asks, 1)
	assert.EqualValues(t, 6, depth.Asks[0].Quantity)

	var orders models.GetOrdersResponse
	getJSON(t, srv, "/api/v1/orders?trader_id="+seller, &orders)
	require.Equal(t, 1, orders.Count)
	assert.EqualValues(t, 6, orders.Orders[0].Remaining)

	var trader models.GetTraderResponse
	getJSON(t, srv, "/api/v1/traders/"+seller, &trader)
	require.NotNil(t, trader.Trader)
	assert.Equal(t, "1200", trader.Trader.Balance)
}

func TestTradeStreamDeliversTrades(t *testing.T) {
	srv := newTestServer(t)
	seller := registerTrader(t, srv, "seller")
	buyer := registerTrader(t, srv, "buyer")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/trades"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, body := postJSON(t, srv, "/api/v1/orders",
		models.SubmitOrderRequest{TraderID: seller, Side: "sell", Price: 25, Quantity: 8})
	require.NotEmpty(t, body)
	resp, body := postJSON(t, srv, "/api/v1/orders",
		models.SubmitOrderRequest{TraderID: buyer, Side: "buy", Price: 25, Quantity: 8})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var trade models.TradeDTO
	require.NoError(t, conn.ReadJSON(&trade))
	assert.Equal(t, 25.0, trade.Price)
	assert.EqualValues(t, 8, trade.Quantity)
	assert.Equal(t, "buy", trade.TakerSide)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var health models.HealthResponse
	resp := getJSON(t, srv, "/api/v1/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Status)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/orderbook", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	trader := registerTrader(t, srv, "alice")

	for _, side := range []string{"sell", "buy"} {
		price := 101.0
		if side == "buy" {
			price = 100.0
		}
		resp, body := postJSON(t, srv, "/api/v1/orders",
			models.SubmitOrderRequest{TraderID: trader, Side: side, Price: price, Quantity: 5})
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	}

	var metrics models.MetricsResponse
	getJSON(t, srv, "/api/v1/metrics", &metrics)
	assert.Equal(t, 1, metrics.Samples)
	assert.InDelta(t, 100.0, metrics.AvgSpreadTicks, 1e-6)
}

func TestTraderBalanceFormat(t *testing.T) {
	srv := newTestServer(t)
	registerTrader(t, srv, fmt.Sprintf("trader-%d", time.Now().UnixNano()))

	var traders models.GetTradersResponse
	getJSON(t, srv, "/api/v1/traders", &traders)
	require.Equal(t, 1, traders.Count)
	assert.Equal(t, "1000", traders.Traders[0].Balance)
}
