package models

import "time"

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// TradeDTO represents a trade in API responses
type TradeDTO struct {
	TradeID       string    `json:"trade_id"`
	MakerOrderID  string    `json:"maker_order_id"`
	MakerTraderID string    `json:"maker_trader_id"`
	TakerOrderID  string    `json:"taker_order_id"`
	TakerTraderID string    `json:"taker_trader_id"`
	Price         float64   `json:"price"`
	Quantity      int64     `json:"quantity"`
	TakerSide     string    `json:"taker_side"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderDTO represents an order in API responses
type OrderDTO struct {
	OrderID   string    `json:"order_id"`
	TraderID  string    `json:"trader_id"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Remaining int64     `json:"remaining_quantity"`
	Priority  int       `json:"priority"`
	Timestamp time.Time `json:"timestamp"`
}

// SubmitOrderResponse represents the response for order submission
type SubmitOrderResponse struct {
	BaseResponse
	OrderID   string     `json:"order_id,omitempty"`
	Status    string     `json:"status,omitempty"`
	Remaining int64      `json:"remaining_quantity"`
	Trades    []TradeDTO `json:"trades"`
}

// GetOrdersResponse represents the response for listing orders
type GetOrdersResponse struct {
	BaseResponse
	Orders []OrderDTO `json:"orders"`
	Count  int        `json:"count"`
}

// TraderDTO represents a trader account in API responses
type TraderDTO struct {
	TraderID  string    `json:"trader_id"`
	Username  string    `json:"username"`
	Balance   string    `json:"balance"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterTraderResponse represents the response for trader registration
type RegisterTraderResponse struct {
	BaseResponse
	Trader *TraderDTO `json:"trader,omitempty"`
}

// GetTraderResponse represents the response for a single trader lookup
type GetTraderResponse struct {
	BaseResponse
	Trader *TraderDTO `json:"trader,omitempty"`
}

// GetTradersResponse represents the response for listing traders
type GetTradersResponse struct {
	BaseResponse
	Traders []TraderDTO `json:"traders"`
	Count   int         `json:"count"`
}

// PriceLevel represents one aggregated price level in the order book
type PriceLevel struct {
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	OrderCount int     `json:"order_count"`
}

// OrderBookResponse represents an order book depth snapshot
type OrderBookResponse struct {
	BaseResponse
	Bids     []PriceLevel `json:"bids"`
	Asks     []PriceLevel `json:"asks"`
	Spread   float64      `json:"spread"`
	MidPrice float64      `json:"mid_price"`
}

// BestQuote represents one side's best level
type BestQuote struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// TopOfBookResponse represents the best bid/ask snapshot
type TopOfBookResponse struct {
	BaseResponse
	BestBid  *BestQuote `json:"best_bid"`
	BestAsk  *BestQuote `json:"best_ask"`
	Spread   float64    `json:"spread"`
	MidPrice float64    `json:"mid_price"`
}

// GetTradesResponse represents the response for recent trades
type GetTradesResponse struct {
	BaseResponse
	Trades []TradeDTO `json:"trades"`
	Count  int        `json:"count"`
}

// MetricsResponse represents the liquidity metrics summary
type MetricsResponse struct {
	BaseResponse
	Samples         int       `json:"samples"`
	LastSnapshot    time.Time `json:"last_snapshot,omitempty"`
	AvgSpreadTicks  float64   `json:"avg_spread_ticks"`
	AvgSpreadBps    float64   `json:"avg_spread_bps"`
	AvgDepthDollars float64   `json:"avg_depth_dollars"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
}
