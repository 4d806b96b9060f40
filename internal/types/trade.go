package types

import (
	"time"

	"github.com/google/uuid"
)

// Trade is an immutable record of one match event. The price is always the
// maker's resting price: the aggressor pays the spread.
type Trade struct {
	ID            uuid.UUID `json:"trade_id"`
	MakerOrderID  uuid.UUID `json:"maker_order_id"`
	MakerTraderID uuid.UUID `json:"maker_trader_id"`
	TakerOrderID  uuid.UUID `json:"taker_order_id"`
	TakerTraderID uuid.UUID `json:"taker_trader_id"`
	Price         float64   `json:"price"`
	Quantity      int64     `json:"quantity"`
	TakerSide     Side      `json:"taker_side"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTrade records a fill of quantity between a resting maker and an
// incoming taker. Created only by the matching engine, once per pairing.
func NewTrade(maker, taker *Order, quantity int64) *Trade {
	return &Trade{
		ID:            uuid.New(),
		MakerOrderID:  maker.ID,
		MakerTraderID: maker.TraderID,
		TakerOrderID:  taker.ID,
		TakerTraderID: taker.TraderID,
		Price:         maker.Price,
		Quantity:      quantity,
		TakerSide:     taker.Side,
		Timestamp:     time.Now().UTC(),
	}
}
