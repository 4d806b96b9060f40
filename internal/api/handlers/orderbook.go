package handlers

import (
	"net/http"

	"github.com/obsim/order-book-simulator/internal/api/models"
)

// GetOrderBookHandler returns an aggregated depth snapshot of both sides.
func (h *Handler) GetOrderBookHandler(w http.ResponseWriter, r *http.Request) {
	depth := parseLimit(r.URL.Query().Get("depth"), 10, 50)

	snap := h.svc.Depth()

	bids := make([]models.PriceLevel, 0, depth)
	for i, lvl := range snap.Bids {
		if i >= depth {
			break
		}
		bids = append(bids, models.PriceLevel{Price: lvl.Price, Quantity: lvl.Quantity, OrderCount: lvl.Orders})
	}
	asks := make([]models.PriceLevel, 0, depth)
	for i, lvl := range snap.Asks {
		if i >= depth {
			break
		}
		asks = append(asks, models.PriceLevel{Price: lvl.Price, Quantity: lvl.Quantity, OrderCount: lvl.Orders})
	}

	var spread, midPrice float64
	if len(bids) > 0 && len(asks) > 0 {
		spread = asks[0].Price - bids[0].Price
		midPrice = (bids[0].Price + asks[0].Price) / 2.0
	}

	h.writeJSON(w, http.StatusOK, models.OrderBookResponse{
		BaseResponse: ok(""),
		Bids:         bids,
		Asks:         asks,
		Spread:       spread,
		MidPrice:     midPrice,
	})
}

// GetTopOfBookHandler returns the best bid and ask with their level volumes.
func (h *Handler) GetTopOfBookHandler(w http.ResponseWriter, r *http.Request) {
	top := h.svc.TopOfBook()

	var bestBid, bestAsk *models.BestQuote
	if top.HasBid {
		bestBid = &models.BestQuote{Price: top.BestBid, Quantity: top.BidVolume}
	}
	if top.HasAsk {
		bestAsk = &models.BestQuote{Price: top.BestAsk, Quantity: top.AskVolume}
	}

	var spread, midPrice float64
	if top.HasBid && top.HasAsk {
		spread = top.BestAsk - top.BestBid
		midPrice = (top.BestBid + top.BestAsk) / 2.0
	}

	h.writeJSON(w, http.StatusOK, models.TopOfBookResponse{
		BaseResponse: ok(""),
		BestBid:      bestBid,
		BestAsk:      bestAsk,
		Spread:       spread,
		MidPrice:     midPrice,
	})
}
