package handlers

import (
	"net/http"

	"github.com/obsim/order-book-simulator/internal/api/models"
)

// GetTradesHandler returns the most recent trades, newest first.
func (h *Handler) GetTradesHandler(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 100, 1000)

	trades, err := h.svc.RecentTrades(limit)
	if err != nil {
		h.writeError(w, models.ErrInternal("failed to load recent trades"))
		return
	}

	dtos := tradesToDTO(trades)
	h.writeJSON(w, http.StatusOK, models.GetTradesResponse{
		BaseResponse: ok(""),
		Trades:       dtos,
		Count:        len(dtos),
	})
}

// GetMetricsHandler returns the running liquidity metric averages.
func (h *Handler) GetMetricsHandler(w http.ResponseWriter, r *http.Request) {
	summary, sampled := h.svc.Metrics()

	resp := models.MetricsResponse{BaseResponse: ok("")}
	if sampled {
		resp.Samples = summary.Samples
		resp.LastSnapshot = summary.LastSnapshot
		resp.AvgSpreadTicks = summary.AvgSpreadTicks
		resp.AvgSpreadBps = summary.AvgSpreadBps
		resp.AvgDepthDollars = summary.AvgDepthDollars
	}
	h.writeJSON(w, http.StatusOK, resp)
}
