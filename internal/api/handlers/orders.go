package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/api/models"
)

// SubmitOrderHandler handles single order submission
func (h *Handler) SubmitOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	traderID, side, priority, httpErr := req.Validate()
	if httpErr != nil {
		h.writeError(w, httpErr)
		return
	}

	result, err := h.svc.SubmitOrder(traderID, side, req.Price, req.Quantity, priority)
	if err != nil {
		h.writeError(w, mapServiceError(err))
		return
	}

	h.writeJSON(w, http.StatusOK, models.SubmitOrderResponse{
		BaseResponse: ok("Order submitted successfully"),
		OrderID:      result.Order.ID.String(),
		Status:       string(result.Status),
		Remaining:    result.Remaining,
		Trades:       tradesToDTO(result.Trades),
	})
}

// GetOrdersHandler lists stored orders, optionally filtered by trader.
func (h *Handler) GetOrdersHandler(w http.ResponseWriter, r *http.Request) {
	traderIDStr := r.URL.Query().Get("trader_id")
	if traderIDStr == "" {
		h.writeError(w, models.ErrBadRequest("trader_id query parameter is required", nil))
		return
	}

	traderID, err := uuid.Parse(traderIDStr)
	if err != nil {
		h.writeError(w, models.ErrInvalidTraderIDError(traderIDStr))
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 100, 1000)

	orders := h.svc.OrdersByTrader(traderID)
	if len(orders) > limit {
		orders = orders[:limit]
	}

	dtos := make([]models.OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = orderToDTO(o)
	}

	h.writeJSON(w, http.StatusOK, models.GetOrdersResponse{
		BaseResponse: ok(""),
		Orders:       dtos,
		Count:        len(dtos),
	})
}

// parseLimit parses a limit query parameter with a default and a cap.
func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	if parsed > max {
		return max
	}
	return parsed
}
