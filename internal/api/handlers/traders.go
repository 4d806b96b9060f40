package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/api/models"
)

// RegisterTraderHandler creates a trader account with the starting balance.
func (h *Handler) RegisterTraderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterTraderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	if httpErr := req.Validate(); httpErr != nil {
		h.writeError(w, httpErr)
		return
	}

	acct, err := h.svc.RegisterTrader(strings.TrimSpace(req.Username))
	if err != nil {
		h.writeError(w, mapServiceError(err))
		return
	}

	dto := traderToDTO(acct)
	h.writeJSON(w, http.StatusCreated, models.RegisterTraderResponse{
		BaseResponse: ok("Trader registered successfully"),
		Trader:       &dto,
	})
}

// GetTraderHandler retrieves one trader by ID from the request path.
func (h *Handler) GetTraderHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	idStr := parts[len(parts)-1]

	traderID, err := uuid.Parse(idStr)
	if err != nil {
		h.writeError(w, models.ErrInvalidTraderIDError(idStr))
		return
	}

	acct, err := h.svc.GetTrader(traderID)
	if err != nil {
		h.writeError(w, models.ErrTraderNotFoundError(idStr))
		return
	}

	dto := traderToDTO(acct)
	h.writeJSON(w, http.StatusOK, models.GetTraderResponse{
		BaseResponse: ok(""),
		Trader:       &dto,
	})
}

// GetTradersHandler lists every registered trader.
func (h *Handler) GetTradersHandler(w http.ResponseWriter, r *http.Request) {
	accounts := h.svc.ListTraders()

	dtos := make([]models.TraderDTO, len(accounts))
	for i, acct := range accounts {
		dtos[i] = traderToDTO(acct)
	}

	h.writeJSON(w, http.StatusOK, models.GetTradersResponse{
		BaseResponse: ok(""),
		Traders:      dtos,
		Count:        len(dtos),
	})
}
