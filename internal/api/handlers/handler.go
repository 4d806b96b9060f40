package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/obsim/order-book-simulator/internal/account"
	"github.com/obsim/order-book-simulator/internal/api/models"
	"github.com/obsim/order-book-simulator/internal/broadcast"
	"github.com/obsim/order-book-simulator/internal/exchange"
	"github.com/obsim/order-book-simulator/internal/types"
)

// Handler carries the exchange service and trade hub into the HTTP layer.
type Handler struct {
	svc *exchange.Service
	hub *broadcast.Hub
	log zerolog.Logger
}

func NewHandler(svc *exchange.Service, hub *broadcast.Hub, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, hub: hub, log: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Warn().Err(err).Msg("response encode failed")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, httpErr *models.HTTPError) {
	h.log.Warn().
		Str("error_code", string(httpErr.Error.Code)).
		Int("status", httpErr.StatusCode).
		Msg("request failed")

	h.writeJSON(w, httpErr.StatusCode, models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   httpErr.Error.Message,
		Error:     &httpErr.Error,
	})
}

// mapServiceError translates service errors into structured HTTP errors.
func mapServiceError(err error) *models.HTTPError {
	switch {
	case errors.Is(err, account.ErrTraderNotFound):
		return models.ErrTraderNotFoundError("")
	case errors.Is(err, account.ErrUsernameTaken):
		return models.ErrUsernameTakenError("")
	case errors.Is(err, account.ErrInsufficientFunds):
		return models.ErrInsufficientFundsError()
	case errors.Is(err, account.ErrAccountInactive):
		return models.ErrAccountInactiveError()
	default:
		return models.ErrInternal(err.Error())
	}
}

func tradeToDTO(tr *types.Trade) models.TradeDTO {
	return models.TradeDTO{
		TradeID:       tr.ID.String(),
		MakerOrderID:  tr.MakerOrderID.String(),
		MakerTraderID: tr.MakerTraderID.String(),
		TakerOrderID:  tr.TakerOrderID.String(),
		TakerTraderID: tr.TakerTraderID.String(),
		Price:         tr.Price,
		Quantity:      tr.Quantity,
		TakerSide:     string(tr.TakerSide),
		Timestamp:     tr.Timestamp,
	}
}

func tradesToDTO(trades []*types.Trade) []models.TradeDTO {
	dtos := make([]models.TradeDTO, len(trades))
	for i, tr := range trades {
		dtos[i] = tradeToDTO(tr)
	}
	return dtos
}

func orderToDTO(o *types.Order) models.OrderDTO {
	return models.OrderDTO{
		OrderID:   o.ID.String(),
		TraderID:  o.TraderID.String(),
		Side:      string(o.Side),
		Price:     o.Price,
		Remaining: o.Quantity,
		Priority:  int(o.Priority),
		Timestamp: o.Timestamp,
	}
}

func traderToDTO(acct account.Account) models.TraderDTO {
	return models.TraderDTO{
		TraderID:  acct.TraderID.String(),
		Username:  acct.Username,
		Balance:   acct.Balance.String(),
		Active:    acct.Active,
		CreatedAt: acct.CreatedAt,
	}
}

func ok(message string) models.BaseResponse {
	return models.BaseResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}
