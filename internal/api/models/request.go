package models

import (
	"strings"

	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/types"
)

// SubmitOrderRequest represents a single order submission. Validation
// happens here, at the boundary; the engine below trusts its inputs.
type SubmitOrderRequest struct {
	TraderID string  `json:"trader_id"`
	Side     string  `json:"side"` // "buy" | "sell"
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Priority int     `json:"priority,omitempty"` // 1 high, 2 medium, 3 low; default 2
}

// Validate checks the request and returns the parsed trader ID, side, and
// priority on success.
func (r *SubmitOrderRequest) Validate() (uuid.UUID, types.Side, types.Priority, *HTTPError) {
	traderID, err := uuid.Parse(strings.TrimSpace(r.TraderID))
	if err != nil {
		return uuid.Nil, "", 0, ErrInvalidTraderIDError(r.TraderID)
	}

	side := types.Side(strings.ToLower(strings.TrimSpace(r.Side)))
	if !side.Valid() {
		return uuid.Nil, "", 0, ErrInvalidSideError(r.Side)
	}

	if r.Price <= 0 {
		return uuid.Nil, "", 0, ErrInvalidPriceError(r.Price)
	}
	if r.Quantity <= 0 {
		return uuid.Nil, "", 0, ErrInvalidQuantityError(r.Quantity)
	}

	priority := types.PriorityMedium
	switch r.Priority {
	case 0:
	case 1:
		priority = types.PriorityHigh
	case 2:
		priority = types.PriorityMedium
	case 3:
		priority = types.PriorityLow
	default:
		return uuid.Nil, "", 0, ErrInvalidPriorityError(r.Priority)
	}

	return traderID, side, priority, nil
}

// RegisterTraderRequest represents a trader registration
type RegisterTraderRequest struct {
	Username string `json:"username"`
}

// Validate validates the registration request
func (r *RegisterTraderRequest) Validate() *HTTPError {
	username := strings.TrimSpace(r.Username)
	if username == "" {
		return ErrBadRequest("username cannot be empty", map[string]interface{}{"field": "username"})
	}
	if len(username) > 64 {
		return ErrBadRequest("username cannot exceed 64 characters",
			map[string]interface{}{"field": "username", "max_length": 64})
	}
	return nil
}
