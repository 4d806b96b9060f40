package models

import "net/http"

// ErrorCode represents standard error codes
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrInvalidSide       ErrorCode = "INVALID_SIDE"
	ErrInvalidPrice      ErrorCode = "INVALID_PRICE"
	ErrInvalidQuantity   ErrorCode = "INVALID_QUANTITY"
	ErrInvalidPriority   ErrorCode = "INVALID_PRIORITY"
	ErrInvalidTraderID   ErrorCode = "INVALID_TRADER_ID"
	ErrTraderNotFound    ErrorCode = "TRADER_NOT_FOUND"
	ErrUsernameTaken     ErrorCode = "USERNAME_TAKEN"
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrAccountInactive   ErrorCode = "ACCOUNT_INACTIVE"
	ErrInternalError     ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured error response
type APIError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError wraps an APIError with an HTTP status code
type HTTPError struct {
	StatusCode int
	Error      APIError
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, code ErrorCode, message string, details map[string]interface{}) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Common error constructors

func ErrBadRequest(message string, details map[string]interface{}) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidRequest, message, details)
}

func ErrInvalidSideError(providedSide string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidSide,
		"Invalid side, must be 'buy' or 'sell'",
		map[string]interface{}{"provided_value": providedSide})
}

func ErrInvalidPriceError(price float64) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidPrice,
		"Price must be greater than 0",
		map[string]interface{}{"field": "price", "provided_value": price})
}

func ErrInvalidQuantityError(quantity int64) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidQuantity,
		"Quantity must be positive",
		map[string]interface{}{"field": "quantity", "provided_value": quantity})
}

func ErrInvalidPriorityError(priority int) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidPriority,
		"Priority must be 1 (high), 2 (medium), or 3 (low)",
		map[string]interface{}{"field": "priority", "provided_value": priority})
}

func ErrInvalidTraderIDError(providedID string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidTraderID,
		"trader_id must be a valid UUID",
		map[string]interface{}{"field": "trader_id", "provided_value": providedID})
}

func ErrTraderNotFoundError(traderID string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, ErrTraderNotFound,
		"Trader not found",
		map[string]interface{}{"trader_id": traderID})
}

func ErrUsernameTakenError(username string) *HTTPError {
	return NewHTTPError(http.StatusConflict, ErrUsernameTaken,
		"Username already exists",
		map[string]interface{}{"username": username})
}

func ErrInsufficientFundsError() *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, ErrInsufficientFunds,
		"Balance does not cover the order's worst-case cost", nil)
}

func ErrAccountInactiveError() *HTTPError {
	return NewHTTPError(http.StatusForbidden, ErrAccountInactive,
		"Account is deactivated", nil)
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, ErrInternalError, message, nil)
}
