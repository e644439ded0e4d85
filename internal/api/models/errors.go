package models

import (
	"errors"
	"net/http"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// ErrorCode represents standard error codes
type ErrorCode string

const (
	CodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	CodeInvalidOrderType    ErrorCode = "INVALID_ORDER_TYPE"
	CodeInvalidSide         ErrorCode = "INVALID_SIDE"
	CodeInvalidPrice        ErrorCode = "INVALID_PRICE"
	CodeInvalidQuantity     ErrorCode = "INVALID_QUANTITY"
	CodeMissingPrice        ErrorCode = "MISSING_PRICE"
	CodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	CodeNoLiquidity         ErrorCode = "NO_LIQUIDITY"
	CodeOrderNotFound       ErrorCode = "ORDER_NOT_FOUND"
	CodeNothingToCancel     ErrorCode = "NOTHING_TO_CANCEL"
	CodePairNotFound        ErrorCode = "PAIR_NOT_FOUND"
	CodeConsistencyFault    ErrorCode = "CONSISTENCY_FAULT"
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
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
	return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, message, details)
}

func ErrOrderNotFoundError(orderID uint64) *HTTPError {
	return NewHTTPError(http.StatusNotFound, CodeOrderNotFound,
		"Order not found",
		map[string]interface{}{"order_id": orderID})
}

func ErrPairNotFoundError(symbol string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, CodePairNotFound,
		"No market data for trading pair",
		map[string]interface{}{"symbol": symbol})
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// FromDomain maps engine and ledger errors onto HTTP error responses
func FromDomain(err error) *HTTPError {
	switch {
	case errors.Is(err, types.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, CodeInvalidQuantity, err.Error(), nil)
	case errors.Is(err, types.ErrInvalidPrice):
		return NewHTTPError(http.StatusBadRequest, CodeInvalidPrice, err.Error(), nil)
	case errors.Is(err, types.ErrInvalidSide):
		return NewHTTPError(http.StatusBadRequest, CodeInvalidSide, err.Error(), nil)
	case errors.Is(err, types.ErrInvalidOrderType):
		return NewHTTPError(http.StatusBadRequest, CodeInvalidOrderType, err.Error(), nil)
	case errors.Is(err, types.ErrInsufficientBalance):
		return NewHTTPError(http.StatusUnprocessableEntity, CodeInsufficientBalance, err.Error(), nil)
	case errors.Is(err, types.ErrNoLiquidity):
		return NewHTTPError(http.StatusUnprocessableEntity, CodeNoLiquidity, err.Error(), nil)
	case errors.Is(err, types.ErrOrderNotFound):
		return NewHTTPError(http.StatusNotFound, CodeOrderNotFound, err.Error(), nil)
	case errors.Is(err, types.ErrNothingToCancel):
		return NewHTTPError(http.StatusConflict, CodeNothingToCancel, err.Error(), nil)
	case errors.Is(err, types.ErrConsistencyFault):
		return NewHTTPError(http.StatusInternalServerError, CodeConsistencyFault, err.Error(), nil)
	default:
		return ErrInternal("An unexpected error occurred")
	}
}
