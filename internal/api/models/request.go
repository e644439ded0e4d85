package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateOrderRequest is the canonical order payload: the pair is named
// by base and quote token, the direction by side. QuoteTokenID may be
// omitted, in which case the server's default quote token applies.
type CreateOrderRequest struct {
	UserID       string  `json:"userId" validate:"required"`
	BaseTokenID  string  `json:"baseTokenId" validate:"required,alphanum"`
	QuoteTokenID string  `json:"quoteTokenId" validate:"omitempty,alphanum"`
	Side         string  `json:"side" validate:"required,oneof=buy sell"`
	OrderType    string  `json:"orderType" validate:"required,oneof=limit market"`
	LimitPrice   float64 `json:"limitPrice" validate:"omitempty,gt=0"`
	Quantity     float64 `json:"quantity" validate:"required,gt=0"`
}

// Validate applies struct tags plus the cross-field price rules the
// tags cannot express
func (r *CreateOrderRequest) Validate() *HTTPError {
	r.Side = strings.ToLower(strings.TrimSpace(r.Side))
	r.OrderType = strings.ToLower(strings.TrimSpace(r.OrderType))

	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}

	if r.OrderType == "limit" && r.LimitPrice <= 0 {
		return NewHTTPError(422, CodeMissingPrice,
			"limitPrice is required for limit orders", nil)
	}
	if r.OrderType == "market" && r.LimitPrice != 0 {
		return NewHTTPError(400, CodeInvalidPrice,
			"limitPrice must be omitted for market orders",
			map[string]interface{}{"provided_value": r.LimitPrice})
	}
	return nil
}

// DepositRequest credits a user's holdings in one token
type DepositRequest struct {
	UserID  string  `json:"userId" validate:"required"`
	TokenID string  `json:"tokenId" validate:"required,alphanum"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

// Validate applies the struct tags
func (r *DepositRequest) Validate() *HTTPError {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) *HTTPError {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return ErrBadRequest(
			fmt.Sprintf("field %s failed validation on %s", first.Field(), first.Tag()),
			map[string]interface{}{
				"field": first.Field(),
				"rule":  first.Tag(),
				"value": first.Value(),
			})
	}
	return ErrBadRequest("invalid request payload", nil)
}
