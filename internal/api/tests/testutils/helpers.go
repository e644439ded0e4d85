package testutils

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/models"
)

// DecodeJSON decodes a response body into the target struct
func DecodeJSON(t testing.TB, resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target), "Failed to decode response")
}

// NewLimitBuyOrder builds a limit buy request for btc-usdt
func NewLimitBuyOrder(userID string, price, quantity float64) models.CreateOrderRequest {
	return models.CreateOrderRequest{
		UserID:      userID,
		BaseTokenID: "btc",
		Side:        "buy",
		OrderType:   "limit",
		LimitPrice:  price,
		Quantity:    quantity,
	}
}

// NewLimitSellOrder builds a limit sell request for btc-usdt
func NewLimitSellOrder(userID string, price, quantity float64) models.CreateOrderRequest {
	return models.CreateOrderRequest{
		UserID:      userID,
		BaseTokenID: "btc",
		Side:        "sell",
		OrderType:   "limit",
		LimitPrice:  price,
		Quantity:    quantity,
	}
}

// NewMarketBuyOrder builds a market buy request for btc-usdt
func NewMarketBuyOrder(userID string, quantity float64) models.CreateOrderRequest {
	return models.CreateOrderRequest{
		UserID:      userID,
		BaseTokenID: "btc",
		Side:        "buy",
		OrderType:   "market",
		Quantity:    quantity,
	}
}

// NewMarketSellOrder builds a market sell request for btc-usdt
func NewMarketSellOrder(userID string, quantity float64) models.CreateOrderRequest {
	return models.CreateOrderRequest{
		UserID:      userID,
		BaseTokenID: "btc",
		Side:        "sell",
		OrderType:   "market",
		Quantity:    quantity,
	}
}
