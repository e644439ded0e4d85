package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/models"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// CreateOrder accepts a new order, matches it synchronously, and
// responds once the resulting history records are handed to the store
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("Invalid JSON format",
			map[string]interface{}{"error": err.Error()}))
		return
	}
	if httpErr := req.Validate(); httpErr != nil {
		writeError(w, httpErr)
		return
	}

	quote := req.QuoteTokenID
	if quote == "" {
		quote = h.DefaultQuote
	}
	pair := types.NewPair(req.BaseTokenID, quote)

	order, trades, err := h.Engines.Submit(
		req.UserID,
		pair,
		types.Side(req.Side),
		types.OrderType(req.OrderType),
		req.LimitPrice,
		req.Quantity,
	)
	if err != nil {
		writeError(w, models.FromDomain(err))
		return
	}

	// the history rows must be durable before the client hears back
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if flushErr := h.Recorder.Flush(ctx); flushErr != nil {
		logger.L().Warnw("history flush timed out", "order_id", order.ID, "error", flushErr)
	}

	logger.L().Infow("order accepted",
		"order_id", order.ID,
		"user_id", order.UserID,
		"symbol", order.Pair.Symbol(),
		"side", order.Side,
		"type", order.OrderType,
		"trades", len(trades),
	)

	dto := models.NewOrderDTO(order)
	tradeDTOs := make([]models.TradeDTO, len(trades))
	for i, t := range trades {
		tradeDTOs[i] = models.NewTradeDTO(t)
	}

	writeJSON(w, http.StatusCreated, models.CreateOrderResponse{
		BaseResponse: models.OK("Order created successfully"),
		Order:        &dto,
		Trades:       tradeDTOs,
	})
}

// CancelOrder removes a resting order and releases its held funds
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, httpErr := orderIDVar(r)
	if httpErr != nil {
		writeError(w, httpErr)
		return
	}

	order, err := h.Engines.Cancel(orderID)
	if err != nil {
		writeError(w, models.FromDomain(err))
		return
	}

	logger.L().Infow("order cancelled", "order_id", orderID, "user_id", order.UserID)

	dto := models.NewOrderDTO(order)
	writeJSON(w, http.StatusOK, models.CancelOrderResponse{
		BaseResponse: models.OK("Order cancelled successfully"),
		Order:        &dto,
	})
}

// GetOrder returns one order in its current lifecycle state
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, httpErr := orderIDVar(r)
	if httpErr != nil {
		writeError(w, httpErr)
		return
	}

	order, err := h.Orders.Get(orderID)
	if err != nil {
		writeError(w, models.ErrOrderNotFoundError(orderID))
		return
	}

	dto := models.NewOrderDTO(order)
	writeJSON(w, http.StatusOK, models.GetOrderResponse{
		BaseResponse: models.OK(""),
		Order:        &dto,
	})
}

func orderIDVar(r *http.Request) (uint64, *models.HTTPError) {
	raw := mux.Vars(r)["orderId"]
	orderID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, models.ErrBadRequest("Invalid order ID format",
			map[string]interface{}{"provided_value": raw})
	}
	return orderID, nil
}
