package handlers

import (
	"net/http"
	"strconv"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/models"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// SortedOrders lists a pair's resting orders, bids and asks each best
// price first with FIFO order inside a level
func (h *Handler) SortedOrders(w http.ResponseWriter, r *http.Request) {
	pair, httpErr := h.resolvePair(r.URL.Query().Get("token"))
	if httpErr != nil {
		writeError(w, httpErr)
		return
	}

	engine, ok := h.Engines.Lookup(pair.Symbol())
	if !ok {
		// a pair nobody has traded has an empty book, not an error
		writeJSON(w, http.StatusOK, models.SortedOrdersResponse{
			BaseResponse: models.OK(""),
			Symbol:       pair.Symbol(),
			Bids:         []models.OrderDTO{},
			Asks:         []models.OrderDTO{},
		})
		return
	}

	bids, asks := engine.RestingOrders()
	writeJSON(w, http.StatusOK, models.SortedOrdersResponse{
		BaseResponse: models.OK(""),
		Symbol:       pair.Symbol(),
		Bids:         ordersToDTOs(bids),
		Asks:         ordersToDTOs(asks),
	})
}

// RecentOrders returns the pair's trade tape, newest first, capped at
// the configured tape size
func (h *Handler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	pair, httpErr := h.resolvePair(r.URL.Query().Get("token"))
	if httpErr != nil {
		writeError(w, httpErr)
		return
	}

	limit := h.RecentTradeLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	trades := h.Market.RecentTrades(pair.Symbol(), limit)
	dtos := make([]models.TradeDTO, len(trades))
	for i := range trades {
		dtos[i] = models.NewTradeDTO(&trades[i])
	}

	writeJSON(w, http.StatusOK, models.RecentTradesResponse{
		BaseResponse: models.OK(""),
		Symbol:       pair.Symbol(),
		Trades:       dtos,
		Count:        len(dtos),
	})
}

// Depth returns the pair's aggregated book snapshot
func (h *Handler) Depth(w http.ResponseWriter, r *http.Request) {
	pair, httpErr := h.resolvePair(r.URL.Query().Get("token"))
	if httpErr != nil {
		writeError(w, httpErr)
		return
	}

	levels := 0
	if v := r.URL.Query().Get("levels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, models.ErrBadRequest("levels must be a positive integer",
				map[string]interface{}{"provided_value": v}))
			return
		}
		levels = n
		if levels > h.MaxDepthLevels {
			levels = h.MaxDepthLevels
		}
	}

	engine, ok := h.Engines.Lookup(pair.Symbol())
	if !ok {
		writeJSON(w, http.StatusOK, models.DepthResponse{
			BaseResponse: models.OK(""),
			Depth: types.DepthSnapshot{
				Symbol: pair.Symbol(),
				Bids:   []types.PriceLevel{},
				Asks:   []types.PriceLevel{},
			},
		})
		return
	}

	snap := engine.Depth(levels)
	snap.LastPrice = h.Market.LastPrice(pair.Symbol())

	writeJSON(w, http.StatusOK, models.DepthResponse{
		BaseResponse: models.OK(""),
		Depth:        snap,
	})
}

func ordersToDTOs(orders []types.Order) []models.OrderDTO {
	dtos := make([]models.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = models.NewOrderDTO(&orders[i])
	}
	return dtos
}
