package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/models"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/ledger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/marketdata"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/matching"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/recorder"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// Handler carries the collaborators shared by all endpoint handlers
type Handler struct {
	Engines  *matching.EngineSet
	Ledger   *ledger.Ledger
	Market   *marketdata.Publisher
	Orders   storage.OrderStore
	Events   storage.EventStore
	Recorder *recorder.Recorder

	// DefaultQuote completes a pair when a request names only a base token
	DefaultQuote string

	DefaultPageSize  int
	MaxPageSize      int
	RecentTradeLimit int
	MaxDepthLevels   int

	Version   string
	StartedAt time.Time
}

// resolvePair turns a token query value into a trading pair: either a
// bare base token ("btc") paired with the default quote, or a full
// symbol ("btc-usdt")
func (h *Handler) resolvePair(token string) (types.Pair, *models.HTTPError) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return types.Pair{}, models.ErrBadRequest("token query parameter is required",
			map[string]interface{}{"field": "token"})
	}

	if base, quote, ok := strings.Cut(token, "-"); ok {
		if base == "" || quote == "" {
			return types.Pair{}, models.ErrBadRequest("malformed pair symbol",
				map[string]interface{}{"provided_value": token})
		}
		return types.NewPair(base, quote), nil
	}
	return types.NewPair(token, h.DefaultQuote), nil
}

// pageWindow parses and clamps page/per_page query parameters
func (h *Handler) pageWindow(r *http.Request) (page, perPage int) {
	page = 1
	perPage = h.DefaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perPage = n
		}
	}
	if perPage > h.MaxPageSize {
		perPage = h.MaxPageSize
	}
	return page, perPage
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, httpErr *models.HTTPError) {
	logger.L().Warnw("request failed",
		"error_code", httpErr.Error.Code,
		"status", httpErr.StatusCode,
	)

	writeJSON(w, httpErr.StatusCode, models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   httpErr.Error.Message,
		Error:     &httpErr.Error,
	})
}
