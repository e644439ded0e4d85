package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/models"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
)

// GetHolding returns a user's balance in one token. Unknown holdings
// read as zero rather than 404: every user implicitly holds zero of
// every token.
func (h *Handler) GetHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := strings.TrimSpace(vars["userId"])
	tokenID := strings.ToLower(strings.TrimSpace(vars["tokenId"]))

	if userID == "" || tokenID == "" {
		writeError(w, models.ErrBadRequest("userId and tokenId are required", nil))
		return
	}

	balance := h.Ledger.Get(userID, tokenID)
	writeJSON(w, http.StatusOK, models.HoldingsResponse{
		BaseResponse: models.OK(""),
		Holdings:     []models.HoldingDTO{models.NewHoldingDTO(balance)},
	})
}

// ListHoldings returns all of a user's balances
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["userId"])
	if userID == "" {
		writeError(w, models.ErrBadRequest("userId cannot be empty", nil))
		return
	}

	balances := h.Ledger.GetByUser(userID)
	dtos := make([]models.HoldingDTO, len(balances))
	for i, b := range balances {
		dtos[i] = models.NewHoldingDTO(b)
	}

	writeJSON(w, http.StatusOK, models.HoldingsResponse{
		BaseResponse: models.OK(""),
		Holdings:     dtos,
	})
}

// Deposit credits a user's holdings in one token
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("Invalid JSON format",
			map[string]interface{}{"error": err.Error()}))
		return
	}
	if httpErr := req.Validate(); httpErr != nil {
		writeError(w, httpErr)
		return
	}

	tokenID := strings.ToLower(req.TokenID)
	if err := h.Ledger.Deposit(req.UserID, tokenID, req.Amount); err != nil {
		writeError(w, models.ErrBadRequest(err.Error(),
			map[string]interface{}{"field": "amount"}))
		return
	}

	logger.L().Infow("deposit credited",
		"user_id", req.UserID, "token_id", tokenID, "amount", req.Amount)

	balance := h.Ledger.Get(req.UserID, tokenID)
	writeJSON(w, http.StatusOK, models.DepositResponse{
		BaseResponse: models.OK("Deposit credited"),
		Holding:      models.NewHoldingDTO(balance),
	})
}
