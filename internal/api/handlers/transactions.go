package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/models"
)

// UserTransactions returns a page of the user's transaction history,
// newest first
func (h *Handler) UserTransactions(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["userId"])
	if userID == "" {
		writeError(w, models.ErrBadRequest("userId cannot be empty",
			map[string]interface{}{"field": "userId"}))
		return
	}

	page, perPage := h.pageWindow(r)

	events, total, err := h.Events.ByUser(userID, page, perPage)
	if err != nil {
		writeError(w, models.ErrInternal("Failed to load transaction history"))
		return
	}

	dtos := make([]models.TransactionDTO, len(events))
	for i, e := range events {
		dtos[i] = models.NewTransactionDTO(e)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	writeJSON(w, http.StatusOK, models.TransactionsResponse{
		BaseResponse: models.OK(""),
		Transactions: dtos,
		Pagination: models.Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}
