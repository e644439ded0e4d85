package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/handlers"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/middleware"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/marketdata"
)

// Setup configures all API routes with middleware
func Setup(h *handlers.Handler, hub *marketdata.Hub, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Order lifecycle
	api.HandleFunc("/order/create_order", h.CreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/order/cancel_order/{orderId:[0-9]+}", h.CancelOrder).Methods(http.MethodDelete)
	api.HandleFunc("/order/{orderId:[0-9]+}", h.GetOrder).Methods(http.MethodGet)

	// Dashboard market data
	api.HandleFunc("/orderview/sortedorders", h.SortedOrders).Methods(http.MethodGet)
	api.HandleFunc("/orderview/recentorders", h.RecentOrders).Methods(http.MethodGet)
	api.HandleFunc("/orderview/depth", h.Depth).Methods(http.MethodGet)

	// Transaction history
	api.HandleFunc("/transaction/crypto/user/{userId}", h.UserTransactions).Methods(http.MethodGet)

	// Holdings
	api.HandleFunc("/crypto/holdings/deposit", h.Deposit).Methods(http.MethodPost)
	api.HandleFunc("/crypto/holdings/{userId}/{tokenId}", h.GetHolding).Methods(http.MethodGet)
	api.HandleFunc("/crypto/holdings/{userId}", h.ListHoldings).Methods(http.MethodGet)

	// Live market data stream
	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			marketdata.ServeWS(hub, w, req)
		})
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	// order matters: Recovery -> CORS -> Logging -> Router
	var handler http.Handler = r
	handler = middleware.Logging(handler)
	handler = corsHandler.Handler(handler)
	handler = middleware.Recovery(handler)

	return handler
}
