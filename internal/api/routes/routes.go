package routes

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/obsim/order-book-simulator/internal/api/handlers"
	"github.com/obsim/order-book-simulator/internal/api/middleware"
)

// SetupRoutes configures all API routes with middleware
func SetupRoutes(h *handlers.Handler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/api/v1/health", handlers.HealthHandler)

	// Order endpoints
	mux.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.SubmitOrderHandler(w, r)
		case http.MethodGet:
			h.GetOrdersHandler(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Trader endpoints
	mux.HandleFunc("/api/v1/traders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.RegisterTraderHandler(w, r)
		case http.MethodGet:
			h.GetTradersHandler(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/traders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.GetTraderHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Order book endpoints
	mux.HandleFunc("/api/v1/orderbook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.GetOrderBookHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/orderbook/top", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.GetTopOfBookHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Trade endpoints
	mux.HandleFunc("/api/v1/trades", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.GetTradesHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Liquidity metrics
	mux.HandleFunc("/api/v1/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.GetMetricsHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Live trade stream
	mux.HandleFunc("/ws/trades", h.TradeStreamHandler)

	// Apply middleware (order matters: Recovery -> CORS -> Logging -> Handler)
	handler := middleware.Recovery(log)(mux)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(log)(handler)

	return handler
}
