package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the REST endpoints, the health probe and the chat socket.
func NewRouter(h *Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/", h.Index)
	r.Get("/health", h.Health)

	r.Post("/add_user", h.AddUser)
	r.Get("/get_users", h.GetUsers)

	r.Get("/buy_coin", h.BuyCoin)
	r.Get("/sell_coin", h.SellCoin)
	r.Get("/userholdings/{username}", h.UserHoldings)

	r.Get("/get_coins/{page}/{search}", h.GetCoins)
	r.Get("/coins/{symbol}", h.CoinBySymbol)
	r.Get("/name_coin/{name}", h.CoinByName)

	r.Get("/get_chat_history/{user}", h.ChatHistory)
	r.Get("/ws/{username}", h.ServeSocket)
	return r
}

// requestLogger logs one line per request once the handler returned.
// Socket requests are logged when the connection ends.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
