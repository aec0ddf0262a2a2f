package server

import (
	"coin-chat/auth"
	"coin-chat/domain"
	"coin-chat/observability"
	"coin-chat/repositories"
	"coin-chat/runtime"
	"coin-chat/services"
	"coin-chat/sink"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// SocketOptions tunes every upgraded connection.
type SocketOptions struct {
	WriteTimeout time.Duration
	ReadLimit    int64
	AllowOrigin  func(r *http.Request) bool
}

type Handler struct {
	accounts   services.IAccountService
	wallets    services.IWalletService
	chats      services.IChatService
	coins      repositories.ICoinRepository
	dispatcher *runtime.Dispatcher
	monitoring *observability.MonitoringManager
	upgrader   websocket.Upgrader
	socket     SocketOptions
	log        *slog.Logger
}

func NewHandler(
	accounts services.IAccountService,
	wallets services.IWalletService,
	chats services.IChatService,
	coins repositories.ICoinRepository,
	dispatcher *runtime.Dispatcher,
	monitoring *observability.MonitoringManager,
	socket SocketOptions,
	log *slog.Logger,
) *Handler {
	return &Handler{
		accounts:   accounts,
		wallets:    wallets,
		chats:      chats,
		coins:      coins,
		dispatcher: dispatcher,
		monitoring: monitoring,
		upgrader:   websocket.Upgrader{CheckOrigin: socket.AllowOrigin},
		socket:     socket,
		log:        log,
	}
}

func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "P2P Chat App"})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.monitoring.GetLatest())
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}
	if err := h.accounts.Register(req); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("User added", "email", req.Email, "user", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"id": req.Email})
}

func (h *Handler) GetUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := h.accounts.ListUsers()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(users, func(u domain.User, _ int) userResponse {
		return toUserResponse(u)
	}))
}

func (h *Handler) BuyCoin(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, "bought", h.wallets.Buy)
}

func (h *Handler) SellCoin(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, "sold", h.wallets.Sell)
}

type tradeFunc func(username string, coinID domain.CoinID, quantity decimal.Decimal) (domain.Coin, error)

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, verb string, fn tradeFunc) {
	query := r.URL.Query()
	username := query.Get("username")
	coinID, err := strconv.Atoi(query.Get("coin_id"))
	if username == "" || err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "username and integer coin_id are required")
		return
	}
	quantity, err := decimal.NewFromString(query.Get("quantity"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "quantity must be a number")
		return
	}

	if _, err = fn(username, domain.CoinID(coinID), quantity); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Successfully %s %s of coin %d", verb, quantity, coinID),
	})
}

func (h *Handler) UserHoldings(w http.ResponseWriter, r *http.Request) {
	lines, err := h.wallets.Holdings(chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(lines, func(l domain.WalletLine, _ int) holdingResponse {
		return toHoldingResponse(l)
	}))
}

func (h *Handler) GetCoins(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "page must be a positive integer")
		return
	}
	search := chi.URLParam(r, "search")
	coins, totalPages, err := h.coins.Search(r.Context(), search, page)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Debug("Coins page fetched", "page", page, "total_pages", totalPages, "search", search)
	writeJSON(w, http.StatusOK, coinPageResponse{
		Coin: lo.Map(coins, func(c domain.Coin, _ int) coinResponse {
			return toCoinResponse(c)
		}),
		TotalPages: totalPages,
	})
}

func (h *Handler) CoinBySymbol(w http.ResponseWriter, r *http.Request) {
	h.writeCoin(w, h.coins.GetBySymbol, chi.URLParam(r, "symbol"))
}

func (h *Handler) CoinByName(w http.ResponseWriter, r *http.Request) {
	h.writeCoin(w, h.coins.GetByName, chi.URLParam(r, "name"))
}

func (h *Handler) writeCoin(w http.ResponseWriter, lookup func(string) (domain.Coin, error), key string) {
	coin, err := lookup(key)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCoinResponse(coin))
}

func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chats.History(chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(messages, func(m domain.Message, _ int) domain.OutboundMessage {
		return m.ToOutbound()
	}))
}

// ServeSocket upgrades the request and runs the receive loop of username
// until the connection ends. The socket is closed on return.
func (h *Handler) ServeSocket(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "user", username, "error", err)
		return
	}
	socket := sink.NewWebsocketSink(conn, h.socket.WriteTimeout, h.socket.ReadLimit)
	defer func() {
		_ = socket.Close()
	}()

	if err = h.dispatcher.Serve(r.Context(), username, socket); err != nil {
		h.log.Warn("Connection ended with error", "user", username, "error", err)
	}
}
