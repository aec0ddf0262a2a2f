package server

import (
	"coin-chat/domain"
	"coin-chat/moderation"
	"coin-chat/observability"
	"coin-chat/repositories"
	"coin-chat/runtime"
	"coin-chat/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	url      string
	registry *runtime.Registry
	coins    *repositories.CoinRepository
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	index, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	users := repositories.NewUserRepository(db)
	coins := repositories.NewCoinRepository(db, index, log)
	ledger := repositories.NewLedgerRepository(db, log)
	chats, err := repositories.NewChatRepository(db, log)
	req.NoError(err)
	t.Cleanup(func() { _ = chats.Close() })

	moderator, err := moderation.NewModerator(nil, '*', log)
	req.NoError(err)
	registry := runtime.NewRegistry(log)
	monitoring := observability.NewMonitoringManager(log)
	dispatcher := runtime.NewDispatcher(registry, chats, services.NewPaymentService(users, coins, ledger, log), moderator, monitoring, log)

	handler := NewHandler(
		services.NewAccountService(users),
		services.NewWalletService(users, coins, ledger, log),
		services.NewChatService(chats),
		coins,
		dispatcher,
		monitoring,
		SocketOptions{WriteTimeout: time.Second, ReadLimit: 4096},
		log,
	)
	srv := httptest.NewServer(NewRouter(handler, log))
	t.Cleanup(srv.Close)
	t.Cleanup(registry.Close)

	return testServer{url: srv.URL, registry: registry, coins: coins}
}

func (s testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(s.url + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s testServer) addUser(t *testing.T, username string) int {
	t.Helper()
	body := fmt.Sprintf(`{"email":"%s@example.com","username":"%s","password":"correct-horse","profilePicture":"p.png"}`, username, username)
	resp, err := http.Post(s.url+"/add_user", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func (s testServer) dial(t *testing.T, username string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.url, "http")+"/ws/"+username, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestServer_Index(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	var body map[string]string
	req.Equal(http.StatusOK, s.get(t, "/", &body))
	req.Equal("P2P Chat App", body["message"])
}

func TestServer_Users(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	// Given an empty directory
	var users []map[string]any
	req.Equal(http.StatusOK, s.get(t, "/get_users", &users))
	req.Empty(users)

	// When alice registers twice
	req.Equal(http.StatusOK, s.addUser(t, "alice"))
	req.Equal(http.StatusBadRequest, s.addUser(t, "alice"))

	// Then she is listed once and her password never leaves
	req.Equal(http.StatusOK, s.get(t, "/get_users", &users))
	req.Len(users, 1)
	req.Equal("alice", users[0]["username"])
	req.Equal("alice@example.com", users[0]["email"])
	req.NotContains(users[0], "password")
	req.NotContains(users[0], "password_hash")
}

func TestServer_AddUser_Invalid(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	resp, err := http.Post(s.url+"/add_user", "application/json", strings.NewReader(`{"email":"nope","username":"x","password":"short"}`))
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Wallet(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	req.NoError(s.coins.PutCoin(domain.Coin{ID: 1, Symbol: "btc", Name: "Bitcoin", ImageURL: "img"}))
	req.Equal(http.StatusOK, s.addUser(t, "alice"))

	var status map[string]string
	req.Equal(http.StatusOK, s.get(t, "/buy_coin?username=alice&coin_id=1&quantity=2.5", &status))
	req.Equal("success", status["status"])
	req.Equal("Successfully bought 2.5 of coin 1", status["message"])

	req.Equal(http.StatusOK, s.get(t, "/sell_coin?username=alice&coin_id=1&quantity=1", &status))
	req.Equal("Successfully sold 1 of coin 1", status["message"])

	var detail map[string]string
	req.Equal(http.StatusBadRequest, s.get(t, "/sell_coin?username=alice&coin_id=1&quantity=9", &detail))
	req.Equal("Insufficient balance", detail["detail"])
	req.Equal(http.StatusNotFound, s.get(t, "/buy_coin?username=ghost&coin_id=1&quantity=1", &detail))
	req.Equal("User not found", detail["detail"])
	req.Equal(http.StatusNotFound, s.get(t, "/buy_coin?username=alice&coin_id=2&quantity=1", &detail))
	req.Equal("Coin not found", detail["detail"])
	req.Equal(http.StatusBadRequest, s.get(t, "/buy_coin?username=alice&coin_id=1&quantity=0", &detail))
	req.Equal("Quantity must be positive", detail["detail"])
	req.Equal(http.StatusUnprocessableEntity, s.get(t, "/buy_coin?username=alice&coin_id=one&quantity=1", nil))

	var holdings []struct {
		Email string `json:"email"`
		Coin  struct {
			ID         int    `json:"id"`
			CoinSymbol string `json:"coinSymbol"`
		} `json:"coin"`
		Quantity float64 `json:"quantity"`
	}
	req.Equal(http.StatusOK, s.get(t, "/userholdings/alice", &holdings))
	req.Len(holdings, 1)
	req.Equal("alice@example.com", holdings[0].Email)
	req.Equal("BTCUSDT", holdings[0].Coin.CoinSymbol)
	req.Equal(1.5, holdings[0].Quantity)

	req.Equal(http.StatusNotFound, s.get(t, "/userholdings/ghost", nil))
}

func TestServer_Coins(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	for i := 1; i <= 30; i++ {
		req.NoError(s.coins.PutCoin(domain.Coin{ID: domain.CoinID(i), Symbol: fmt.Sprintf("c%02d", i), Name: fmt.Sprintf("Coin %02d", i)}))
	}
	req.NoError(s.coins.PutCoin(domain.Coin{ID: 31, Symbol: "eth", Name: "Ethereum"}))

	var page struct {
		Coin []struct {
			ID         int    `json:"id"`
			CoinSymbol string `json:"coinSymbol"`
			CoinName   string `json:"coinName"`
		} `json:"coin"`
		TotalPages int `json:"total_pages"`
	}
	req.Equal(http.StatusOK, s.get(t, "/get_coins/1/@All", &page))
	req.Len(page.Coin, 25)
	req.Equal(2, page.TotalPages)
	req.Equal(1, page.Coin[0].ID)

	req.Equal(http.StatusOK, s.get(t, "/get_coins/1/ether", &page))
	req.Len(page.Coin, 1)
	req.Equal("ETHUSDT", page.Coin[0].CoinSymbol)
	req.Equal(1, page.TotalPages)

	req.Equal(http.StatusUnprocessableEntity, s.get(t, "/get_coins/0/@All", nil))

	var coin map[string]any
	req.Equal(http.StatusOK, s.get(t, "/coins/ETHUSDT", &coin))
	req.Equal("Ethereum", coin["coinName"])
	req.Equal(http.StatusOK, s.get(t, "/name_coin/ethereum", &coin))
	req.Equal("ETHUSDT", coin["coinSymbol"])
	req.Equal(http.StatusNotFound, s.get(t, "/coins/doge", nil))
}

func TestServer_ChatAndPayments(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	req.NoError(s.coins.PutCoin(domain.Coin{ID: 1, Symbol: "btc", Name: "Bitcoin", ImageURL: "img"}))
	req.Equal(http.StatusOK, s.addUser(t, "alice"))
	req.Equal(http.StatusOK, s.addUser(t, "bob"))
	req.Equal(http.StatusOK, s.get(t, "/buy_coin?username=alice&coin_id=1&quantity=10", nil))

	// Given alice and bob are online
	alice := s.dial(t, "alice")
	bob := s.dial(t, "bob")
	req.Eventually(func() bool { return s.registry.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	// When alice writes to bob
	req.NoError(alice.WriteJSON(map[string]string{"to": "bob", "message": "hello"}))

	// Then both see the same message
	echo := readFrame(t, alice)
	delivered := readFrame(t, bob)
	req.Equal("hello", echo["message"])
	req.Equal(echo, delivered)

	// When alice pays bob 6 BTC
	req.NoError(alice.WriteJSON(map[string]string{"to": "bob", "message": "@payment,1,6,bob_1"}))
	req.Equal("@payment,img,Bitcoin,btc,6", readFrame(t, alice)["message"])
	req.Equal("@payment,img,Bitcoin,btc,6", readFrame(t, bob)["message"])

	// When she tries to pay 6 more
	req.NoError(alice.WriteJSON(map[string]string{"to": "bob", "message": "@payment,1,6,bob_1"}))
	req.Equal(map[string]any{"error": "Insufficient balance. Available 4"}, readFrame(t, alice))

	// Then the history holds the two delivered messages only
	var history []map[string]any
	req.Equal(http.StatusOK, s.get(t, "/get_chat_history/bob", &history))
	req.Len(history, 2)
	req.Equal("hello", history[0]["message"])

	var health observability.MonitoringStats
	req.Equal(http.StatusOK, s.get(t, "/health", &health))
	req.Equal(uint64(2), health.MessagesRelayed)
	req.Equal(uint64(1), health.PaymentsRefused)
}

func TestServer_MalformedFrame_ClosesSocket(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	alice := s.dial(t, "alice")
	req.Eventually(func() bool { return s.registry.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("not json")))

	// Then the server ends the session and forgets alice
	req.NoError(alice.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err := alice.ReadMessage()
	req.Error(err)
	req.Eventually(func() bool { return s.registry.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
