package wallet

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/miniwallet/internal/client/api"
	"github.com/dmitrijs2005/miniwallet/internal/client/platform"
	"github.com/dmitrijs2005/miniwallet/internal/client/session"
	"github.com/dmitrijs2005/miniwallet/internal/common"
	"github.com/dmitrijs2005/miniwallet/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

// memStore is an in-memory session.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string][]byte{}
	return nil
}

// writeData wraps v in the backend's success envelope.
func writeData(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

// fixture runs a fake backend and an orchestrator authenticated against it.
// Tests register their endpoint handlers on mux before acting.
type fixture struct {
	mux     *http.ServeMux
	manager *session.Manager
	orc     *Orchestrator
}

const (
	testMint     = "mint-1111111111111111111111111111111"
	testDecimals = uint8(9)
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/exchange", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, api.AuthExchangeResponse{
			Token:     "test-token",
			User:      api.UserInfo{PlatformUserID: 42, Username: "alice"},
			ExpiresAt: time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	log := testLogger()
	client := api.NewClient(server.URL, time.Second, log)
	manager := session.NewManager(client, &platform.StaticSource{Value: "init-data"}, newMemStore(), log)

	manager.Initialize(context.Background())
	if status, msg := manager.Status(); status != session.StatusAuthenticated {
		t.Fatalf("fixture authentication failed: %s %s", status, msg)
	}

	orc := NewOrchestrator(manager, Config{
		Mint:     testMint,
		Decimals: testDecimals,
		Network:  "devnet",
	}, log)
	return &fixture{mux: mux, manager: manager, orc: orc}
}

// onboard registers a single-wallet listing and adopts it.
func (f *fixture) onboard(t *testing.T, address string) {
	t.Helper()
	f.mux.HandleFunc("GET /wallets", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, api.ListWalletsResponse{Addresses: []string{address}})
	})
	found, err := f.orc.DiscoverWallet(context.Background())
	if err != nil || !found {
		t.Fatalf("onboard failed: found=%v err=%v", found, err)
	}
}
