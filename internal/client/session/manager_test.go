package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/miniwallet/internal/client/api"
	"github.com/dmitrijs2005/miniwallet/internal/client/platform"
	"github.com/dmitrijs2005/miniwallet/internal/common"
	"github.com/dmitrijs2005/miniwallet/internal/logging"
)

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

// memStore is an in-memory Store fake.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte

	SetErr error
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
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
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

func (s *memStore) seedSession(t *testing.T, sess Session) {
	t.Helper()
	raw, err := json.Marshal(sess)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), sessionKey, raw))
}

// exchangeServer is a fake backend. Every successful exchange issues a new
// token "token-<n>".
type exchangeServer struct {
	*httptest.Server

	exchangeCalls atomic.Int64
	exchangeDelay time.Duration
	exchangeFail  atomic.Bool

	resourceCalls atomic.Int64
	// resource decides the /thing response from the presented bearer token.
	resource func(w http.ResponseWriter, r *http.Request)
}

func newExchangeServer(t *testing.T) *exchangeServer {
	t.Helper()
	s := &exchangeServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/exchange", func(w http.ResponseWriter, r *http.Request) {
		n := s.exchangeCalls.Add(1)
		if s.exchangeDelay > 0 {
			time.Sleep(s.exchangeDelay)
		}
		if s.exchangeFail.Load() {
			http.Error(w, "exchange rejected", http.StatusForbidden)
			return
		}
		resp := api.Envelope[api.AuthExchangeResponse]{Data: api.AuthExchangeResponse{
			Token:     "token-" + itoa(n),
			User:      api.UserInfo{PlatformUserID: 123, Username: "alice"},
			ExpiresAt: time.Now().Add(time.Hour).Format(time.RFC3339),
		}}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/thing", func(w http.ResponseWriter, r *http.Request) {
		s.resourceCalls.Add(1)
		if s.resource != nil {
			s.resource(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func newTestManager(t *testing.T, server *exchangeServer, store Store, creds platform.CredentialSource) *Manager {
	t.Helper()
	if creds == nil {
		creds = &platform.StaticSource{Value: "init-data"}
	}
	client := api.NewClient(server.URL, 5*time.Second, testLogger())
	return NewManager(client, creds, store, testLogger())
}

func thingRequest() api.Request {
	return api.NewRequest(http.MethodGet, "/thing")
}

// ---- TESTS ----

func TestAuthenticate_SingleFlight(t *testing.T) {
	server := newExchangeServer(t)
	server.exchangeDelay = 100 * time.Millisecond
	m := newTestManager(t, server, newMemStore(), nil)

	const workers = 8
	var wg sync.WaitGroup
	var inProgress atomic.Int64
	var succeeded atomic.Int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Authenticate(context.Background())
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, common.ErrAuthInProgress):
				inProgress.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, server.exchangeCalls.Load(), "exactly one exchange must be issued")
	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, workers-1, inProgress.Load())

	status, _ := m.Status()
	assert.Equal(t, StatusAuthenticated, status)
}

func TestInitialize_AdoptsPersistedSession(t *testing.T) {
	server := newExchangeServer(t)
	store := newMemStore()
	store.seedSession(t, Session{
		Token:     "persisted-token",
		User:      User{PlatformUserID: 7},
		ExpiresAt: time.Now().Add(time.Hour),
	})
	m := newTestManager(t, server, store, nil)

	m.Initialize(context.Background())

	status, _ := m.Status()
	assert.Equal(t, StatusAuthenticated, status)
	require.NotNil(t, m.Current())
	assert.Equal(t, "persisted-token", m.Current().Token)
	assert.EqualValues(t, 0, server.exchangeCalls.Load(), "no exchange when a valid session is persisted")
}

func TestInitialize_ExpiredPersistedSessionNeverAdopted(t *testing.T) {
	server := newExchangeServer(t)
	store := newMemStore()
	store.seedSession(t, Session{
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	// No credential source: the only acceptable outcome is unauthenticated.
	m := newTestManager(t, server, store, &platform.StaticSource{})

	m.Initialize(context.Background())

	status, _ := m.Status()
	assert.Equal(t, StatusUnauthenticated, status)
	assert.Nil(t, m.Current())
}

func TestInitialize_ExpiredPersistedSessionTriggersExchange(t *testing.T) {
	server := newExchangeServer(t)
	store := newMemStore()
	store.seedSession(t, Session{
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	m := newTestManager(t, server, store, nil)

	m.Initialize(context.Background())

	status, _ := m.Status()
	assert.Equal(t, StatusAuthenticated, status)
	require.NotNil(t, m.Current())
	assert.NotEqual(t, "stale-token", m.Current().Token)
	assert.EqualValues(t, 1, server.exchangeCalls.Load())
}

func TestInitialize_CorruptPersistedDataFailsClosed(t *testing.T) {
	server := newExchangeServer(t)
	store := newMemStore()
	require.NoError(t, store.Set(context.Background(), sessionKey, []byte("{not json")))
	m := newTestManager(t, server, store, &platform.StaticSource{})

	m.Initialize(context.Background())

	status, _ := m.Status()
	assert.Equal(t, StatusUnauthenticated, status)
	_, err := store.Get(context.Background(), sessionKey)
	assert.ErrorIs(t, err, common.ErrNotFound, "corrupt data must be cleared")
}

func TestInitialize_RunsExactlyOnce(t *testing.T) {
	server := newExchangeServer(t)
	m := newTestManager(t, server, newMemStore(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Initialize(context.Background())
		}()
	}
	wg.Wait()
	m.Initialize(context.Background())

	assert.EqualValues(t, 1, server.exchangeCalls.Load(), "bootstrap must run once per process")
}

func TestInitialize_NoCredentialSource(t *testing.T) {
	server := newExchangeServer(t)
	m := newTestManager(t, server, newMemStore(), &platform.StaticSource{})

	m.Initialize(context.Background())

	status, _ := m.Status()
	assert.Equal(t, StatusUnauthenticated, status)
}

func TestFetch_RetriesExactlyOnceOn401(t *testing.T) {
	server := newExchangeServer(t)
	server.resource = func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			http.Error(w, "token rejected", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"value":"fresh"}}`))
	}
	store := newMemStore()
	store.seedSession(t, Session{
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	m := newTestManager(t, server, store, nil)
	m.Initialize(context.Background())

	body, err := m.Fetch(context.Background(), thingRequest())

	require.NoError(t, err)
	assert.Contains(t, string(body), "fresh")
	assert.EqualValues(t, 1, server.exchangeCalls.Load(), "exactly one refresh")
	assert.EqualValues(t, 2, server.resourceCalls.Load(), "exactly one retry")
}

func TestFetch_SecondUnauthorizedIsFinal(t *testing.T) {
	server := newExchangeServer(t)
	server.resource = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "still rejected", http.StatusUnauthorized)
	}
	store := newMemStore()
	store.seedSession(t, Session{
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	m := newTestManager(t, server, store, nil)
	m.Initialize(context.Background())

	_, err := m.Fetch(context.Background(), thingRequest())

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.EqualValues(t, 1, server.exchangeCalls.Load(), "refresh happens once, not twice")
	assert.EqualValues(t, 2, server.resourceCalls.Load(), "no third request")
}

func TestFetch_FailedRefreshIsFinal(t *testing.T) {
	server := newExchangeServer(t)
	server.resource = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token rejected", http.StatusUnauthorized)
	}
	store := newMemStore()
	store.seedSession(t, Session{
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	m := newTestManager(t, server, store, nil)
	m.Initialize(context.Background())
	server.exchangeFail.Store(true)

	_, err := m.Fetch(context.Background(), thingRequest())

	require.ErrorIs(t, err, common.ErrAuthExchangeFailed)
	assert.EqualValues(t, 1, server.resourceCalls.Load(), "no retry after a failed refresh")
}

func TestFetch_NoTokenAnywhere(t *testing.T) {
	server := newExchangeServer(t)
	m := newTestManager(t, server, newMemStore(), &platform.StaticSource{})

	_, err := m.Fetch(context.Background(), thingRequest())

	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.EqualValues(t, 0, server.resourceCalls.Load())
}

func TestFetch_ProactiveRefreshFailureFallsBackToCurrentToken(t *testing.T) {
	server := newExchangeServer(t)
	server.exchangeFail.Store(true)
	server.resource = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer near-expiry-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"value":"still works"}}`))
	}
	store := newMemStore()
	// Expires inside the refresh window, so Fetch tries to refresh first.
	store.seedSession(t, Session{
		Token:     "near-expiry-token",
		ExpiresAt: time.Now().Add(time.Minute),
	})
	m := newTestManager(t, server, store, nil)

	body, err := m.Fetch(context.Background(), thingRequest())

	require.NoError(t, err, "the call is not aborted because the proactive refresh failed")
	assert.Contains(t, string(body), "still works")
	assert.EqualValues(t, 1, server.exchangeCalls.Load())
}

func TestFetch_StorageFallbackReChecksExpiry(t *testing.T) {
	server := newExchangeServer(t)
	store := newMemStore()
	store.seedSession(t, Session{
		Token:     "expired-in-store",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	// No in-memory session (Initialize not called) and no credential source.
	m := newTestManager(t, server, store, &platform.StaticSource{})

	_, err := m.Fetch(context.Background(), thingRequest())

	assert.ErrorIs(t, err, common.ErrNotAuthenticated,
		"an expired stored token must never be attached to a request")
	assert.EqualValues(t, 0, server.resourceCalls.Load())
}

func TestLogout_ClearsEverything(t *testing.T) {
	server := newExchangeServer(t)
	store := newMemStore()
	m := newTestManager(t, server, store, nil)
	require.NoError(t, m.Authenticate(context.Background()))

	require.NoError(t, m.Logout(context.Background()))

	status, _ := m.Status()
	assert.Equal(t, StatusUnauthenticated, status)
	assert.Nil(t, m.Current())
	_, err := store.Get(context.Background(), sessionKey)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAuthenticate_PersistFailureStillAdoptsInMemory(t *testing.T) {
	server := newExchangeServer(t)
	store := newMemStore()
	store.SetErr = assert.AnError
	m := newTestManager(t, server, store, nil)

	require.NoError(t, m.Authenticate(context.Background()))

	status, _ := m.Status()
	assert.Equal(t, StatusAuthenticated, status)
	require.NotNil(t, m.Current())
}

func TestIsExpiringSoon(t *testing.T) {
	server := newExchangeServer(t)
	m := newTestManager(t, server, newMemStore(), nil)

	// No session at all.
	assert.True(t, m.IsExpiringSoon())

	m.mu.Lock()
	m.session = &Session{Token: "opaque", ExpiresAt: time.Now().Add(time.Hour)}
	m.mu.Unlock()
	assert.False(t, m.IsExpiringSoon())

	m.mu.Lock()
	m.session = &Session{Token: "opaque", ExpiresAt: time.Now().Add(time.Minute)}
	m.mu.Unlock()
	assert.True(t, m.IsExpiringSoon())

	// Opaque token with no expiry information: treated as expiring.
	m.mu.Lock()
	m.session = &Session{Token: "opaque"}
	m.mu.Unlock()
	assert.True(t, m.IsExpiringSoon())
}
