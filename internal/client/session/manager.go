package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/miniwallet/internal/client/api"
	"github.com/dmitrijs2005/miniwallet/internal/client/platform"
	"github.com/dmitrijs2005/miniwallet/internal/common"
	"github.com/dmitrijs2005/miniwallet/internal/logging"
)

// Manager produces a currently-valid bearer credential for every outbound
// call, transparently refreshing it. At most one authentication exchange is
// ever in flight; concurrent attempts observe common.ErrAuthInProgress
// instead of starting a second exchange.
//
// Manager exclusively owns the Session and its Status; consumers only reach
// the backend through Fetch.
type Manager struct {
	api   *api.Client
	creds platform.CredentialSource
	store Store
	log   logging.Logger
	now   func() time.Time

	initOnce sync.Once

	// authMu is the single-flight guard around the identity exchange.
	// Acquired with TryLock only; blocking here would queue exchanges.
	authMu sync.Mutex

	mu      sync.Mutex
	status  Status
	message string
	session *Session
}

// NewManager wires a session manager to its collaborators.
func NewManager(apiClient *api.Client, creds platform.CredentialSource, store Store, log logging.Logger) *Manager {
	return &Manager{
		api:    apiClient,
		creds:  creds,
		store:  store,
		log:    log.With("component", "session"),
		now:    time.Now,
		status: StatusLoading,
	}
}

// Status returns the current lifecycle status and its human-readable message.
func (m *Manager) Status() (Status, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.message
}

// Current returns a copy of the adopted session, or nil when absent.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

func (m *Manager) setStatus(status Status, message string) {
	m.mu.Lock()
	m.status = status
	m.message = message
	m.mu.Unlock()
}

// Initialize bootstraps the session exactly once per process lifetime, even
// under duplicate invocation. It adopts an unexpired persisted session,
// otherwise performs the exchange inline when a credential source exists,
// otherwise settles on StatusUnauthenticated.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() { m.initialize(ctx) })
}

func (m *Manager) initialize(ctx context.Context) {
	m.setStatus(StatusLoading, "")

	if persisted := m.loadPersisted(ctx); persisted != nil {
		m.mu.Lock()
		m.session = persisted
		m.status = StatusAuthenticated
		m.message = ""
		m.mu.Unlock()
		m.log.Info(ctx, "adopted persisted session", "user_id", persisted.User.PlatformUserID)
		return
	}

	if !m.creds.Available() {
		m.setStatus(StatusUnauthenticated, "")
		return
	}

	if err := m.Authenticate(ctx); err != nil {
		m.log.Warn(ctx, "initial authentication failed", "error", err)
	}
}

// loadPersisted reads the stored session, discarding it when expired and
// clearing the store when the blob does not parse. It never surfaces an
// expired session.
func (m *Manager) loadPersisted(ctx context.Context) *Session {
	raw, err := m.store.Get(ctx, sessionKey)
	if err != nil || len(raw) == 0 {
		return nil
	}
	persisted, err := decodeSession(raw)
	if err != nil {
		// Fail closed: unreadable data is cleared, not trusted.
		m.log.Warn(ctx, "persisted session unreadable, clearing store", "error", err)
		_ = m.store.Clear(ctx)
		return nil
	}
	if persisted.Token == "" || persisted.Expired(m.now()) {
		return nil
	}
	return persisted
}

// Authenticate performs the platform identity exchange and persists the
// result. It fails fast with common.ErrAuthInProgress when another exchange
// is already running.
func (m *Manager) Authenticate(ctx context.Context) error {
	if !m.authMu.TryLock() {
		return common.ErrAuthInProgress
	}
	defer m.authMu.Unlock()

	m.setStatus(StatusLoading, "")

	assertion, err := m.creds.Assertion(ctx)
	if err != nil {
		m.setStatus(StatusError, "platform credential unavailable")
		return fmt.Errorf("%w: %w", common.ErrAuthExchangeFailed, err)
	}

	req := api.NewRequest(http.MethodPost, "/auth/exchange").
		WithBody(api.AuthExchangeRequest{Assertion: assertion})
	body, err := m.api.Do(ctx, "", req)
	if err != nil {
		m.setStatus(StatusError, api.CleanMessage(err))
		return fmt.Errorf("%w: %w", common.ErrAuthExchangeFailed, err)
	}

	resp, err := api.DecodeData[api.AuthExchangeResponse](body)
	if err != nil || resp.Token == "" {
		m.setStatus(StatusError, "malformed exchange response")
		if err == nil {
			err = errors.New("empty token")
		}
		return fmt.Errorf("%w: %w", common.ErrAuthExchangeFailed, err)
	}

	adopted := &Session{
		Token: resp.Token,
		User: User{
			PlatformUserID: resp.User.PlatformUserID,
			Username:       resp.User.Username,
			FirstName:      resp.User.FirstName,
			LastName:       resp.User.LastName,
			LanguageCode:   resp.User.LanguageCode,
		},
	}
	if resp.ExpiresAt != "" {
		expiresAt, parseErr := time.Parse(time.RFC3339, resp.ExpiresAt)
		if parseErr != nil {
			m.log.Warn(ctx, "unparseable expiresAt in exchange response", "value", resp.ExpiresAt)
		} else {
			adopted.ExpiresAt = expiresAt
		}
	}

	if encoded, encErr := encodeSession(adopted); encErr == nil {
		if saveErr := m.store.Set(ctx, sessionKey, encoded); saveErr != nil {
			// The in-memory session still works for this process.
			m.log.Warn(ctx, "failed to persist session", "error", saveErr)
		}
	}

	m.mu.Lock()
	m.session = adopted
	m.status = StatusAuthenticated
	m.message = ""
	m.mu.Unlock()

	m.log.Info(ctx, "authenticated", "user_id", adopted.User.PlatformUserID,
		"expires_at", adopted.Expiry())
	return nil
}

// IsExpiringSoon reports whether the current session expires within the
// refresh window, or has no known expiry at all.
func (m *Manager) IsExpiringSoon() bool {
	current := m.Current()
	if current == nil {
		return true
	}
	exp := current.Expiry()
	if exp.IsZero() {
		return true
	}
	return exp.Sub(m.now()) < common.TokenRefreshWindow
}

// resolveToken prefers the in-memory session but falls back to persisted
// storage, since another instance sharing the store may hold a fresher
// token. Expiry is re-checked at read time on the storage path.
func (m *Manager) resolveToken(ctx context.Context) (string, error) {
	if current := m.Current(); current != nil && current.Token != "" {
		return current.Token, nil
	}
	raw, err := m.store.Get(ctx, sessionKey)
	if err != nil || len(raw) == 0 {
		return "", common.ErrNotAuthenticated
	}
	persisted, err := decodeSession(raw)
	if err != nil || persisted.Token == "" || persisted.Expired(m.now()) {
		return "", common.ErrNotAuthenticated
	}
	return persisted.Token, nil
}

// Fetch is the sole sanctioned way to call the backend with credentials
// attached. It refreshes proactively when the session is close to expiry,
// and on a 401 response performs exactly one refresh and one retry before
// surfacing a final error.
func (m *Manager) Fetch(ctx context.Context, req api.Request) ([]byte, error) {
	if m.IsExpiringSoon() && m.creds.Available() {
		if err := m.Authenticate(ctx); err != nil && !errors.Is(err, common.ErrAuthInProgress) {
			// Fall through with whatever token is on hand; the call is not
			// aborted solely because the proactive refresh failed.
			m.log.Warn(ctx, "proactive refresh failed, using current token", "error", err)
		}
	}

	token, err := m.resolveToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := m.api.Do(ctx, token, req)
	if err == nil {
		return body, nil
	}
	if !api.IsUnauthorized(err) || !m.creds.Available() {
		return nil, err
	}

	// Bounded retry: one refresh, one replay of the original request.
	authErr := m.Authenticate(ctx)
	if errors.Is(authErr, common.ErrAuthInProgress) {
		// Another exchange is running; this call does not queue behind it.
		return nil, err
	}
	if authErr != nil {
		return nil, authErr
	}

	token, err = m.resolveToken(ctx)
	if err != nil {
		return nil, err
	}
	return m.api.Do(ctx, token, req)
}

// Logout clears persisted and in-memory state.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Delete(ctx, sessionKey); err != nil {
		return err
	}
	m.mu.Lock()
	m.session = nil
	m.status = StatusUnauthenticated
	m.message = ""
	m.mu.Unlock()
	m.log.Info(ctx, "logged out")
	return nil
}

// FetchAs performs Fetch and unwraps the enveloped response into T.
func FetchAs[T any](ctx context.Context, m *Manager, req api.Request) (T, error) {
	body, err := m.Fetch(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return api.DecodeData[T](body)
}
