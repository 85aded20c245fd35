package session

import (
	"context"
	"errors"
	"sync"

	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

// Route tells the UI where to navigate after a session operation.
type Route int

const (
	RouteNone Route = iota
	RouteLanding
	RouteDashboard
)

// msgInitFailed is the fallback shown when page-load session recovery
// fails without a server detail.
const msgInitFailed = "Erro ao carregar perfil"

// msgRefreshFailed is the fallback for a failed profile refresh.
const msgRefreshFailed = "Erro ao atualizar perfil"

// API is the slice of the resource services the session lifecycle needs.
// *client.Client satisfies it.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (*domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
}

// State is a snapshot of the session.
type State struct {
	User          *domain.User
	Token         string
	Authenticated bool
	Loading       bool
	Err           string
}

// Manager drives the authentication lifecycle: initialization on startup,
// login, register, logout and profile refresh. The mutex guards only the
// state snapshot, never a network call: bubbletea renders State() on
// every frame, so fetches run unlocked and the UI stays responsive while
// one is in flight. Each session transition bumps a generation counter;
// an operation whose snapshot generation no longer matches on completion
// was superseded (by a login or logout) and drops its result.
type Manager struct {
	mu    sync.Mutex
	store Store
	api   API
	gen   uint64
	state State
}

// NewManager creates a Manager in the loading state.
func NewManager(store Store, api API) *Manager {
	return &Manager{
		store: store,
		api:   api,
		state: State{Loading: true},
	}
}

// State returns a snapshot of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Initialize runs the startup recovery protocol: read the persisted token,
// decode the user id, fetch the profile. Any failure clears the session
// and routes to the landing screen; an absent token just finishes loading.
func (m *Manager) Initialize(ctx context.Context) Route {
	m.mu.Lock()
	token, ok := m.store.Token()
	if !ok {
		m.setLocked(State{})
		m.mu.Unlock()
		return RouteNone
	}
	userID, err := DecodeUserID(token)
	if err != nil {
		m.setLocked(State{Err: client.Detail(err, msgInitFailed)})
		m.mu.Unlock()
		return RouteLanding
	}
	gen := m.gen
	m.mu.Unlock()

	user, err := m.api.GetProfile(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return RouteNone
	}
	if err != nil {
		m.store.Clear() //nolint:errcheck // unrecoverable credential is discarded
		m.setLocked(State{Err: client.Detail(err, msgInitFailed)})
		return RouteLanding
	}
	if user.ID == "" {
		user.ID = userID
	}
	m.setLocked(State{User: user, Token: token, Authenticated: true})
	return RouteDashboard
}

// Login authenticates with email/password. Any prior session is cleared
// before the attempt so stale and fresh credentials never mix; on failure
// the session rolls back to unauthenticated and the returned error carries
// the server detail (or the generic login fallback).
func (m *Manager) Login(ctx context.Context, email, password string) (Route, error) {
	m.mu.Lock()
	m.store.Clear() //nolint:errcheck // prior credential is discarded either way
	m.setLocked(State{Loading: true})
	gen := m.gen
	m.mu.Unlock()

	token, err := m.api.Login(ctx, email, password)
	if err != nil {
		return m.loginFailed(gen, client.Detail(err, client.MsgLoginFailed))
	}
	userID, err := DecodeUserID(token)
	if err != nil {
		return m.loginFailed(gen, client.Detail(err, client.MsgLoginFailed))
	}
	user, err := m.api.GetProfile(ctx, userID)
	if err != nil {
		return m.loginFailed(gen, client.Detail(err, client.MsgLoginFailed))
	}
	if user.ID == "" {
		user.ID = userID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return RouteNone, nil
	}
	if err := m.store.SetToken(token); err != nil {
		m.setLocked(State{})
		return RouteNone, errors.New(client.MsgLoginFailed)
	}
	m.setLocked(State{User: user, Token: token, Authenticated: true})
	return RouteDashboard, nil
}

// loginFailed rolls the session back to the unauthenticated baseline,
// unless a later transition already replaced it.
func (m *Manager) loginFailed(gen uint64, msg string) (Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == gen {
		m.store.Clear() //nolint:errcheck
		m.setLocked(State{})
	}
	return RouteNone, errors.New(msg)
}

// Register creates an account. It never authenticates the session; the
// user logs in afterwards.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	if _, err := m.api.Register(ctx, email, password); err != nil {
		return errors.New(client.Detail(err, client.MsgRegisterFailed))
	}
	return nil
}

// Logout clears the persisted token and the in-memory session. Safe to
// call with no active session.
func (m *Manager) Logout() Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Clear() //nolint:errcheck // token is gone from memory regardless
	m.setLocked(State{})
	return RouteLanding
}

// RefreshProfile re-fetches the current user's profile. Without a user it
// is a no-op; on failure the error is recorded but the prior user value
// stays in place. The fetch runs unlocked, and a result arriving after a
// login or logout is dropped.
func (m *Manager) RefreshProfile(ctx context.Context) {
	m.mu.Lock()
	if m.state.User == nil {
		m.mu.Unlock()
		return
	}
	userID := m.state.User.ID
	gen := m.gen
	m.mu.Unlock()

	user, err := m.api.GetProfile(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	if err != nil {
		m.state.Err = client.Detail(err, msgRefreshFailed)
		return
	}
	if user.ID == "" {
		user.ID = userID
	}
	m.state.User = user
	m.state.Err = ""
}

// setLocked replaces the session state and supersedes any in-flight
// operation snapshotted under the previous generation. Caller holds the
// mutex.
func (m *Manager) setLocked(s State) {
	m.state = s
	m.gen++
}
