// Package session implements the Session Gate: it owns the signed-in admin
// session, persists it in the local store and decides whether the front-ends
// show the login screen or the dashboard.
//
// The Gate is the single writer of the persisted session. Readers use State,
// Session or Subscribe; all methods are safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/client/repositories/adminusers"
	"github.com/dmitrijs2005/opsdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/cryptox"
	"github.com/dmitrijs2005/opsdash/internal/logging"
)

// State is the authentication tri-state.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is the signed-in administrator.
type Session struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func fromAdmin(a models.AdminUser) Session {
	return Session{ID: a.ID, Email: a.Email, CreatedAt: a.CreatedAt, LastLogin: a.LastLogin}
}

// Admin returns the session as an admin row without credentials.
func (s Session) Admin() models.AdminUser {
	return models.AdminUser{ID: s.ID, Email: s.Email, CreatedAt: s.CreatedAt, LastLogin: s.LastLogin}
}

// Listener is called after every state change.
type Listener func(State, *Session)

// Options configure token signing.
type Options struct {
	Secret []byte
	// TTL bounds the lifetime of a persisted session; zero means no expiry.
	TTL time.Duration
}

type Gate struct {
	admins adminusers.Repository
	store  metadata.Repository
	opts   Options
	log    logging.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     State
	session   *Session
	listeners map[int]Listener
	nextID    int
}

// NewGate returns a gate in StateLoading; call Load to resolve it.
func NewGate(admins adminusers.Repository, store metadata.Repository, opts Options, log logging.Logger) *Gate {
	return &Gate{
		admins:    admins,
		store:     store,
		opts:      opts,
		log:       log.With("component", "session"),
		now:       time.Now,
		state:     StateLoading,
		listeners: make(map[int]Listener),
	}
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Session returns a copy of the current session when authenticated.
func (g *Gate) Session() (Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateAuthenticated || g.session == nil {
		return Session{}, false
	}
	return *g.session, true
}

// Subscribe registers fn for state changes. The returned func unregisters it.
func (g *Gate) Subscribe(fn Listener) (cancel func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

func (g *Gate) set(state State, s *Session) {
	g.mu.Lock()
	g.state = state
	g.session = s
	listeners := make([]Listener, 0, len(g.listeners))
	for _, l := range g.listeners {
		listeners = append(listeners, l)
	}
	g.mu.Unlock()

	var snapshot *Session
	if s != nil {
		c := *s
		snapshot = &c
	}
	for _, l := range listeners {
		l(state, snapshot)
	}
}

func (g *Gate) snapshot() (State, *Session) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state, g.session
}

// Load restores the persisted session. A missing, invalid or no longer
// matching session ends in StateUnauthenticated without an error; the stale
// token is deleted.
func (g *Gate) Load(ctx context.Context) State {
	g.set(StateLoading, nil)

	item, err := g.store.Get(ctx, metadata.KeyAdminSession)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			g.log.Debug(ctx, "no persisted session")
		} else {
			g.log.Error(ctx, "failed to read persisted session", "error", err)
		}
		g.set(StateUnauthenticated, nil)
		return StateUnauthenticated
	}

	s, err := g.Verify(ctx, string(item.Value))
	if err != nil {
		g.log.Info(ctx, "persisted session rejected", "error", err)
		g.forget(ctx)
		g.set(StateUnauthenticated, nil)
		return StateUnauthenticated
	}

	g.log.Info(ctx, "session restored", "admin", s.Email)
	g.set(StateAuthenticated, &s)
	return StateAuthenticated
}

// Verify checks a session token and re-reads the account it names. It
// returns an error wrapping common.ErrSessionInvalid or
// common.ErrSessionNotFound when the token must be discarded, and a
// *common.QueryError when the account could not be read.
func (g *Gate) Verify(ctx context.Context, token string) (Session, error) {
	id, email, err := ParseToken(token, g.opts.Secret, g.now())
	if err != nil {
		return Session{}, err
	}
	admin, err := g.admins.GetByIDAndEmail(ctx, id, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: account %s no longer matches", common.ErrSessionNotFound, id)
		}
		return Session{}, err
	}
	return fromAdmin(admin), nil
}

func (g *Gate) forget(ctx context.Context) {
	if err := g.store.Delete(ctx, metadata.KeyAdminSession); err != nil {
		g.log.Error(ctx, "failed to delete persisted session", "error", err)
	}
}

// SignIn checks the credentials against admin_users. On success the session
// is persisted and the gate becomes authenticated. On failure the previous
// state is restored and nothing is persisted; a credential mismatch returns
// common.ErrInvalidCredentials and a remote failure a *common.QueryError.
func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	prevState, prevSession := g.snapshot()
	g.set(StateLoading, nil)

	s, err := g.signIn(ctx, email, password)
	if err != nil {
		g.log.Warn(ctx, "sign in failed", "email", email, "error", err)
		g.set(prevState, prevSession)
		return err
	}

	g.log.Info(ctx, "signed in", "admin", s.Email)
	g.set(StateAuthenticated, &s)
	return nil
}

func (g *Gate) signIn(ctx context.Context, email, password string) (Session, error) {
	s, token, err := g.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if err := g.store.Set(ctx, metadata.KeyAdminSession, []byte(token)); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	return s, nil
}

// Authenticate checks the credentials, records the login time and returns a
// signed session token without touching the gate state or the local store.
// The web front-end hands the token to its browser clients.
func (g *Gate) Authenticate(ctx context.Context, email, password string) (Session, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, "", common.ErrInvalidCredentials
	}

	admin, err := g.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return Session{}, "", common.ErrInvalidCredentials
		}
		return Session{}, "", err
	}
	if !cryptox.VerifyPassword(admin.Password, []byte(password)) {
		return Session{}, "", common.ErrInvalidCredentials
	}

	now := g.now().UTC()
	if err := g.admins.TouchLastLogin(ctx, admin.ID, now); err != nil {
		g.log.Warn(ctx, "failed to update last login", "admin", admin.ID, "error", err)
	} else {
		admin.LastLogin = &now
	}

	s := fromAdmin(admin)
	token, err := GenerateToken(s, g.opts.Secret, g.opts.TTL, now)
	if err != nil {
		return Session{}, "", err
	}
	return s, token, nil
}

// SignOut deletes the persisted session and moves to StateUnauthenticated.
func (g *Gate) SignOut(ctx context.Context) error {
	if err := g.store.Delete(ctx, metadata.KeyAdminSession); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	g.log.Info(ctx, "signed out")
	g.set(StateUnauthenticated, nil)
	return nil
}
