// Package auth holds the shopper's authentication state and the operations
// that move it: restore, login, register, logout and profile updates.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrValidation       = errors.New("validation failed")
)

const MinPasswordLength = 6

type API interface {
	Login(ctx context.Context, email, password string) (*shopclient.AuthResponse, error)
	Register(ctx context.Context, req shopclient.RegisterRequest) (*shopclient.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req shopclient.ProfileUpdate) (*models.User, error)
	SetToken(token string)
	OnUnauthorized(fn func(ctx context.Context))
}

type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Listener observes every state transition. It runs synchronously on the
// goroutine that caused the change, after the session lock is released.
type Listener func(ctx context.Context, prev, next State)

type Session struct {
	api    API
	tokens TokenStore
	now    func() time.Time

	mu        sync.Mutex
	state     State
	listeners []Listener
}

func NewSession(api API, store TokenStore) *Session {
	s := &Session{
		api:    api,
		tokens: store,
		now:    time.Now,
		state:  InitialState(),
	}
	api.OnUnauthorized(s.expire)
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated
}

func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Session) dispatch(ctx context.Context, a Action) {
	s.mu.Lock()
	prev := s.state
	s.state = Reduce(prev, a)
	next := s.state.clone()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, prev, next)
	}
}

// Restore re-establishes the session from the persisted token. Any failure
// leaves the session logged out with the persisted token removed.
func (s *Session) Restore(ctx context.Context) error {
	l := logging.FromContext(ctx).With("component", "auth", "op", "restore")

	tok, err := s.tokens.Load(ctx)
	if err != nil {
		l.Error("load_token_error", "error", err)
		s.dispatch(ctx, LoggedOut{})
		return fmt.Errorf("load token: %w", err)
	}
	if tok == "" {
		s.dispatch(ctx, LoadingSet{Loading: false})
		return nil
	}
	if tokens.Expired(tok, s.now()) {
		l.Info("session_dropped", "reason", "token expired")
		s.forget(ctx)
		return nil
	}

	s.dispatch(ctx, LoadingSet{Loading: true})
	s.api.SetToken(tok)
	user, err := s.api.Me(ctx)
	if err != nil {
		l.Warn("session_dropped", "reason", "token rejected", "error", err)
		s.forget(ctx)
		return fmt.Errorf("restore session: %w", err)
	}

	s.dispatch(ctx, LoginSucceeded{User: *user, Token: tok})
	// Saving again marks the token as used so idle purging keeps it.
	if err := s.tokens.Save(ctx, tok); err != nil {
		l.Warn("touch_token_error", "error", err)
	}
	l.Debug("session_restored", "user_id", user.ID)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, shopclient.Reject(ErrValidation, "Please enter email and password")
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, failure(err, "Login failed")
	}
	s.establish(ctx, res)
	logging.FromContext(ctx).Info("logged_in", "user_id", res.User.ID, "role", res.User.Role)
	return &res.User, nil
}

func (s *Session) Register(ctx context.Context, req shopclient.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case strings.TrimSpace(req.Name) == "" || req.Email == "":
		return nil, shopclient.Reject(ErrValidation, "Name and email are required")
	case len(req.Password) < MinPasswordLength:
		return nil, shopclient.Reject(ErrValidation, "Password must be at least %d characters", MinPasswordLength)
	}

	res, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, failure(err, "Registration failed")
	}
	s.establish(ctx, res)
	logging.FromContext(ctx).Info("registered", "user_id", res.User.ID)
	return &res.User, nil
}

func (s *Session) establish(ctx context.Context, res *shopclient.AuthResponse) {
	if err := s.tokens.Save(ctx, res.Token); err != nil {
		logging.FromContext(ctx).Error("persist_token_error", "component", "auth", "error", err)
	}
	s.api.SetToken(res.Token)
	s.dispatch(ctx, LoginSucceeded{User: res.User, Token: res.Token})
}

// Logout is local: the token is forgotten, the backend is not told.
func (s *Session) Logout(ctx context.Context) {
	s.forget(ctx)
}

func (s *Session) UpdateProfile(ctx context.Context, req shopclient.ProfileUpdate) (*models.User, error) {
	if !s.Authenticated() {
		return nil, shopclient.Reject(ErrNotAuthenticated, "Please login to update your profile")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, shopclient.Reject(ErrValidation, "Name is required")
	}

	user, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		return nil, failure(err, "Profile update failed")
	}
	s.dispatch(ctx, UserUpdated{Patch: *user})
	return s.State().User, nil
}

// expire runs when the backend rejects the token of a live request.
func (s *Session) expire(ctx context.Context) {
	s.mu.Lock()
	active := s.state.Token != ""
	s.mu.Unlock()
	if !active {
		return
	}
	logging.FromContext(ctx).Warn("session_dropped", "component", "auth", "reason", "token rejected")
	s.forget(ctx)
}

func (s *Session) forget(ctx context.Context) {
	s.api.SetToken("")
	if err := s.tokens.Clear(ctx); err != nil {
		logging.FromContext(ctx).Error("clear_token_error", "component", "auth", "error", err)
	}
	s.dispatch(ctx, LoggedOut{})
}

func failure(err error, fallback string) error {
	return &shopclient.Rejection{Msg: shopclient.Message(err, fallback), Err: err}
}
