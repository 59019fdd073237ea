// Package session owns the signed-in user and bearer token for the lifetime
// of one login, and decides which route may be shown.
package session

import (
	"context"
	"errors"
	"sync"

	"timetrack/pkg/client"
	"timetrack/pkg/domain"

	"go.uber.org/zap"
)

// API is the part of the client the session drives.
type API interface {
	Login(ctx context.Context, email, password, otpCode string) (client.LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (domain.User, error)
	OnUnauthorized(fn func())
}

type Navigator interface {
	Navigate(route Route)
}

// Resetter drops state cached on behalf of the signed-in user.
type Resetter interface {
	Reset()
}

type NavigatorFunc func(route Route)

func (f NavigatorFunc) Navigate(route Route) { f(route) }

// State is what subscribers observe.
type State struct {
	User          *domain.User
	IsLoading     bool
	Authenticated bool
}

type Session struct {
	store client.TokenStore
	api   API
	nav   Navigator
	cache Resetter

	mu      sync.RWMutex
	user    *domain.User
	loading bool
	subs    map[int]func(State)
	nextSub int

	logger *zap.Logger
}

type Option func(*Session)

func WithNavigator(n Navigator) Option {
	return func(s *Session) { s.nav = n }
}

// WithCache resets c whenever the signed-in user changes.
func WithCache(c Resetter) Option {
	return func(s *Session) { s.cache = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l.Named("session")
		}
	}
}

// New wires the session to api so that any 401 ends it.
func New(store client.TokenStore, api API, opts ...Option) *Session {
	s := &Session{
		store:  store,
		api:    api,
		subs:   make(map[int]func(State)),
		logger: zap.L().Named("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	api.OnUnauthorized(s.teardown)
	return s
}

// Bootstrap resolves the user behind a stored token. IsLoading is true
// while it runs. A token the server rejects is discarded; any other failure
// keeps it so a later Bootstrap can retry.
func (s *Session) Bootstrap(ctx context.Context) error {
	if s.store.Token() == "" {
		return nil
	}

	s.setLoading(true)
	u, err := s.api.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.store.Clear()
		} else {
			s.logger.Warn("session bootstrap failed", zap.Error(err))
		}
		s.mu.Lock()
		s.user = nil
		s.loading = false
		s.mu.Unlock()
		s.publish()
		return err
	}

	s.mu.Lock()
	s.user = &u
	s.loading = false
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (domain.User, error) {
	return s.LoginWithOTP(ctx, email, password, "")
}

// LoginWithOTP is Login for accounts with two-factor enabled.
func (s *Session) LoginWithOTP(ctx context.Context, email, password, otpCode string) (domain.User, error) {
	res, err := s.api.Login(ctx, email, password, otpCode)
	if err != nil {
		return domain.User{}, err
	}
	s.store.SetToken(res.AccessToken)

	u := res.User
	if u.ID == "" {
		if u, err = s.api.Me(ctx); err != nil {
			s.store.Clear()
			return domain.User{}, err
		}
	}

	s.resetCache()
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.logger.Info("signed in", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	s.publish()
	s.navigate(RouteDashboard)
	return u, nil
}

// Logout ends the session locally even if the server call fails.
func (s *Session) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Debug("server logout failed", zap.Error(err))
	}
	s.teardown()
}

func (s *Session) teardown() {
	s.store.Clear()
	s.resetCache()
	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.mu.Unlock()
	s.publish()
	s.navigate(RouteLogin)
}

func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Session) Token() string {
	return s.store.Token()
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.store.Token() != ""
}

func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{IsLoading: s.loading, Authenticated: s.user != nil && s.store.Token() != ""}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Subscribe calls fn after every change. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.publish()
}

func (s *Session) publish() {
	st := s.State()
	s.mu.RLock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(st)
	}
}

func (s *Session) resetCache() {
	if s.cache != nil {
		s.cache.Reset()
	}
}

func (s *Session) navigate(r Route) {
	if s.nav != nil {
		s.nav.Navigate(r)
	}
}
