package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"timetrack/pkg/client"
	"timetrack/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	loginFn  func(ctx context.Context, email, password, otp string) (client.LoginResult, error)
	meFn     func(ctx context.Context) (domain.User, error)
	logoutFn func(ctx context.Context) error
	handlers []func()
}

func (f *fakeAPI) Login(ctx context.Context, email, password, otp string) (client.LoginResult, error) {
	return f.loginFn(ctx, email, password, otp)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx)
}

func (f *fakeAPI) Me(ctx context.Context) (domain.User, error) {
	return f.meFn(ctx)
}

func (f *fakeAPI) OnUnauthorized(fn func()) {
	f.handlers = append(f.handlers, fn)
}

type recordingNav struct{ routes []Route }

func (n *recordingNav) Navigate(r Route) { n.routes = append(n.routes, r) }

var employee = domain.User{ID: "u-1", Email: "employee@timetrack.com", Role: domain.RoleEmployee}

func TestSession_LoginStoresTokenAndNavigates(t *testing.T) {
	store := client.NewMemoryTokenStore()
	api := &fakeAPI{
		loginFn: func(_ context.Context, email, password, _ string) (client.LoginResult, error) {
			assert.Equal(t, "employee@timetrack.com", email)
			return client.LoginResult{AccessToken: "tok", TokenType: "bearer", User: employee}, nil
		},
	}
	nav := &recordingNav{}
	s := New(store, api, WithNavigator(nav), WithLogger(zap.NewNop()))

	var states []State
	s.Subscribe(func(st State) { states = append(states, st) })

	u, err := s.Login(context.Background(), "employee@timetrack.com", "employee123")
	require.NoError(t, err)
	assert.Equal(t, employee, u)
	assert.Equal(t, "tok", s.Token())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, []Route{RouteDashboard}, nav.routes)
	require.Len(t, states, 1)
	assert.True(t, states[0].Authenticated)
}

func TestSession_LoginFailureLeavesSignedOut(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(context.Context, string, string, string) (client.LoginResult, error) {
			return client.LoginResult{}, &client.APIError{Status: http.StatusUnauthorized, Message: "Incorrect email or password"}
		},
	}
	s := New(client.NewMemoryTokenStore(), api)

	_, err := s.Login(context.Background(), "x@y.z", "bad")
	assert.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
}

func TestSession_Bootstrap(t *testing.T) {
	t.Run("no token is a no-op", func(t *testing.T) {
		api := &fakeAPI{meFn: func(context.Context) (domain.User, error) {
			t.Fatal("Me must not be called")
			return domain.User{}, nil
		}}
		s := New(client.NewMemoryTokenStore(), api)
		require.NoError(t, s.Bootstrap(context.Background()))
		assert.False(t, s.IsLoading())
	})

	t.Run("resolves user and reports loading", func(t *testing.T) {
		store := client.NewMemoryTokenStore()
		store.SetToken("tok")
		var s *Session
		api := &fakeAPI{meFn: func(context.Context) (domain.User, error) {
			assert.True(t, s.IsLoading())
			return employee, nil
		}}
		s = New(store, api)

		require.NoError(t, s.Bootstrap(context.Background()))
		assert.False(t, s.IsLoading())
		u, ok := s.User()
		assert.True(t, ok)
		assert.Equal(t, "u-1", u.ID)
	})

	t.Run("rejected token is discarded", func(t *testing.T) {
		store := client.NewMemoryTokenStore()
		store.SetToken("stale")
		api := &fakeAPI{meFn: func(context.Context) (domain.User, error) {
			return domain.User{}, client.ErrUnauthorized
		}}
		s := New(store, api)

		assert.ErrorIs(t, s.Bootstrap(context.Background()), client.ErrUnauthorized)
		assert.Empty(t, store.Token())
		assert.False(t, s.IsAuthenticated())
		assert.False(t, s.IsLoading())
	})

	t.Run("transient failure keeps token for a retry", func(t *testing.T) {
		store := client.NewMemoryTokenStore()
		store.SetToken("tok")
		calls := 0
		api := &fakeAPI{meFn: func(context.Context) (domain.User, error) {
			calls++
			if calls == 1 {
				return domain.User{}, errors.New("network down")
			}
			return employee, nil
		}}
		s := New(store, api)

		assert.Error(t, s.Bootstrap(context.Background()))
		assert.Equal(t, "tok", store.Token())
		assert.False(t, s.IsAuthenticated())
		assert.False(t, s.IsLoading())

		require.NoError(t, s.Bootstrap(context.Background()))
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, 2, calls)
	})

	t.Run("routing waits while the token is checked", func(t *testing.T) {
		store := client.NewMemoryTokenStore()
		store.SetToken("tok")
		var s *Session
		var during []Route
		api := &fakeAPI{meFn: func(context.Context) (domain.User, error) {
			during = append(during, s.Resolve(RouteVacation), s.Resolve(RouteLogin))
			return employee, nil
		}}
		s = New(store, api)

		require.NoError(t, s.Bootstrap(context.Background()))
		assert.Equal(t, []Route{RouteLoading, RouteLoading}, during)
		assert.Equal(t, RouteVacation, s.Resolve(RouteVacation))
	})
}

type countingCache struct{ resets int }

func (c *countingCache) Reset() { c.resets++ }

func TestSession_ResetsCacheWhenUserChanges(t *testing.T) {
	store := client.NewMemoryTokenStore()
	api := &fakeAPI{
		loginFn: func(context.Context, string, string, string) (client.LoginResult, error) {
			return client.LoginResult{AccessToken: "tok", User: employee}, nil
		},
	}
	cache := &countingCache{}
	s := New(store, api, WithCache(cache))

	_, err := s.Login(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.resets)

	s.Logout(context.Background())
	assert.Equal(t, 2, cache.resets)

	for _, h := range api.handlers {
		h()
	}
	assert.Equal(t, 3, cache.resets)
}

func TestSession_LogoutIgnoresServerError(t *testing.T) {
	store := client.NewMemoryTokenStore()
	api := &fakeAPI{
		loginFn: func(context.Context, string, string, string) (client.LoginResult, error) {
			return client.LoginResult{AccessToken: "tok", User: employee}, nil
		},
		logoutFn: func(context.Context) error { return errors.New("offline") },
	}
	nav := &recordingNav{}
	s := New(store, api, WithNavigator(nav))
	_, err := s.Login(context.Background(), "a", "b")
	require.NoError(t, err)

	s.Logout(context.Background())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, store.Token())
	assert.Equal(t, []Route{RouteDashboard, RouteLogin}, nav.routes)
}

func TestSession_Resolve(t *testing.T) {
	login := func(role domain.Role) *Session {
		api := &fakeAPI{loginFn: func(context.Context, string, string, string) (client.LoginResult, error) {
			return client.LoginResult{AccessToken: "tok", User: domain.User{ID: "u", Role: role}}, nil
		}}
		s := New(client.NewMemoryTokenStore(), api)
		_, err := s.Login(context.Background(), "a", "b")
		require.NoError(t, err)
		return s
	}

	anon := New(client.NewMemoryTokenStore(), &fakeAPI{})
	assert.Equal(t, RouteLogin, anon.Resolve(RouteDashboard))
	assert.Equal(t, RouteLogin, anon.Resolve(RouteManager))
	assert.Equal(t, RouteLogin, anon.Resolve(RouteLogin))

	emp := login(domain.RoleEmployee)
	assert.Equal(t, RouteDashboard, emp.Resolve(RouteLogin))
	assert.Equal(t, RouteDashboard, emp.Resolve(RouteManager))
	assert.Equal(t, RouteVacation, emp.Resolve(RouteVacation))
	assert.Equal(t, RouteDashboard, emp.Resolve(Route("/nowhere")))
	assert.False(t, emp.CanAccess(RouteManager))

	for _, role := range []domain.Role{domain.RoleManager, domain.RoleAdmin} {
		s := login(role)
		assert.Equal(t, RouteManager, s.Resolve(RouteManager), role)
		assert.True(t, s.CanAccess(RouteManager), role)
	}
}

func TestSession_AnyUnauthorizedResponseTearsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":   true,
				"data": map[string]any{"access_token": "tok", "token_type": "bearer", "user": employee},
			})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":    false,
				"error": map[string]string{"code": "UNAUTHORIZED", "message": "Token expired"},
			})
		}
	}))
	defer srv.Close()

	store := client.NewMemoryTokenStore()
	api := client.New(srv.URL+"/api/v1", store, client.WithHTTPClient(srv.Client()))
	nav := &recordingNav{}
	s := New(store, api, WithNavigator(nav))

	_, err := s.Login(context.Background(), "employee@timetrack.com", "employee123")
	require.NoError(t, err)
	require.True(t, s.IsAuthenticated())

	_, err = api.PendingVacationRequests(context.Background(), 0, 0)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, store.Token())
	assert.Equal(t, RouteLogin, nav.routes[len(nav.routes)-1])
	assert.Equal(t, RouteLogin, s.Resolve(RouteVacation))
}
