package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"timetrack/internal/app"
	"timetrack/internal/config"
	"timetrack/internal/messaging/kafka"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestApp(t *testing.T) (*gin.Engine, *app.Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "app.db")
	cfg.Database.MaxRetries = 1
	cfg.Database.AutoMigrate = true
	cfg.Redis.Addr = mr.Addr()
	cfg.Auth.JWTSecret = "test-secret-test-secret-test-secret"
	cfg.Metrics.Enabled = true
	cfg.Seed.OnBoot = false

	r, deps, err := app.BuildApp(context.Background(), &cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	_, err = app.Seeder(deps).WithCost(bcrypt.MinCost).Run(context.Background())
	require.NoError(t, err)

	return r, deps
}

func call(t *testing.T, r http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	code, env := call(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, code)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r, _ := newTestApp(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "timetrack_")
}

func TestRouter_LoginAndMe(t *testing.T) {
	r, _ := newTestApp(t)

	code, env := call(t, r, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.OK)

	token := login(t, r, "admin@timetrack.com", "admin123")
	code, env = call(t, r, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, code)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "admin@timetrack.com", me.Email)
	assert.Equal(t, "admin", me.Role)
}

func TestRouter_ClockAndVacationFlow(t *testing.T) {
	r, deps := newTestApp(t)
	employee := login(t, r, "employee@timetrack.com", "employee123")
	manager := login(t, r, "manager@timetrack.com", "manager123")

	code, env := call(t, r, http.MethodGet, "/api/v1/locations", employee, nil)
	require.Equal(t, http.StatusOK, code)
	var locations []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &locations))
	require.Len(t, locations, 1)

	lat, lng := 40.7128, -74.0060
	code, env = call(t, r, http.MethodPost, "/api/v1/time-entries/clock-in", employee, map[string]any{
		"location_id": locations[0].ID,
		"latitude":    lat,
		"longitude":   lng,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = call(t, r, http.MethodPost, "/api/v1/time-entries/clock-in", employee, map[string]any{
		"location_id": locations[0].ID,
		"latitude":    lat,
		"longitude":   lng,
	})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_CLOCKED_IN", env.Error.Code)

	code, _ = call(t, r, http.MethodGet, "/api/v1/time-entries/active-employees", employee, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, r, http.MethodPost, "/api/v1/time-entries/clock-out", employee, map[string]any{
		"latitude":  lat,
		"longitude": lng,
	})
	require.Equal(t, http.StatusOK, code)

	start := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	end := time.Now().UTC().AddDate(0, 0, 9).Format("2006-01-02")
	code, env = call(t, r, http.MethodPost, "/api/v1/vacation-requests", employee, map[string]any{
		"start_date": start,
		"end_date":   end,
		"reason":     "family trip",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created struct {
		ID           string `json:"id"`
		Status       string `json:"status"`
		DurationDays int    `json:"duration_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 3, created.DurationDays)

	code, _ = call(t, r, http.MethodPut, "/api/v1/vacation-requests/"+created.ID+"/approve", employee, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = call(t, r, http.MethodPut, "/api/v1/vacation-requests/"+created.ID+"/approve", manager, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var approved struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	assert.Equal(t, "approved", approved.Status)

	var outbox []kafka.OutboxEvent
	require.NoError(t, deps.DB.Order("created_at ASC").Find(&outbox).Error)
	require.Len(t, outbox, 3)
	assert.Equal(t, "vacation.status_changed", outbox[2].EventType)
	for _, ev := range outbox {
		assert.Equal(t, kafka.OutboxStatusPending, ev.Status)
	}
}
