package timeentry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"timetrack/internal/timeentry"
	timeentryerrors "timetrack/internal/timeentry/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTimeEntryService struct {
	clockInFn  func(ctx context.Context, userID string, req timeentry.ClockInRequest) (timeentry.TimeEntryResponse, error)
	clockOutFn func(ctx context.Context, userID string, req timeentry.ClockOutRequest) (timeentry.TimeEntryResponse, error)
	entriesFn  func(ctx context.Context, userID string, skip, limit int) ([]timeentry.TimeEntryResponse, error)
	activeFn   func(ctx context.Context, userID string) (timeentry.TimeEntryResponse, error)
	exportFn   func(ctx context.Context, from, to string) (timeentry.Timesheet, error)
}

func (f *fakeTimeEntryService) ClockIn(ctx context.Context, userID string, req timeentry.ClockInRequest) (timeentry.TimeEntryResponse, error) {
	return f.clockInFn(ctx, userID, req)
}

func (f *fakeTimeEntryService) ClockOut(ctx context.Context, userID string, req timeentry.ClockOutRequest) (timeentry.TimeEntryResponse, error) {
	return f.clockOutFn(ctx, userID, req)
}

func (f *fakeTimeEntryService) GetMyEntries(ctx context.Context, userID string, skip, limit int) ([]timeentry.TimeEntryResponse, error) {
	return f.entriesFn(ctx, userID, skip, limit)
}

func (f *fakeTimeEntryService) GetMyActive(ctx context.Context, userID string) (timeentry.TimeEntryResponse, error) {
	return f.activeFn(ctx, userID)
}

func (f *fakeTimeEntryService) GetActiveEmployees(ctx context.Context) ([]timeentry.TimeEntryResponse, error) {
	return nil, nil
}

func (f *fakeTimeEntryService) UpdateNotes(ctx context.Context, id string, req timeentry.UpdateTimeEntryRequest) (timeentry.TimeEntryResponse, error) {
	return timeentry.TimeEntryResponse{ID: id, Notes: req.Notes}, nil
}

func (f *fakeTimeEntryService) ExportTimesheet(ctx context.Context, from, to string) (timeentry.Timesheet, error) {
	return f.exportFn(ctx, from, to)
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTimeEntryRouter(svc timeentry.Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := timeentry.NewHandler(svc, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id_validated", userID)
		c.Next()
	})
	r.POST("/time-entries/clock-in", h.ClockIn)
	r.POST("/time-entries/clock-out", h.ClockOut)
	r.GET("/time-entries/my-entries", h.MyEntries)
	r.GET("/time-entries/my-active", h.MyActive)
	r.GET("/time-entries/export", h.Export)
	r.PUT("/time-entries/:id", h.Update)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestTimeEntryHandler_ClockIn(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		var gotUser string
		svc := &fakeTimeEntryService{
			clockInFn: func(ctx context.Context, userID string, req timeentry.ClockInRequest) (timeentry.TimeEntryResponse, error) {
				gotUser = userID
				return timeentry.TimeEntryResponse{ID: "e1", IsActive: true}, nil
			},
		}
		r := newTimeEntryRouter(svc, "u1")

		w := doJSON(r, http.MethodPost, "/time-entries/clock-in",
			`{"location_id":"6f1c1c8e-7a2b-4c3d-9e0f-1a2b3c4d5e6f","latitude":0,"longitude":0}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "u1", gotUser)
		var env apiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		r := newTimeEntryRouter(&fakeTimeEntryService{}, "u1")

		w := doJSON(r, http.MethodPost, "/time-entries/clock-in",
			`{"location_id":"6f1c1c8e-7a2b-4c3d-9e0f-1a2b3c4d5e6f"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("outside geofence", func(t *testing.T) {
		svc := &fakeTimeEntryService{
			clockInFn: func(ctx context.Context, userID string, req timeentry.ClockInRequest) (timeentry.TimeEntryResponse, error) {
				return timeentry.TimeEntryResponse{}, timeentryerrors.OutsideGeofence(250)
			},
		}
		r := newTimeEntryRouter(svc, "u1")

		w := doJSON(r, http.MethodPost, "/time-entries/clock-in",
			`{"location_id":"6f1c1c8e-7a2b-4c3d-9e0f-1a2b3c4d5e6f","latitude":1,"longitude":1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env apiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "OUTSIDE_GEOFENCE", env.Error.Code)
		assert.Equal(t, "You are 250m away from the work area", env.Error.Message)
	})

	t.Run("already clocked in", func(t *testing.T) {
		svc := &fakeTimeEntryService{
			clockInFn: func(ctx context.Context, userID string, req timeentry.ClockInRequest) (timeentry.TimeEntryResponse, error) {
				return timeentry.TimeEntryResponse{}, timeentryerrors.ErrAlreadyClockedIn
			},
		}
		r := newTimeEntryRouter(svc, "u1")

		w := doJSON(r, http.MethodPost, "/time-entries/clock-in",
			`{"location_id":"6f1c1c8e-7a2b-4c3d-9e0f-1a2b3c4d5e6f","latitude":1,"longitude":1}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestTimeEntryHandler_ClockOut_NotClockedIn(t *testing.T) {
	svc := &fakeTimeEntryService{
		clockOutFn: func(ctx context.Context, userID string, req timeentry.ClockOutRequest) (timeentry.TimeEntryResponse, error) {
			return timeentry.TimeEntryResponse{}, timeentryerrors.ErrNotClockedIn
		},
	}
	r := newTimeEntryRouter(svc, "u1")

	w := doJSON(r, http.MethodPost, "/time-entries/clock-out", `{"latitude":1,"longitude":1}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_CLOCKED_IN")
}

func TestTimeEntryHandler_MyEntries_Paging(t *testing.T) {
	var gotSkip, gotLimit int
	svc := &fakeTimeEntryService{
		entriesFn: func(ctx context.Context, userID string, skip, limit int) ([]timeentry.TimeEntryResponse, error) {
			gotSkip, gotLimit = skip, limit
			return []timeentry.TimeEntryResponse{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	r := newTimeEntryRouter(svc, "u1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/time-entries/my-entries?skip=10&limit=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, gotSkip)
	assert.Equal(t, 2, gotLimit)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data []timeentry.TimeEntryResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data, 2)
}

func TestTimeEntryHandler_MyActive_None(t *testing.T) {
	svc := &fakeTimeEntryService{
		activeFn: func(ctx context.Context, userID string) (timeentry.TimeEntryResponse, error) {
			return timeentry.TimeEntryResponse{}, timeentryerrors.ErrNoActiveEntry
		},
	}
	r := newTimeEntryRouter(svc, "u1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/time-entries/my-active", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimeEntryHandler_UpdateNotes(t *testing.T) {
	r := newTimeEntryRouter(&fakeTimeEntryService{}, "admin")

	w := doJSON(r, http.MethodPut, "/time-entries/e1", `{"notes":"fixed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fixed")
}

func TestTimeEntryHandler_Export(t *testing.T) {
	t.Run("attachment", func(t *testing.T) {
		svc := &fakeTimeEntryService{
			exportFn: func(ctx context.Context, from, to string) (timeentry.Timesheet, error) {
				return timeentry.Timesheet{Filename: "timesheet_" + from + "_" + to + ".xlsx", Content: []byte("PK")}, nil
			},
		}
		r := newTimeEntryRouter(svc, "m1")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/time-entries/export?from=2024-03-01&to=2024-03-07", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="timesheet_2024-03-01_2024-03-07.xlsx"`, w.Header().Get("Content-Disposition"))
		assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
		assert.Equal(t, "PK", w.Body.String())
	})

	t.Run("bad range", func(t *testing.T) {
		svc := &fakeTimeEntryService{
			exportFn: func(ctx context.Context, from, to string) (timeentry.Timesheet, error) {
				return timeentry.Timesheet{}, timeentryerrors.ErrInvalidDateRange
			},
		}
		r := newTimeEntryRouter(svc, "m1")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/time-entries/export?from=x&to=y", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
