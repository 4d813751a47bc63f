package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/notify"
	"github.com/greenhouse-iot/sensordash/internal/request"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

func newTestAPI(t *testing.T, h http.Handler) (*Client, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	rec := notify.NewRecorder()
	rc, err := request.New(srv.URL,
		request.WithRetryDelay(time.Millisecond),
		request.WithNotifier(rec),
		request.WithLogger(logger.Noop()),
	)
	require.NoError(t, err)
	return New(rc), rec
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestListSensors(t *testing.T) {
	c, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathSensors, r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get(request.CacheBustParam))
		respond(`{"success":true,"data":[{"id":1,"name":"T1","type":"Temperature","current_value":"23.5"},{"id":2}]}`)(w, r)
	}))

	raws, err := c.ListSensors(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "T1", raws[0].Name)
	assert.Equal(t, "23.5", raws[0].CurrentValue.String())
	assert.Equal(t, sensor.DefaultName, sensor.Normalize(raws[1]).Name)
}

func TestListSensors_InvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing data", `{"success":true}`},
		{"null data", `{"success":true,"data":null}`},
		{"wrong shape", `{"success":true,"data":{"id":1}}`},
		{"failed envelope", `{"success":false,"error":"db down"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestAPI(t, respond(tt.body))
			_, err := c.ListSensors(context.Background())
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.Empty(t, rec.All())
		})
	}
}

func TestGetSensor_NotFound(t *testing.T) {
	c, rec := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sensors/42", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"error":"sensor not found"}`)
	}))

	_, err := c.GetSensor(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, request.IsNotFound(err))
	assert.Equal(t, 1, rec.Count(notify.KindError))
}

func TestWriteCalls(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path+" "+string(body))
		mu.Unlock()
		assert.Empty(t, r.URL.Query().Get(request.CacheBustParam))
		respond(`{"success":true,"message":"ok","id":9}`)(w, r)
	}))
	ctx := context.Background()

	res, err := c.CreateSensor(ctx, SensorInput{Name: "Bench", Type: sensor.TypeLight})
	require.NoError(t, err)
	assert.Equal(t, Result{Message: "ok", ID: 9}, res)

	_, err = c.UpdateSensor(ctx, 9, SensorInput{Location: "Row 2"})
	require.NoError(t, err)

	_, err = c.DeleteSensor(ctx, 9)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, `POST /api/sensors {"name":"Bench","type":"Light"}`, seen[0])
	assert.Equal(t, `PUT /api/sensors/9 {"location":"Row 2"}`, seen[1])
	assert.Equal(t, `DELETE /api/sensors/9 `, seen[2])
}

func TestHistory(t *testing.T) {
	c, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathHistory, r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		respond(`{"success":true,"data":{"temperature":[{"time":"2024-05-01 10:00:00","value":21}],"humidity":[],"light":[],"soil_moisture":[]}}`)(w, r)
	}))

	snap, err := c.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []history.Sample{{Time: "2024-05-01 10:00:00", Value: 21}}, snap[sensor.Temperature])
}

func TestHistory_NotFoundIsQuiet(t *testing.T) {
	var calls atomic.Int32
	c, rec := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))

	_, err := c.History(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, request.IsNotFound(err))
	assert.Empty(t, rec.All())
	assert.Equal(t, int32(request.DefaultRetries+1), calls.Load())
}

func TestLogin(t *testing.T) {
	var calls atomic.Int32
	c, rec := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"success":false,"message":"Invalid password"}`)
			return
		}
		respond(`{"success":true,"message":"Login successful"}`)(w, r)
	}))
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "admin123"))
	assert.ErrorIs(t, c.Login(ctx, "wrong"), ErrInvalidPassword)
	assert.Equal(t, int32(2), calls.Load(), "a rejected password is not retried")
	assert.Empty(t, rec.All())
}
