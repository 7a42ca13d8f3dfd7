package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/device-tycoon/internal/engine"
	"github.com/talgya/device-tycoon/internal/entropy"
	"github.com/talgya/device-tycoon/internal/game"
	"github.com/talgya/device-tycoon/internal/persistence"
)

const adminKey = "test-key"

func newTestServer(t *testing.T) (*Server, *persistence.DB) {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sim := engine.NewGame(engine.Options{Difficulty: game.DifficultyNormal, Seed: 8, Random: entropy.NewFixed(0)})
	eng := engine.NewEngine(sim)
	eng.NewTicker = engine.NewManualTicker().Factory()
	t.Cleanup(func() { eng.Stop() })
	return New(eng, db, adminKey), db
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if method == http.MethodPost {
		req.Header.Set("Authorization", "Bearer "+adminKey)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndStatus(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), st["day"])
	assert.Equal(t, "1970-01-01", st["iso_date"])
	assert.Equal(t, false, st["running"])
	assert.Equal(t, float64(100000), st["cash"])
}

func TestAdminAuth(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulation/step", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, s.Eng.Sim.Day())

	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToggleAndStep(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/simulation/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["running"])
	assert.True(t, s.Eng.Running())

	rec = do(t, s, http.MethodPost, "/api/v1/simulation/toggle", nil)
	assert.Equal(t, false, decode[map[string]any](t, rec)["running"])

	rec = do(t, s, http.MethodPost, "/api/v1/simulation/step", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[engine.TickReport](t, rec).Day)
}

func TestStores(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/stores", map[string]string{"country": "Japan"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/v1/stores", map[string]string{"country": "Japan"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/stores", map[string]string{"country": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/stores", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Len(t, body["available"], 14)
}

func TestProducts(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/products/quote", map[string]any{"name": "Q", "price": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	q := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1_000_000+50_000), q["total_cost"])

	rec = do(t, s, http.MethodPost, "/api/v1/products", map[string]any{"name": "Q", "price": 500})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Pocket", "category": "smartphones", "price": 300, "production_volume": 500, "marketing_budget": 0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[game.ReleasedProduct](t, rec)
	assert.Equal(t, int64(500), p.Sales)

	rec = do(t, s, http.MethodPost, "/api/v1/products", map[string]any{"name": " ", "price": 300})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/products", map[string]any{"name": "Wraparound", "price": 1, "production_volume": int64(1) << 57})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, s.Eng.Sim.Products(), 1)

	rec = do(t, s, http.MethodGet, "/api/v1/products/best?year=1970", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["awards"], 1)

	rec = do(t, s, http.MethodGet, "/api/v1/products/best?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvestAndResearch(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/investments", map[string]any{"type": "acquisition"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/investments", map[string]any{"type": "marketing", "amount": 1000})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/investments", map[string]any{"type": "bribes", "amount": 1000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/investments", nil)
	assert.Len(t, decode[[]game.Investment](t, rec), 1)

	rec = do(t, s, http.MethodPost, "/api/v1/research", map[string]any{"tech_id": "t1", "cost": 1000})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/v1/research", map[string]any{"tech_id": "t1", "cost": 1000})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInterventions(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/interventions", map[string]any{"kind": "cash", "amount": 5000, "reason": "grant"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(105000), s.Eng.Sim.Cash())

	rec = do(t, s, http.MethodPost, "/api/v1/interventions", map[string]any{"kind": "market-shift", "target": "nobody", "delta": 1, "reason": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/interventions", map[string]any{"kind": "weather"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/feed?limit=1", nil)
	feed := decode[[]map[string]any](t, rec)
	require.Len(t, feed, 1)
	assert.Equal(t, "market-shift", feed[0]["type"])
}

func TestCalendar(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/calendar/790", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "1972-02-29", body["iso"])
	assert.Equal(t, "Feb 29, 1972", body["text"])

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/calendar/0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/calendar/x", nil).Code)
}

func TestSaveListLoad(t *testing.T) {
	s, _ := newTestServer(t)
	for i := 0; i < 3; i++ {
		do(t, s, http.MethodPost, "/api/v1/simulation/step", nil)
	}

	rec := do(t, s, http.MethodPost, "/api/v1/saves", map[string]string{"id": "slot-1", "name": "Before"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 4, decode[persistence.SlotInfo](t, rec).Day)

	do(t, s, http.MethodPost, "/api/v1/simulation/step", nil)
	do(t, s, http.MethodPost, "/api/v1/simulation/toggle", nil)
	require.True(t, s.Eng.Running())

	rec = do(t, s, http.MethodPost, "/api/v1/saves/slot-1/load", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, s.Eng.Running())
	assert.Equal(t, 4, s.Eng.Sim.Day())

	rec = do(t, s, http.MethodGet, "/api/v1/saves", nil)
	slots := decode[[]persistence.SlotInfo](t, rec)
	require.Len(t, slots, 1)
	assert.Equal(t, "Before", slots[0].Name)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/v1/saves/missing/load", nil).Code)

	// Empty body picks a fresh slot id.
	rec = do(t, s, http.MethodPost, "/api/v1/saves", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[persistence.SlotInfo](t, rec).ID)
}

func TestSaveRateLimited(t *testing.T) {
	s, _ := newTestServer(t)
	s.saveLimiter.maxRate = 2

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, s, http.MethodPost, "/api/v1/saves", map[string]string{"id": "r"}).Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestOpenWhenNoAdminKey(t *testing.T) {
	s, _ := newTestServer(t)
	s.AdminKey = ""
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulation/step", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
