package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rebalance-sim/internal/api/cache"
	"rebalance-sim/internal/api/models"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	settings  *settings.FileStore
	scenarios *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	db, err := store.OpenSQLite(filepath.Join(dir, "scenarios.db"))
	require.NoError(t, err)
	require.NoError(t, store.InitSchema(db))
	scenarios := store.NewStore(db, nil)
	t.Cleanup(func() { _ = scenarios.Close() })

	fileStore := settings.NewFileStore(filepath.Join(dir, "settings.json"), nil)
	router := NewRouter(Deps{
		Settings:   fileStore,
		Scenarios:  scenarios,
		Results:    cache.New(time.Hour),
		PresetsDir: filepath.Join("..", "..", "examples"),
	})
	return &testServer{router: router, settings: fileStore, scenarios: scenarios}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	}
}

func TestSimulate_AndCachedViews(t *testing.T) {
	s := newTestServer(t)
	doc := settings.Default()

	w := s.do(t, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Name:     "default",
		Settings: &doc,
		Options:  models.SimulateOptions{IncludeTimeline: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.SimulateResponse](t, w)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, []string{"Stock", "Bond"}, resp.Methods)
	assert.Len(t, resp.Timeline, 121)
	// Yearly rebalancing makes each year grow by the weighted annual return.
	want := 5000 * math.Pow(0.6*1.07+0.4*1.03, 10)
	assert.InEpsilon(t, want, resp.Summary.FinalValue, 1e-9)
	assert.Equal(t, 10, resp.Summary.Rebalances)

	w = s.do(t, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/timeline", nil)
	require.Equal(t, http.StatusOK, w.Code)
	timeline := decode[models.TimelineResponse](t, w)
	assert.Len(t, timeline.Timeline, 121)
	assert.True(t, timeline.Timeline[12].Rebalanced)
	assert.InDelta(t, 1.0, timeline.Timeline[12].Year, 1e-12)

	w = s.do(t, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/timeline.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Equal(t, "month,year,total,rebalanced,Stock,Bond", lines[0])
	assert.Len(t, lines, 122)

	w = s.do(t, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/chart.png?per_method=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))

	w = s.do(t, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")
	assert.Contains(t, w.Body.String(), "$5,000.00")
}

func TestSimulate_InvalidConfig(t *testing.T) {
	s := newTestServer(t)
	doc := settings.Default()
	doc.Methods[1].TargetWeight = 30

	w := s.do(t, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{Settings: &doc})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "INVALID_CONFIG", resp.Error.Code)
	assert.Equal(t, "WEIGHT_SUM", resp.Error.Details["rule"])

	doc = settings.Default()
	doc.Methods[0].AnnualReturn = -150
	w = s.do(t, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{Settings: &doc})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp = decode[models.ErrorResponse](t, w)
	assert.Equal(t, "RETURN_RANGE", resp.Error.Details["rule"])
	assert.Contains(t, resp.Error.Message, "below -100%")

	w = s.do(t, http.MethodPost, "/api/v1/simulate", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestSimulate_UsesSavedSettings(t *testing.T) {
	s := newTestServer(t)

	// No settings file yet: defaults.
	w := s.do(t, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"Stock", "Bond"}, decode[models.SimulateResponse](t, w).Methods)

	saved := settings.Document{
		Principal: 100, Years: 1, RebalanceMonths: 1,
		Methods: []settings.Method{{Name: "Cash", AnnualReturn: 0, TargetWeight: 100}},
	}
	require.NoError(t, s.settings.Save(saved))

	w = s.do(t, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.SimulateResponse](t, w)
	assert.Equal(t, []string{"Cash"}, resp.Methods)
	assert.InDelta(t, 100.0, resp.Summary.FinalValue, 1e-9)
}

func TestSimulate_UnknownID(t *testing.T) {
	s := newTestServer(t)
	for _, suffix := range []string{"timeline", "timeline.csv", "chart.png", "report"} {
		w := s.do(t, http.MethodGet, "/api/v1/simulate/nope/"+suffix, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, suffix)
		assert.Equal(t, "NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)
	}
}

func TestCompare(t *testing.T) {
	s := newTestServer(t)
	req := models.CompareRequest{
		Base: settings.Default(),
		Variations: []models.Variation{
			{Name: "base"},
			{Name: "more stock", Settings: settings.Document{Methods: []settings.Method{
				{Name: "Stock", AnnualReturn: 7, TargetWeight: 80},
				{Name: "Bond", AnnualReturn: 3, TargetWeight: 20},
			}}},
			{Name: "half", Settings: settings.Document{Methods: []settings.Method{
				{Name: "Stock", AnnualReturn: 7, TargetWeight: 50},
			}}},
			{Name: "longer", Settings: settings.Document{Years: 20}},
		},
	}

	w := s.do(t, http.MethodPost, "/api/v1/simulate/compare", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.CompareResponse](t, w)
	require.Len(t, resp.Comparison, 4)

	names := make([]string, 4)
	for i, r := range resp.Comparison {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"longer", "more stock", "base", "half"}, names)
	for i, r := range resp.Comparison[:3] {
		assert.Equal(t, i+1, r.Rank)
		assert.NotEmpty(t, r.ID)
		require.NotNil(t, r.Summary)
		assert.Nil(t, r.Error)
	}

	rejected := resp.Comparison[3]
	assert.Zero(t, rejected.Rank)
	assert.Nil(t, rejected.Summary)
	require.NotNil(t, rejected.Error)
	assert.Equal(t, "INVALID_CONFIG", rejected.Error.Code)
	assert.Equal(t, "WEIGHT_SUM", rejected.Error.Details["rule"])

	// ranked runs are cached like single runs
	w = s.do(t, http.MethodGet, "/api/v1/simulate/"+resp.Comparison[0].ID+"/timeline", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompare_BadRequests(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/simulate/compare", models.CompareRequest{Base: settings.Default()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/simulate/compare", models.CompareRequest{
		Base:       settings.Default(),
		Variations: []models.Variation{{Name: "a"}, {Name: "a"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[models.ErrorResponse](t, w).Error.Message, "duplicate")
}

func TestSettingsRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.SettingsResponse](t, w)
	assert.Equal(t, settings.Default(), got.Settings)
	assert.NotEmpty(t, got.Warning, "missing file is reported")

	w = s.do(t, http.MethodGet, "/api/v1/settings/default", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, settings.Default(), decode[models.SettingsResponse](t, w).Settings)

	body := "{\n  # yearly top-up\n  contribution: 1200\n  years: 25\n}"
	w = s.do(t, http.MethodPut, "/api/v1/settings", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	put := decode[models.SettingsResponse](t, w)
	assert.Contains(t, []settings.Stage{settings.StageHJSON, settings.StageRepaired}, put.DecodedWith)
	assert.Equal(t, 1200.0, put.Settings.Contribution)

	w = s.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[models.SettingsResponse](t, w)
	assert.Empty(t, got.Warning)
	assert.Equal(t, 25, got.Settings.Years)

	w = s.do(t, http.MethodPut, "/api/v1/settings", `{"methods": [{"name": "A", "target_weight": 150}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONFIG", decode[models.ErrorResponse](t, w).Error.Code)

	w = s.do(t, http.MethodPut, "/api/v1/settings", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScenarioRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/scenarios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.ScenarioListResponse](t, w).Scenarios)

	doc := settings.Default()
	doc.Years = 5
	w = s.do(t, http.MethodPut, "/api/v1/scenarios/five-years", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/scenarios/five-years", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, doc, decode[models.ScenarioResponse](t, w).Settings)

	w = s.do(t, http.MethodGet, "/api/v1/scenarios", nil)
	list := decode[models.ScenarioListResponse](t, w).Scenarios
	require.Len(t, list, 1)
	assert.Equal(t, "five-years", list[0].Name)

	w = s.do(t, http.MethodPost, "/api/v1/scenarios/five-years/run?include_timeline=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	run := decode[models.SimulateResponse](t, w)
	assert.Equal(t, "five-years", run.Name)
	assert.Len(t, run.Timeline, 61)

	bad := settings.Default()
	bad.Methods[0].TargetWeight = 10
	w = s.do(t, http.MethodPut, "/api/v1/scenarios/bad", bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONFIG", decode[models.ErrorResponse](t, w).Error.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/scenarios/five-years", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/scenarios/five-years"},
		{http.MethodDelete, "/api/v1/scenarios/five-years"},
		{http.MethodPost, "/api/v1/scenarios/five-years/run"},
	} {
		w = s.do(t, req.method, req.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, req.path)
	}

	_, err := s.scenarios.Get(context.Background(), "five-years")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownAPIRoute(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestPresetRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	presets := decode[models.PresetListResponse](t, w).Presets
	ids := make([]string, len(presets))
	for i, p := range presets {
		ids[i] = p.ID
		assert.Empty(t, p.Error, p.ID)
	}
	assert.Equal(t, []string{"config", "three_fund"}, ids)
	assert.Equal(t, []string{"US Stocks", "International", "Bonds"}, presets[1].Methods)

	w = s.do(t, http.MethodGet, "/api/v1/presets/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stock-bond-60-40", decode[models.ScenarioResponse](t, w).Name)

	w = s.do(t, http.MethodPost, "/api/v1/presets/three_fund/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	run := decode[models.SimulateResponse](t, w)
	assert.Equal(t, "three-fund-quarterly", run.Name)
	assert.Equal(t, 25*12, run.Summary.Months)

	for _, id := range []string{"missing", ".hidden"} {
		w = s.do(t, http.MethodGet, "/api/v1/presets/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
	}
}
