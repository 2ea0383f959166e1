package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbwise/fangmatch/internal/application/catalog"
	"github.com/herbwise/fangmatch/internal/application/matching"
	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/prometheus"
	"github.com/herbwise/fangmatch/internal/interfaces/http/handlers"
	"github.com/herbwise/fangmatch/internal/interfaces/http/middleware"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	cat := catalog.NewService(logging.NewNopLogger())
	svc := matching.NewService(cat, formula.DefaultMatcherOptions(), logging.NewNopLogger())

	return NewRouter(RouterConfig{
		MatchHandler:   handlers.NewMatchHandler(svc),
		FormulaHandler: handlers.NewFormulaHandler(cat),
		HealthHandler:  handlers.NewHealthHandler("test"),
		Metrics:        prometheus.NewCollector("fangmatch"),
		Logger:         logging.NewNopLogger(),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRouterHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAssignsRequestID(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouterMatchEndpoint(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/match",
		map[string]string{"text": "麻黄9g 桂枝6g 杏仁9g 甘草3g"})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var out matching.MatchOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "麻黄汤", out.Results[0].Formula.Name)
	assert.Equal(t, formula.MatchExact, out.Results[0].MatchType)
}

func TestRouterMatchRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/match", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PARSE_001", env.Error.Code)
}

func TestRouterMatchNoRecognizableHerbs(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/match",
		map[string]string{"text": "300ml water"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouterParseEndpoint(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/parse",
		map[string]string{"text": "麻黄9g，桂枝6g"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out matching.ParseResult
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Len(t, out.Entries, 2)
}

func TestRouterFormulaCRUD(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	// Create.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/formulas", map[string]interface{}{
		"name":        "二陈汤",
		"source":      "局方",
		"composition": []string{"半夏", "橘红", "云苓", "甘草"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created formula.StandardFormula
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	// Aliases are canonicalized on the way in.
	assert.Contains(t, created.Composition, "茯苓")
	assert.Equal(t, "太平惠民和剂局方", created.Source)

	// Get.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/formulas/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Duplicate create conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/formulas", map[string]interface{}{
		"name":        "二陈汤",
		"composition": []string{"半夏"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Update.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/formulas/"+created.ID, map[string]interface{}{
		"name":        "二陈汤",
		"composition": []string{"半夏", "橘红", "茯苓", "甘草", "生姜"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Delete.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/formulas/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/formulas/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterFormulaList(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/formulas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*formula.StandardFormula
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, len(catalog.SeedFormulas()))
}

func TestRouterCORSPreflight(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/match", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerStartStop(t *testing.T) {
	t.Parallel()

	srv := NewServer(configForTest(), testRouter(t), logging.NewNopLogger())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, <-done)
}

func configForTest() config.ServerConfig {
	return config.ServerConfig{Port: 0, ShutdownTimeout: time.Second}
}
