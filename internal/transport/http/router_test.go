package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "formation/internal/jwt_token"
	"formation/internal/platform/metrics"
	ratelimit "formation/internal/ratelimit/middleware"
	"formation/internal/ratelimit/models"
	"formation/internal/ratelimit/store/bucket"
	"formation/pkg/platform/httputil"
	"formation/pkg/requestcontext"
	"formation/pkg/testutil"
)

// stubRoutes stands in for the formation handler.
type stubRoutes struct{}

func (stubRoutes) Register(r chi.Router) {
	r.Post("/v1/company-formation", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteSuccess(w, http.StatusCreated, "created", map[string]string{
			"api_version": requestcontext.APIVersion(r.Context()).String(),
		})
	})
	r.Get("/v1/company-formation/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func (stubRoutes) RegisterAdmin(r chi.Router) {
	r.Get("/v1/admin/company-formation", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteSuccess(w, http.StatusOK, "", map[string]string{
			"admin": requestcontext.AdminSubject(r.Context()),
		})
	})
}

const testSigningKey = "router-test-signing-key"

func newTestRouter(t *testing.T, withAdmin bool) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := Config{
		Version:        "9.9.9",
		RequestTimeout: time.Second,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
	}
	if withAdmin {
		cfg.AdminValidator = jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(testSigningKey, "formation", "formation-admin"))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(logger, cfg, stubRoutes{}), reg
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "9.9.9", body.Version)
	assert.Equal(t, runtime.Version(), body.GoVersion)
	assert.False(t, body.Timestamp.IsZero())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router, _ := newTestRouter(t, false)
	req := testutil.NewRequest(t, http.MethodGet, "/health")
	req.Header.Set("X-Request-ID", "req-123")

	rr := testutil.DoRequest(router, req)
	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
}

func TestVersionedRoutes(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/company-formation", map[string]string{}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.Equal(t, "v1", rr.Header().Get("X-API-Version"))
	env := testutil.DecodeSuccess[map[string]string](t, rr)
	assert.Equal(t, "v1", (*env.Data)["api_version"])
}

func TestNonJSONBodyIsRejected(t *testing.T) {
	router, _ := newTestRouter(t, false)
	req := testutil.NewRequestWithBody(t, http.MethodPost, "/v1/company-formation", "a=b")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnsupportedMediaType)
}

func TestPanicBecomesEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/company-formation/panic"))
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	body := testutil.DecodeError(t, rr)
	assert.False(t, body.Success)
	assert.NotContains(t, rr.Body.String(), "boom")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, false)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), `formation_http_request_duration_seconds_count{method="GET",route="/health",status="200"} 1`)
}

func TestAdminRoutes(t *testing.T) {
	t.Run("unmounted without a validator", func(t *testing.T) {
		router, _ := newTestRouter(t, false)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/admin/company-formation"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("missing token is 401", func(t *testing.T) {
		router, _ := newTestRouter(t, true)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/admin/company-formation"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("token signed with another key is 401", func(t *testing.T) {
		router, _ := newTestRouter(t, true)
		token, err := jwttoken.NewJWTService("other-key", "formation", "formation-admin").GenerateAdminToken("mallory", time.Hour)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/v1/admin/company-formation")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("valid token reaches the handler with its subject", func(t *testing.T) {
		router, _ := newTestRouter(t, true)
		token, err := jwttoken.NewJWTService(testSigningKey, "formation", "formation-admin").GenerateAdminToken("reviewer@example.com", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/admin/company-formation", strings.NewReader(""))
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		env := testutil.DecodeSuccess[map[string]string](t, rr)
		assert.Equal(t, "reviewer@example.com", (*env.Data)["admin"])
	})
}

func TestPublicRoutesAreRateLimited(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := ratelimit.New(bucket.NewInMemoryBucketStore(), logger, ratelimit.WithLimits(models.Limits{
		models.ClassWrite: {Requests: 1, Window: time.Minute},
	}))
	router := NewRouter(logger, Config{Version: "test", RateLimiter: limiter}, stubRoutes{})

	first := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/company-formation", map[string]string{}))
	testutil.AssertStatus(t, first, http.StatusCreated)

	second := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/company-formation", map[string]string{}))
	testutil.AssertStatus(t, second, http.StatusTooManyRequests)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	health := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
	testutil.AssertStatus(t, health, http.StatusOK)
}
