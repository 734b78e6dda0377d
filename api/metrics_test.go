package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/justice-case-api/api"
	"github.com/linesmerrill/justice-case-api/lifecycle"
	"github.com/linesmerrill/justice-case-api/models"
)

func scrape(t *testing.T, m *api.Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	m := api.NewMetrics()
	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware(m))
	r.HandleFunc("/api/v1/cases/{case_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/cases/abc", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	body := scrape(t, m)
	assert.Contains(t, body, `justice_http_requests_total{code="404",method="GET",route="/api/v1/cases/{case_id}"} 1`)
	assert.NotContains(t, body, "/api/v1/cases/abc")
}

func TestMetricsDecisionsAndTransitions(t *testing.T) {
	m := api.NewMetrics()
	m.ObserveDecision("cases", "view", true)
	m.ObserveDecision("cases", "delete", false)
	m.ObserveDecision("cases", "delete", false)
	m.Notify(lifecycle.Event{CaseType: models.CaseTypeCriminal, Action: "record_verdict", To: models.StatusCompleted})

	body := scrape(t, m)
	assert.Contains(t, body, `justice_permission_decisions_total{action="view",module="cases",result="allow"} 1`)
	assert.Contains(t, body, `justice_permission_decisions_total{action="delete",module="cases",result="deny"} 2`)
	assert.Contains(t, body, `justice_case_transitions_total{action="record_verdict",case_type="Criminal",status="completed"} 1`)
}

func TestMetricsSetExpiring(t *testing.T) {
	m := api.NewMetrics()
	m.SetExpiring([]models.CaseView{
		{Expiry: &models.ExpiryAnnotation{State: models.ExpiryExpired}},
		{Expiry: &models.ExpiryAnnotation{State: models.ExpiryExpiringSoon}},
		{Expiry: &models.ExpiryAnnotation{State: models.ExpiryExpiringSoon}},
		{},
	})

	body := scrape(t, m)
	assert.Contains(t, body, `justice_cases_expiry{state="expired"} 1`)
	assert.Contains(t, body, `justice_cases_expiry{state="expiring_soon"} 2`)
}

func TestWithQueryTimeout(t *testing.T) {
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(api.QueryTimeout), deadline, time.Second)
}
