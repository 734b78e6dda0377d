package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/justice-case-api/config"
	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

var a App

var (
	admin      = models.Principal{ActorID: "admin-1", Name: "Ada Admin", PrimaryRole: "Administrator"}
	prosecutor = models.Principal{ActorID: "pros-1", Name: "Pat Prosecutor", PrimaryRole: "Prosecutor"}
	judge      = models.Principal{ActorID: "judge-1", Name: "Judy Judge", PrimaryRole: "Judge"}
	marshal    = models.Principal{ActorID: "marshal-1", Name: "Max Marshal", PrimaryRole: "Marshal"}
	visitor    = models.Principal{ActorID: "visitor-1", PrimaryRole: "Visitor"}
)

func executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)
	app := &App{Config: config.Config{JWTSecret: "test-secret"}}
	require.NoError(t, app.Wire(store, permissions.DefaultPolicy()))
	return app
}

func bearer(t *testing.T, app *App, p models.Principal) string {
	t.Helper()
	token, err := app.Auth.Issue(p, time.Hour)
	require.NoError(t, err)
	return token
}

// call sends body as JSON on behalf of p
func call(t *testing.T, app *App, p models.Principal, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+bearer(t, app, p))
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusNotFound, response.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusOK, response.Code)

	if !strings.Contains(response.Body.String(), "alive") {
		t.Errorf("Expected 'alive' in the reponse. Got '%s'", response.Body.String())
	}
}

func TestApp_CaseHandlerUnauthorized(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest("GET", "/api/v1/cases", nil)
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)

	checkResponseCode(t, http.StatusUnauthorized, rr.Code)
}

func TestApp_CaseHandlerInvalidToken(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest("GET", "/api/v1/cases", nil)
	req.Header.Add("Authorization", "Bearer asdfasdf")
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)

	checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error": "unauthorized"}`, rr.Body.String())
}

func TestInitializeWithUnknownStore(t *testing.T) {
	app := &App{Config: config.Config{StoreDriver: "sqlite"}}
	assert.Error(t, app.Initialize())
}

func TestInitializeWithFileStore(t *testing.T) {
	app := &App{Config: config.Config{StoreDriver: config.StoreFile, DataDir: t.TempDir(), JWTSecret: "x", PleaDealResponders: []string{"prosecutor"}}}
	require.NoError(t, app.Initialize())
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Service)
}

func TestInitializeRejectsUnknownResponder(t *testing.T) {
	app := &App{Config: config.Config{StoreDriver: config.StoreFile, DataDir: t.TempDir(), PleaDealResponders: []string{"bailiff"}}}
	assert.Error(t, app.Initialize())
}

func TestMetricsRoute(t *testing.T) {
	app := newTestApp(t)
	call(t, app, marshal, "GET", "/api/v1/cases", nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)

	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "justice_permission_decisions_total")
	assert.Contains(t, rr.Body.String(), `route="/api/v1/cases"`)
}
