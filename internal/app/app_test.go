package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplication(t *testing.T) *Application {
	t.Helper()

	t.Setenv("TWSCREEN_PATHS_DATA_DIR", filepath.Join(t.TempDir(), "data"))
	t.Setenv("TWSCREEN_LOGGING_LEVEL", "error")

	app, err := NewApplication("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApplication(t *testing.T) {
	app := testApplication(t)

	assert.NotNil(t, app.ScreenService)
	assert.NotNil(t, app.NoteService)
	assert.NotNil(t, app.CompareService)
	assert.Equal(t, ":8080", app.Server.Addr)
}

func TestApplication_Healthz(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestApplication_RoutesMounted(t *testing.T) {
	app := testApplication(t)

	// Missing locator maps to a validation failure, proving the route is
	// wired; an unknown path would 404 instead.
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screens", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/compare", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
