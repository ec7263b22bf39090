package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackerext/article-templates/backend/internal/api/middleware"
	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/host/hostfake"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/config"
)

const testToken = "test-token"

func newTestServer(t *testing.T) (*Server, *hostfake.Host) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := hostfake.New()
	fake.AddIdentity(testToken, &hostfake.Identity{
		UserID:   "alice",
		UserName: "alice",
		Name:     "Alice Example",
		Mail:     "alice@example.test",
	})

	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.RateLimit.Enabled = false

	srv, err := NewServerWithHosts(cfg, Hosts{
		Projects:   fake,
		Articles:   fake,
		Identities: fake,
	})
	require.NoError(t, err)
	return srv, fake
}

func doRequest(srv *Server, method, path, body string, withToken bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if withToken {
		req.Header.Set(middleware.IdentityTokenHeader, testToken)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPublicEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusOK, doRequest(srv, http.MethodGet, "/", "", false).Code)
	assert.Equal(t, http.StatusOK, doRequest(srv, http.MethodGet, "/health", "", false).Code)
	assert.Equal(t, http.StatusOK, doRequest(srv, http.MethodGet, "/metrics", "", false).Code)
}

func TestMissingIdentityToken(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/api/templates", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListTemplatesInjectsPredefined(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/api/templates?projects=all", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	templates, ok := body["templates"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, templates, "fresh store lists the built-in templates")
}

func TestSettings(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/api/settings", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, decode(t, w)["purgeIntervalDays"])
}

func TestUpsertAndDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/templates", `{"name":"Runbook","content":"## Steps"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	id, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, id)

	w = doRequest(srv, http.MethodDelete, "/api/templates", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing id")

	w = doRequest(srv, http.MethodDelete, "/api/templates?id="+id, "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(srv, http.MethodDelete, "/api/templates?id=tmpl_unknown", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(srv, http.MethodPost, "/api/restore-template?id="+id, "", true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBulkDeleteStatusCodes(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/bulk-delete-templates", `{"ids":[]}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(srv, http.MethodPost, "/api/bulk-delete-templates", `{"ids":["tmpl_unknown"]}`, true)
	assert.Equal(t, http.StatusForbidden, w.Code, "empty qualifying set is a permission failure")
}

func TestCreateDraftStatusCodes(t *testing.T) {
	srv, fake := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/create-draft", `{"projectId":"GONE"}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	fake.AddProject(&host.Project{ID: "p1", Key: "DOCS", Name: "Documentation", ShortName: "DOCS"})
	w = doRequest(srv, http.MethodPost, "/api/create-draft", `{"projectId":"DOCS"}`, true)
	assert.Equal(t, http.StatusForbidden, w.Code, "identity lacks the create-article capability")
}

func TestTogglesAndPreferences(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/toggle-favorite?id=tmpl_x", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	favs, _ := decode(t, w)["favorites"].([]interface{})
	assert.Equal(t, []interface{}{"tmpl_x"}, favs)

	w = doRequest(srv, http.MethodPost, "/api/toggle-show-favorites", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["showFavoritesOnly"])

	w = doRequest(srv, http.MethodPost, "/api/author-filter", `{"authorIds":["bob"]}`, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"bob"}, decode(t, w)["authorFilter"], "endpoint echoes the stored selection")

	w = doRequest(srv, http.MethodPost, "/api/project-filter", `{}`, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["projectFilter"], "absent ids normalize to an empty selection")

	w = doRequest(srv, http.MethodGet, "/api/user-preferences", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode(t, w)
	assert.Equal(t, true, prefs["showFavoritesOnly"])
	assert.Equal(t, []interface{}{"bob"}, prefs["authorFilter"])
}

func TestImportPredefinedEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Seeding runs on the first write-capable call, so the explicit
	// import finds every name taken.
	w := doRequest(srv, http.MethodPost, "/api/import-predefined-templates", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["imported"])
}
