package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/gridd/internal/builtin"
	"github.com/danmuck/gridd/internal/handler"
	"github.com/danmuck/gridd/internal/namespace"
	"github.com/danmuck/gridd/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *namespace.Holder) {
	t.Helper()
	holder := &namespace.Holder{}
	reg := handler.NewRegistry()
	require.NoError(t, builtin.Register(reg, holder))
	return New(Config{Registry: reg, Namespace: holder}), holder
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	testlog.Start(t)
	s, _ := newTestServer(t)
	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.EqualValues(t, 3, body["handlers"])
}

func TestNamespaceRoutes(t *testing.T) {
	testlog.Start(t)
	s, holder := newTestServer(t)
	require.Equal(t, http.StatusNotFound, get(t, s, "/namespace").Code)
	require.Equal(t, http.StatusNotFound, get(t, s, "/namespace/info").Code)

	holder.Set(&namespace.Info{Name: "NS", Chunksize: 512, StoragePolicies: map[string]string{"SINGLE": "NONE:NONE:NONE"}})
	rec := get(t, s, "/namespace")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"name":"NS"}`, rec.Body.String())

	rec = get(t, s, "/namespace/info")
	require.Equal(t, http.StatusOK, rec.Code)
	var info namespace.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Equal(t, int64(512), info.Chunksize)
	require.Equal(t, "NONE:NONE:NONE", info.StoragePolicies["SINGLE"])
}

func TestHandlersAndTags(t *testing.T) {
	testlog.Start(t)
	s, _ := newTestServer(t)

	rec := get(t, s, "/handlers")
	require.Equal(t, http.StatusOK, rec.Code)
	var handlers struct {
		Handlers []BindingInfo `json:"handlers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &handlers))
	require.Len(t, handlers.Handlers, 3)
	require.Equal(t, builtin.NameHandlers, handlers.Handlers[0].Name)
	require.False(t, handlers.Handlers[0].Versioned)
	require.Equal(t, []string{"stat.ping"}, handlers.Handlers[2].Tags)

	rec = get(t, s, "/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	var tags struct {
		Tags []TagInfo `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	require.Equal(t, []TagInfo{
		{Name: "stat.ping", Kind: "bool", Value: "true"},
		{Name: "tag.nsinfo", Kind: "bool", Value: "true"},
	}, tags.Tags)
}

func TestMetricsExposesReplyCounters(t *testing.T) {
	testlog.Start(t)
	s, _ := newTestServer(t)
	_ = get(t, s, "/health")
	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "gridd_admin_requests_total"))
}

func TestNormalizeOrigins(t *testing.T) {
	require.Equal(t, []string{"http://localhost:3000"}, normalizeOrigins(nil))
	require.Equal(t, []string{"https://a"}, normalizeOrigins([]string{"", "https://a"}))
}

func TestTokenGuardsInspectionRoutes(t *testing.T) {
	testlog.Start(t)
	s := New(Config{Token: "secret"})
	require.Equal(t, http.StatusOK, get(t, s, "/health").Code)
	require.Equal(t, http.StatusUnauthorized, get(t, s, "/handlers").Code)

	req := httptest.NewRequest(http.MethodGet, "/handlers", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
