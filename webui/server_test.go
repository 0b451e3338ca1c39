package webui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aigen/pipeline"
)

func newTestServer(t *testing.T, authProvider AuthProvider) *Server {
	t.Helper()
	gen := &mockGenerator{result: &pipeline.Result{
		Artifacts: [][]byte{encodeTestPNG(t, 8, 8)},
	}}
	api, dir := newTestAPI(t, gen)

	cfg := DefaultServerConfig()
	cfg.OutputDir = dir

	broadcaster := NewBroadcaster(DefaultBroadcasterConfig())
	return NewServer(cfg, api, broadcaster, authProvider, nil)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestServer_IndexServesDashboard(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "<title>aigen</title>") {
		t.Error("dashboard page not served")
	}
}

func TestServer_UnknownPathIs404(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_APIRouted(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "capabilities") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

// stubAuth denies everything; enough to verify wiring.
type stubAuth struct{}

func (stubAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "login required", http.StatusUnauthorized)
	})
}

func (s stubAuth) MiddlewareFunc(next http.HandlerFunc) http.HandlerFunc {
	return s.Middleware(next).ServeHTTP
}

func (stubAuth) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("login page"))
	}
}

func (stubAuth) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func TestServer_AuthProtectsRoutes(t *testing.T) {
	srv := newTestServer(t, stubAuth{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("protected route status = %d, want 401", rec.Code)
	}

	// Health and login stay open.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", rec.Code)
	}
}

func TestServer_ShutdownIsClean(t *testing.T) {
	srv := newTestServer(t, nil)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}
