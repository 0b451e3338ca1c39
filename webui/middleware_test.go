package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware_LogsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mw := NewLoggingMiddleware(zap.New(core), nil)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("made"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate/image", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["method"] != "POST" || fields["path"] != "/api/generate/image" {
		t.Errorf("fields = %v", fields)
	}
	if fields["status"] != int64(http.StatusCreated) {
		t.Errorf("status field = %v, want 201", fields["status"])
	}
	if fields["bytes"] != int64(4) {
		t.Errorf("bytes field = %v, want 4", fields["bytes"])
	}
}

func TestLoggingMiddleware_SkipsConfiguredPaths(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mw := NewLoggingMiddleware(zap.New(core), []string{"/health"})

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if logs.Len() != 0 {
		t.Errorf("logged %d entries for a skipped path", logs.Len())
	}
}

func TestLoggingMiddleware_ServerErrorsLogAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mw := NewLoggingMiddleware(zap.New(core), nil)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if entries[0].Level != zap.ErrorLevel {
		t.Errorf("level = %v, want error", entries[0].Level)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.9:1234", "10.0.0.9:1234"},
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "10.0.0.9:1234", "1.2.3.4"},
		{"x-forwarded-for list", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "10.0.0.9:1234", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.8.7.6"}, "10.0.0.9:1234", "9.8.7.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
