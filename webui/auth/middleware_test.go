package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestMiddleware(t *testing.T) *Middleware {
	t.Helper()
	// Low bcrypt cost would be nice here but the hash happens once per test.
	m, err := NewMiddleware("hunter2", nil, DefaultConfig())
	if err != nil {
		t.Fatalf("NewMiddleware() = %v", err)
	}
	return m
}

func login(t *testing.T, m *Middleware, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	m.LoginHandler()(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_CorrectPasswordSetsSession(t *testing.T) {
	m := newTestMiddleware(t)

	rec := login(t, m, "hunter2")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 redirect", rec.Code)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no session cookie set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if m.sessions.Count() != 1 {
		t.Errorf("sessions = %d, want 1", m.sessions.Count())
	}
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	m := newTestMiddleware(t)

	rec := login(t, m, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Error("session cookie set on failed login")
	}
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	m, err := NewMiddleware("hunter2", nil, cfg)
	if err != nil {
		t.Fatal(err)
	}

	login(t, m, "wrong")
	login(t, m, "wrong")

	rec := login(t, m, "hunter2")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 after hitting the limit", rec.Code)
	}
}

func TestMiddleware_BlocksWithoutSession(t *testing.T) {
	m := newTestMiddleware(t)

	protected := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// API client gets a 401.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("API status = %d, want 401", rec.Code)
	}

	// Browser gets redirected to the login page.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("browser status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
}

func TestMiddleware_AllowsValidSession(t *testing.T) {
	m := newTestMiddleware(t)
	cookie := sessionCookie(login(t, m, "hunter2"))
	if cookie == nil {
		t.Fatal("login did not set a cookie")
	}

	called := false
	protected := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !called {
		t.Errorf("status = %d, called = %v", rec.Code, called)
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	m := newTestMiddleware(t)
	cookie := sessionCookie(login(t, m, "hunter2"))
	if cookie == nil {
		t.Fatal("login did not set a cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	m.LogoutHandler()(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if m.sessions.Count() != 0 {
		t.Errorf("sessions = %d after logout, want 0", m.sessions.Count())
	}

	cleared := sessionCookie(rec)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("session cookie not cleared")
	}
}

func TestLoginPage_Served(t *testing.T) {
	m := newTestMiddleware(t)

	rec := httptest.NewRecorder()
	m.LoginHandler()(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Error("login form not served")
	}
}

func TestLoginExpiredSessionRequiresNewLogin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionTTL = 10 * time.Millisecond
	m, err := NewMiddleware("hunter2", nil, cfg)
	if err != nil {
		t.Fatal(err)
	}

	cookie := sessionCookie(login(t, m, "hunter2"))
	time.Sleep(20 * time.Millisecond)

	protected := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for expired session", rec.Code)
	}
}
