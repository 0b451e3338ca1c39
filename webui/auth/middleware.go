// This file contains the Middleware organism: session checking for
// protected routes plus the login and logout handlers.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "aigen_session"

// Config tunes the middleware.
type Config struct {
	// SessionTTL is how long sessions remain valid (default: 24h)
	SessionTTL time.Duration

	// MaxAttempts is failed logins per window before blocking (default: 5)
	MaxAttempts int

	// AttemptWindow is the window for counting failures (default: 1m)
	AttemptWindow time.Duration

	// BlockDuration is how long to block after MaxAttempts (default: 5m)
	BlockDuration time.Duration

	// SecureCookies sets the Secure flag on cookies (enable behind TLS)
	SecureCookies bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:    DefaultSessionTTL,
		MaxAttempts:   5,
		AttemptWindow: time.Minute,
		BlockDuration: 5 * time.Minute,
	}
}

// Middleware gates requests behind a single shared password. The password
// is hashed at construction; only the hash is kept in memory.
type Middleware struct {
	passwordHash string
	sessions     *SessionStore
	limiter      *RateLimiter
	logger       *zap.Logger
	secure       bool
	maxAge       int
}

// NewMiddleware hashes the password and assembles the session store and
// rate limiter.
func NewMiddleware(password string, logger *zap.Logger, cfg Config) (*Middleware, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = time.Minute
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = 5 * time.Minute
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &Middleware{
		passwordHash: hash,
		sessions:     NewSessionStore(cfg.SessionTTL),
		limiter:      NewRateLimiter(cfg.MaxAttempts, cfg.AttemptWindow, cfg.BlockDuration),
		logger:       logger,
		secure:       cfg.SecureCookies,
		maxAge:       int(cfg.SessionTTL.Seconds()),
	}, nil
}

// Middleware wraps a handler; requests without a valid session are sent to
// the login page (browsers) or get a 401 (API clients).
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.authenticated(r) {
			if wantsHTML(r) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			} else {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Unauthorized","message":"login required"}`))
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MiddlewareFunc is the http.HandlerFunc form of Middleware.
func (m *Middleware) MiddlewareFunc(next http.HandlerFunc) http.HandlerFunc {
	return m.Middleware(next).ServeHTTP
}

// LoginHandler serves the login form on GET and checks the password on POST.
func (m *Middleware) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if m.authenticated(r) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			m.serveLoginPage(w, "")

		case http.MethodPost:
			m.handleLogin(w, r)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// LogoutHandler deletes the session and clears the cookie.
func (m *Middleware) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			m.sessions.Delete(cookie.Value)
		}
		m.clearCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// Sessions exposes the session store so main can wire its cleanup ticker.
func (m *Middleware) Sessions() *SessionStore {
	return m.sessions
}

func (m *Middleware) handleLogin(w http.ResponseWriter, r *http.Request) {
	ip := remoteIP(r)

	if allowed, wait := m.limiter.Allow(ip); !allowed {
		m.logger.Warn("login blocked by rate limit",
			zap.String("remote", ip), zap.Duration("retry_in", wait))
		m.serveLoginPageStatus(w, http.StatusTooManyRequests,
			fmt.Sprintf("Too many attempts. Try again in %s.", wait.Round(time.Second)))
		return
	}

	if err := VerifyPassword(r.FormValue("password"), m.passwordHash); err != nil {
		m.limiter.RecordFailure(ip)
		m.logger.Warn("failed login attempt", zap.String("remote", ip))
		m.serveLoginPageStatus(w, http.StatusUnauthorized, "Incorrect password.")
		return
	}

	session, err := m.sessions.Create()
	if err != nil {
		m.logger.Error("cannot create session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	m.limiter.Reset(ip)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Info("login succeeded", zap.String("remote", ip))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *Middleware) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	_, err = m.sessions.Get(cookie.Value)
	return err == nil
}

func (m *Middleware) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Middleware) serveLoginPage(w http.ResponseWriter, message string) {
	m.serveLoginPageStatus(w, http.StatusOK, message)
}

func (m *Middleware) serveLoginPageStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, loginPageHTML, message)
}

// wantsHTML distinguishes browser navigation from API calls.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// remoteIP strips the port from RemoteAddr, honoring proxy headers.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndexByte(addr, ':'); idx >= 0 {
		return addr[:idx]
	}
	return addr
}

const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>aigen login</title>
<style>
  :root { color-scheme: dark; }
  body { font-family: system-ui, sans-serif; background: #111418; color: #e6e6e6;
         display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
  form { background: #1a1f26; border-radius: 8px; padding: 2rem; width: 280px;
         display: flex; flex-direction: column; gap: .8rem; }
  input { background: #0d1013; color: inherit; border: 1px solid #2a313a;
          border-radius: 4px; padding: .5rem; font: inherit; }
  button { background: #3b82f6; border: 0; color: white; padding: .6rem;
           border-radius: 4px; font: inherit; cursor: pointer; }
  .msg { color: #f87171; font-size: .85rem; min-height: 1em; }
</style>
</head>
<body>
<form method="post" action="/login">
  <h1>aigen</h1>
  <div class="msg">%s</div>
  <input type="password" name="password" placeholder="Password" autofocus required>
  <button type="submit">Log in</button>
</form>
</body>
</html>`
