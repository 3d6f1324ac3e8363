/*
Package api
File: server.go
Description:
    HTTP surface of the ChronoQuest server: routing, session middleware
    and the JSON helpers shared by the handlers.

    Key Responsibilities:
    - Route table (chi)
    - Rejecting API calls without a session (401) and redirecting pages
    - Per-IP throttling of login and registration
*/

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/everforgeworks/chronoquest/internal/game"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Accounts is the part of the profile store the auth handlers need.
type Accounts interface {
	FindUser(ctx context.Context, name string) (*game.User, error)
	CreateUser(ctx context.Context, name string, passwordHash []byte) (int64, error)
}

// Options tunes the server.
type Options struct {
	LoginRate  float64 // login and register attempts per second per IP
	LoginBurst int
	StaticDir  string // optional; serves the browser client when set
}

// Server owns everything a request handler touches.
type Server struct {
	Game     *game.Service
	Accounts Accounts
	Sessions *SessionStore
	Hub      *Hub

	staticDir string
	limiter   *ipLimiter
}

// NewServer wires the handlers to their collaborators.
func NewServer(svc *game.Service, accounts Accounts, sessions *SessionStore, hub *Hub, opts Options) *Server {
	if opts.LoginRate <= 0 {
		opts.LoginRate = 1
	}
	if opts.LoginBurst < 1 {
		opts.LoginBurst = 5
	}
	return &Server{
		Game:      svc,
		Accounts:  accounts,
		Sessions:  sessions,
		Hub:       hub,
		staticDir: opts.StaticDir,
		limiter:   newIPLimiter(rate.Limit(opts.LoginRate), opts.LoginBurst),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/check", s.handleUserCheck)
		r.Post("/user/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.throttle)
			r.Post("/user/login", s.handleLogin)
			r.Post("/user/register", s.handleRegister)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession(true))
			r.Get("/user/badges", s.handleBadges)
			r.Get("/main/state", s.handleState)
			r.Get("/main/airports", s.handleAirports)
			r.Post("/main/travel", s.handleTravel)
			r.Post("/buy/credits", s.handleBuyCredits)
			r.Post("/buy/range", s.handleBuyRange)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession(false))
		r.Get("/main", s.handleMainPage)
		r.Post("/quit", s.handleQuitFlag)
		r.Get("/quit", s.handleQuit)
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.Hub, w, r)
		})
	})

	if s.staticDir != "" {
		r.Get("/", s.servePage("start.html"))
		r.Get("/start", s.servePage("start.html"))
		r.Get("/end", s.servePage("end.html"))
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	}

	return r
}

type ctxKey struct{}

func sessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKey{}).(*Session)
	return sess
}

// requireSession rejects requests without a valid session. API routes get a
// 401 JSON body, pages are redirected to the start page.
func (s *Server) requireSession(api bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := s.Sessions.FromRequest(r)
			if err != nil {
				if api {
					writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not logged in"})
					return
				}
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			slog.Warn("login throttled", "ip", clientIP(r), "path", r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, okBody{OK: false, Error: "Too many attempts, slow down."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(s.staticDir, name))
	}
}

// corsMiddleware lets a separately hosted client call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterWindow is how long an idle address keeps its bucket. An address seen
// in neither of the last two windows starts over with a full bucket.
const limiterWindow = 10 * time.Minute

// ipLimiter hands out one token bucket per client address. Buckets live in two
// generations; each window the current one becomes the previous one and the
// old previous one is dropped.
type ipLimiter struct {
	mu       sync.Mutex
	current  map[string]*rate.Limiter
	previous map[string]*rate.Limiter
	rotated  time.Time
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		current:  make(map[string]*rate.Limiter),
		previous: make(map[string]*rate.Limiter),
		rotated:  time.Now(),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	if idle := now.Sub(l.rotated); idle >= limiterWindow {
		if idle >= 2*limiterWindow {
			l.previous = make(map[string]*rate.Limiter)
		} else {
			l.previous = l.current
		}
		l.current = make(map[string]*rate.Limiter)
		l.rotated = now
	}

	lim, ok := l.current[ip]
	if !ok {
		lim, ok = l.previous[ip]
		if ok {
			delete(l.previous, ip)
		} else {
			lim = rate.NewLimiter(l.limit, l.burst)
		}
		l.current[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.current) + len(l.previous)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type errorBody struct {
	Error string `json:"error"`
}

type okBody struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	State *game.GameState `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
