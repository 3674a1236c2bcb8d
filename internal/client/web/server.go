// Package web serves the admin dashboard as a JSON API. Sign-in returns a
// signed session token; every other /api route needs it as a bearer token and
// re-validates it against admin_users.
package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/metrics"
	"github.com/dmitrijs2005/opsdash/internal/client/screens"
	"github.com/dmitrijs2005/opsdash/internal/client/session"
	"github.com/dmitrijs2005/opsdash/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type Options struct {
	Screens     screens.Options
	CORSOrigins []string
}

type Server struct {
	gate    *session.Gate
	svc     screens.Services
	opts    Options
	metrics *metrics.Metrics
	log     logging.Logger
}

func NewServer(gate *session.Gate, svc screens.Services, m *metrics.Metrics, opts Options, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	opts.Screens.Logger = log
	return &Server{gate: gate, svc: svc, opts: opts, metrics: m, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-in", s.handleSignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/sign-out", s.handleSignOut)
			r.Get("/overview", s.handleOverview)
			r.Get("/users", s.handleUsers)
			r.Get("/logs/functions", s.handleFunctions)
			r.Get("/logs/errors", s.handleTodayErrors)
			r.Get("/logs/recent", s.handleRecentLogs)
			r.Get("/logs", s.handleLogs)
			r.Get("/emails", s.handleEmails)
		})
	})
	return r
}

const requestIDHeader = "X-Request-ID"

type (
	sessionKey struct{}
	loggerKey  struct{}
)

// requestID tags every request with an id, echoed in the response header and
// attached to the request logger.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), loggerKey{}, s.log.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logger(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logging.Logger); ok {
		return l
	}
	return s.log
}

// observe logs and times each request under its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		took := time.Since(start)
		s.metrics.ObserveRequest(r.Method, route, status, took)
		s.logger(r.Context()).Info(r.Context(), "request served",
			"method", r.Method, "route", route, "status", status, "took", took)
	})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token", "sign in first")
			return
		}
		sess, err := s.gate.Verify(r.Context(), token)
		if err != nil {
			s.logger(r.Context()).Info(r.Context(), "session rejected", "error", err)
			s.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(session.Session)
	return sess, ok
}
