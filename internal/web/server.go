package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/opponent"
)

// Option configures the HTTP server.
type Option func(*handlers)

// WithLogger sets the request and handler logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *handlers) {
		if l != nil {
			h.log = l
		}
	}
}

// WithDefaults sets the settings used when the new-game form omits them.
func WithDefaults(s app.Settings) Option {
	return func(h *handlers) { h.defaults = s }
}

// WithHeartbeat sets the SSE keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(h *handlers) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithCheckOrigin sets the websocket origin check.
func WithCheckOrigin(f func(r *http.Request) bool) Option {
	return func(h *handlers) { h.upgrader.CheckOrigin = f }
}

// AllowOrigin accepts websocket handshakes from the given origins, and from
// clients that send no Origin header at all.
func AllowOrigin(origins ...string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if origin == o {
				return true
			}
		}
		return false
	}
}

// NewServer wires routes and returns an http.Handler. It also installs the
// board fragment as the service's broadcast renderer.
func NewServer(s *app.Service, opts ...Option) http.Handler {
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		log:       zap.NewNop(),
		defaults:  app.Settings{Opponent: opponent.KindRules, HumanSide: domain.First},
		heartbeat: 15 * time.Second,
		upgrader:  websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
	for _, o := range opts {
		o(h)
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/play", h.play)
		r.Post("/restart", h.restart)
		r.Get("/state", h.state)
		r.Get("/events", h.events)
		r.Get("/ws", h.socket)
	})
	return r
}

func requestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				l.Debug("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
