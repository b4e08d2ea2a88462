package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ai-showcase-client/internal/infra/logging"
	"ai-showcase-client/internal/infra/metrics"
	"ai-showcase-client/internal/infra/notify"
	"ai-showcase-client/internal/store"
	"ai-showcase-client/internal/usecase"
)

// Toasts is the read/dismiss side of the notification list.
type Toasts interface {
	List() []notify.Toast
	Dismiss(id string) bool
}

// Server is the local dashboard API: it exposes the store and triggers
// invocations. It does no rendering.
type Server struct {
	invoke   usecase.InvocationUseCase
	auth     usecase.AuthUseCase
	store    *store.Store
	toasts   Toasts
	log      *zerolog.Logger
	router   *chi.Mux
	upgrader websocket.Upgrader

	maxUpload int64
}

func NewServer(invoke usecase.InvocationUseCase, auth usecase.AuthUseCase, st *store.Store, toasts Toasts, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	s := &Server{
		invoke:    invoke,
		auth:      auth,
		store:     st,
		toasts:    toasts,
		log:       &l,
		router:    chi.NewRouter(),
		maxUpload: 32 << 20,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", s.stateWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/services", s.listServices)
		r.Get("/state", s.getState)
		r.Put("/service", s.setCurrentService)

		r.Get("/jobs", s.listJobs)
		r.Get("/jobs/{id}", s.getJob)
		r.Post("/jobs/refresh", s.refreshJobs)

		r.Post("/generate", s.generate)
		r.Post("/classify", s.classify)
		r.Post("/detect", s.detect)
		r.Post("/segment", s.segment)
		r.Post("/processing/cancel", s.cancel)

		r.Post("/chat", s.chat)
		r.Get("/chat/history", s.chatHistory)

		r.Get("/notifications", s.listNotifications)
		r.Delete("/notifications/{id}", s.dismissNotification)

		if s.auth != nil {
			r.Get("/auth", s.authStatus)
			r.Put("/auth", s.login)
			r.Delete("/auth", s.logout)
		}
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// requestLogger threads the chi request id into the context logger and logs
// one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("http shutdown")
		}
		return ctx.Err()
	}
}
