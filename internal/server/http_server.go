package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/config"
	"github.com/oggyb/devmatch/internal/logger"
	"github.com/oggyb/devmatch/internal/metrics"
	"github.com/oggyb/devmatch/internal/utils/respond"
)

const shutdownTimeout = 10 * time.Second

// HTTPOptions configures the HTTP router.
type HTTPOptions struct {
	Verifier auth.Verifier
	Logger   *slog.Logger
}

// NewRouter builds the chi router: common middleware, /healthz, /metrics,
// and everything the registrars mount under /api.
func NewRouter(opts HTTPOptions, registrars ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		for _, reg := range registrars {
			if p, ok := reg.(PublicRouteRegistrar); ok {
				p.PublicRoutes(r)
			}
		}

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.Verifier))
			for _, reg := range registrars {
				reg.Routes(r)
			}
		})
	})

	return r
}

// StartHTTPServer serves handler on the configured address until ctx is
// canceled, then drains in-flight requests.
func StartHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger attaches a logger tagged with the chi request id and logs
// one line per request.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base
			if l == nil {
				l = logger.L()
			}
			l = l.With("request_id", middleware.GetReqID(r.Context()))

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.IntoContext(r.Context(), l)))

			l.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				logger.Since(start),
			)
		})
	}
}
