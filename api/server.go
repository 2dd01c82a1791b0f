package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"yieldvault/config"
	"yieldvault/service"
)

// Server hosts the scheduler trigger and admin endpoints
type Server struct {
	httpServer *http.Server

	accrual    service.AccrualProcessor
	settlement service.SettlementProcessor
	reconciler service.StatusReconciler
	settings   service.SettingsService
	uowFactory service.UnitOfWorkFactory
}

// NewServer creates a new HTTP server wired to the processors
func NewServer(
	accrual service.AccrualProcessor,
	settlement service.SettlementProcessor,
	reconciler service.StatusReconciler,
	settings service.SettingsService,
	uowFactory service.UnitOfWorkFactory,
) *Server {
	s := &Server{
		accrual:    accrual,
		settlement: settlement,
		reconciler: reconciler,
		settings:   settings,
		uowFactory: uowFactory,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(schedulerAuth)

		// Schedulers vary; accept both verbs on trigger endpoints.
		r.Post("/cron/accruals", s.handleAccruals)
		r.Get("/cron/accruals", s.handleAccruals)
		r.Post("/cron/settlements", s.handleSettlements)
		r.Get("/cron/settlements", s.handleSettlements)
		r.Post("/cron/reconcile", s.handleReconcile)
		r.Get("/cron/reconcile", s.handleReconcile)

		r.Put("/admin/settings/rate-tiers", s.handleUpdateRateTiers)
		r.Put("/admin/settings/vip-thresholds", s.handleUpdateVipThresholds)
		r.Get("/runs/latest", s.handleLatestRun)
	})

	s.httpServer = &http.Server{
		Addr:    config.Get().HTTPAddr,
		Handler: r,
	}

	return s
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server starting")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs each request with method, path, status and duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Info("Request handled")
	})
}

// schedulerAuth requires the shared scheduler secret via Authorization bearer
// token or X-Scheduler-Key header. Development environments run open so local
// curl works without setup.
func schedulerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := config.Get()
		if cfg.Environment == "development" && cfg.SchedulerSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get("X-Scheduler-Key")
		if presented == "" {
			auth := r.Header.Get("Authorization")
			presented = strings.TrimPrefix(auth, "Bearer ")
		}

		if cfg.SchedulerSecret == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(cfg.SchedulerSecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}
