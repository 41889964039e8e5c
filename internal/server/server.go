package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/planner"
	"ai-meal-shopper/internal/shopping"
)

// ShoppingService is the part of the application the HTTP API needs.
type ShoppingService interface {
	ImportPlan(ctx context.Context, plan *planner.MealPlan) (int64, error)
	GenerateShoppingList(ctx context.Context, userID string, planID int64, budget float64) (*shopping.ShoppingList, error)
	GenerateFromPlan(ctx context.Context, plan *planner.MealPlan, budget float64) (*shopping.ShoppingList, error)
	GetShoppingList(ctx context.Context, id string) (*shopping.ShoppingList, error)
	LatestListForPlan(ctx context.Context, userID string, planID int64) (*shopping.ShoppingList, error)
}

type Server struct {
	httpServer *http.Server
	service    ShoppingService
}

// NewServer builds the router. The API routes are only mounted when a JWT
// secret is configured; webhook may be nil.
func NewServer(port string, service ShoppingService, jwtSecret string, webhook http.Handler) *Server {
	s := &Server{service: service}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(1 << 20))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if webhook != nil {
		r.Method(http.MethodPost, "/webhook", webhook)
	}

	if jwtSecret == "" {
		slog.Warn("JWT_SECRET not set, API routes disabled")
	} else {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(AuthMiddleware([]byte(jwtSecret)))

			r.Post("/meal-plans", s.handleImportPlan)
			r.Post("/meal-plans/{id}/shopping-list", s.handleGenerateForPlan)
			r.Get("/meal-plans/{id}/shopping-list", s.handleLatestListForPlan)
			r.Post("/shopping-lists", s.handleGenerateInline)
			r.Get("/shopping-lists/{id}", s.handleGetShoppingList)
		})
	}

	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server
func (s *Server) Start() error {
	slog.Info("Server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/health") || strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ctx := logger.WithRunID(r.Context(), logger.NewRunID())
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		log.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
