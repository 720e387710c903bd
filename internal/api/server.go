// internal/api/server.go
// Package api exposes the graduation engine as the admin HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/dex/raydium"
	"github.com/Ksavu/launched-lol-admin/internal/export"
	"github.com/Ksavu/launched-lol-admin/internal/graduation"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

// Backend is the part of graduation.Service the handlers use.
type Backend interface {
	ListGraduated(ctx context.Context) ([]*graduation.GraduatedToken, error)
	Settle(ctx context.Context, bondingCurve, mint solana.PublicKey) (*graduation.SettlementResult, *raydium.MigrationPlan, error)
	ListVerificationRequests(ctx context.Context) ([]*graduation.VerificationRequest, error)
	VerifySocial(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error)
	RevokeVerification(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error)
	ListSettlements(ctx context.Context, limit, offset int) ([]*models.Settlement, error)
	RecordPool(ctx context.Context, mint, pool, market, lpMint solana.PublicKey) (string, error)
}

// MetricsExporter serves /metrics and instruments every request.
type MetricsExporter interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// Server holds the admin API handlers.
type Server struct {
	backend  Backend
	exporter *export.SettlementExporter
	metrics  MetricsExporter
	logger   *zap.Logger
}

// requestTimeout covers a settlement, which waits for two confirmations.
const requestTimeout = 2 * time.Minute

// NewServer creates the API server. metrics may be nil.
func NewServer(backend Backend, metrics MetricsExporter, logger *zap.Logger) *Server {
	return &Server{
		backend:  backend,
		exporter: export.NewSettlementExporter(logger),
		metrics:  metrics,
		logger:   logger.Named("api"),
	}
}

// Router builds the chi router for the admin API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "graduator"})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/graduated-tokens", s.listGraduated)
		r.Post("/graduate", s.graduate)
		r.Get("/verification-requests", s.listVerificationRequests)
		r.Post("/verify-social", s.verifySocial)
		r.Post("/revoke-verification", s.revokeVerification)
		r.Get("/settlements", s.listSettlements)
		r.Get("/settlements/export", s.exportSettlements)
		r.Post("/pool-created", s.poolCreated)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
