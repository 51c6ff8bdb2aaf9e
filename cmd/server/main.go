package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/evaluatorhub/backend/internal/featureflags"
	"github.com/evaluatorhub/backend/internal/handler"
	"github.com/evaluatorhub/backend/internal/infrastructure/logger"
	"github.com/evaluatorhub/backend/internal/infrastructure/mailer"
	"github.com/evaluatorhub/backend/internal/infrastructure/redis"
	"github.com/evaluatorhub/backend/internal/observability/metrics"
	"github.com/evaluatorhub/backend/internal/observability/tracing"
	"github.com/evaluatorhub/backend/internal/repository"
	"github.com/evaluatorhub/backend/internal/security"
	"github.com/evaluatorhub/backend/internal/security/audit"
	"github.com/evaluatorhub/backend/internal/security/auth"
	"github.com/evaluatorhub/backend/internal/security/middleware"
	"github.com/evaluatorhub/backend/internal/security/ratelimit"
	"github.com/evaluatorhub/backend/internal/service"
	"github.com/evaluatorhub/backend/internal/worker"
	"github.com/evaluatorhub/backend/pkg/config"
	"github.com/evaluatorhub/backend/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting Evaluator's Hub server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "evaluatorhub-backend", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to Postgres
	pool, err := database.NewConnectionPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Initialize Redis client for the identity cache. Degraded mode is
	// fine: the store stays authoritative when the cache is unreachable.
	cache, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, identity cache disabled", slog.String("error", err.Error()))
		cache = nil
	} else {
		defer cache.Close()
	}

	// 6. Initialize the mailer
	var mail service.Mailer
	if featureflags.Enabled("smtp_disabled") {
		log.Warn("smtp disabled by flag, reset emails will be logged")
		mail = mailer.NewLogMailer(log)
	} else {
		smtp, err := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.ResetBaseURL, log)
		if err != nil {
			log.Error("failed to configure mailer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := smtp.Verify(ctx); err != nil {
			log.Warn("smtp verification failed", slog.String("error", err.Error()))
		} else {
			log.Info("email server is ready to send messages")
		}
		mail = smtp
	}

	// 7. Initialize repositories
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)
	assetRepo := repository.NewPostgresAssetRepository(pool.GetDB(), log)
	evaluationRepo := repository.NewPostgresEvaluationRepository(pool.GetDB(), log)
	reportRepo := repository.NewPostgresReportRepository(pool.GetDB(), log)

	// 8. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "evaluatorhub")
	authz := security.NewAuthorizationService(log)
	rateLimiter := ratelimit.NewLimiter(100, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 9. Initialize services
	userService := service.NewUserService(userRepo, tokenManager, mail, cache, log)
	assetService := service.NewAssetService(assetRepo, log)
	evaluationService := service.NewEvaluationService(evaluationRepo, log)
	reportService := service.NewReportService(reportRepo, evaluationRepo, userRepo, log)

	// 10. Initialize handlers
	userHandler := handler.NewUserHandler(userService, log)
	assetHandler := handler.NewAssetHandler(assetService, log)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	healthHandler := handler.NewHealthHandler(pool, cache, log)

	// 11. Setup HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", userHandler.Register)
	mux.HandleFunc("POST /api/users/login", userHandler.Login)
	mux.HandleFunc("POST /api/users/forgot-password", userHandler.ForgotPassword)
	mux.HandleFunc("POST /api/users/reset-password", userHandler.ResetPassword)
	mux.HandleFunc("GET /api/users/profile", userHandler.Profile)
	mux.HandleFunc("PUT /api/users/profile", userHandler.UpdateProfile)
	mux.Handle("GET /api/users", middleware.RequireAdmin(authz, http.HandlerFunc(userHandler.List)))
	mux.Handle("DELETE /api/users/{id}", middleware.RequireAdmin(authz, http.HandlerFunc(userHandler.Delete)))

	mux.HandleFunc("GET /api/assets", assetHandler.List)
	mux.HandleFunc("POST /api/assets", assetHandler.Create)
	mux.HandleFunc("GET /api/assets/{id}", assetHandler.Get)
	mux.HandleFunc("PUT /api/assets/{id}", assetHandler.Update)
	mux.HandleFunc("DELETE /api/assets/{id}", assetHandler.Delete)

	mux.HandleFunc("GET /api/evaluations", evaluationHandler.List)
	mux.HandleFunc("POST /api/evaluations", evaluationHandler.Create)
	mux.HandleFunc("GET /api/evaluations/{id}", evaluationHandler.Get)
	mux.HandleFunc("PUT /api/evaluations/{id}", evaluationHandler.Update)
	mux.HandleFunc("DELETE /api/evaluations/{id}", evaluationHandler.Delete)

	mux.HandleFunc("GET /api/reports", reportHandler.List)
	mux.HandleFunc("POST /api/reports", reportHandler.Create)
	mux.HandleFunc("GET /api/reports/{id}", reportHandler.Get)
	mux.HandleFunc("PUT /api/reports/{id}", reportHandler.Update)
	mux.HandleFunc("DELETE /api/reports/{id}", reportHandler.Delete)
	mux.HandleFunc("GET /api/reports/{id}/download", reportHandler.Download)

	mux.HandleFunc("/api/", handler.NotFound)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Unmatched API paths answer 404 before authentication, like any
	// unrouted path would.
	withAPINotFound := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, pattern := mux.Handler(r); pattern == "/api/" {
				handler.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Chain middleware: request ID -> metrics -> content type -> auth -> rate limit -> audit -> CORS+routes.
	// Rate limiting and audit run after authentication so both see the
	// resolved identity; the limiter's strict per-IP branch still covers the
	// public credential endpoints, which pass through the authenticator.
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(
				withAPINotFound(
					middleware.AuthMiddleware(tokenManager, userRepo, cache, log)(
						middleware.RateLimitMiddleware(rateLimiter, log)(
							middleware.AuditMiddleware(auditLogger)(handlerWithCORS),
						),
					),
				),
			),
		),
		log,
	)
	tracedHandler := otelhttp.NewHandler(rootHandler, "http.server")

	// 12. Start the reset token sweeper in the background
	sweeper := worker.NewTokenSweeper(userRepo, log, time.Duration(cfg.TokenSweepIntervalMinutes)*time.Minute)
	go sweeper.Start(ctx)

	// 13. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      tracedHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", 100),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop the token sweeper
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
