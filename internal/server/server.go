// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openaudit/auditlens/internal/admin"
	"github.com/openaudit/auditlens/internal/backend"
	"github.com/openaudit/auditlens/internal/chat"
	"github.com/openaudit/auditlens/internal/config"
	"github.com/openaudit/auditlens/internal/health"
	"github.com/openaudit/auditlens/internal/logging"
	"github.com/openaudit/auditlens/internal/metrics"
	"github.com/openaudit/auditlens/internal/poller"
	"github.com/openaudit/auditlens/internal/ratelimit"
	"github.com/openaudit/auditlens/internal/realtime"
	"github.com/openaudit/auditlens/internal/review"
	"github.com/openaudit/auditlens/internal/security"
	"github.com/openaudit/auditlens/internal/session"
	"github.com/openaudit/auditlens/internal/settings"
	"github.com/openaudit/auditlens/internal/snapshot"
	"github.com/openaudit/auditlens/internal/validation"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg          *config.Config
	client       *backend.Client
	sessions     *session.Manager
	snapshots    *snapshot.Store
	overrides    *review.OverrideStore
	reviews      *review.Service
	chats        *chat.Service
	settings     *settings.Store
	feedPoller   *poller.Poller
	realtimeHub  *realtime.Hub
	adminSvc     *admin.Service
	rateLimiter  *ratelimit.Limiter
	healthChecks *health.Registry
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	// Apply options first (may set logger)
	for _, opt := range opts {
		opt(s)
	}

	// Token store: file-backed when TOKEN_PATH is set so a restart resumes
	// the operator's session
	var tokens session.TokenStore
	if cfg.TokenPath != "" {
		fs, err := session.NewFileStore(cfg.TokenPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open token store: %w", err)
		}
		tokens = fs
		s.logger.Info("session persistence enabled", "path", cfg.TokenPath)
	} else {
		tokens = session.NewMemoryStore()
		s.logger.Info("session is in-memory (will not survive restart)")
	}

	// Backend client. The 401 callback is wired through a closure because
	// the session manager needs the client to exist first.
	s.client = backend.New(cfg.APIBaseURL, cfg.APITimeout, tokens,
		logging.Component(s.logger, "backend"),
		backend.WithOnUnauthorized(func() {
			if s.sessions != nil {
				s.sessions.Invalidate()
			}
		}),
	)
	s.sessions = session.New(tokens, s.client, logging.Component(s.logger, "session"))

	// Settings store. Defaults come from the environment config, so POLL_INTERVAL
	// and ALERT_LIMIT apply until the operator saves an override.
	defaults := settings.Defaults()
	defaults.PollInterval = cfg.PollInterval
	defaults.FeedLimit = cfg.AlertLimit
	st, err := settings.NewStore(cfg.SettingsPath, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	s.settings = st

	// Live feed plumbing: hub, snapshot store, poller. Committed snapshots
	// pass through the override store first so synced overrides the backend
	// has caught up with get dropped.
	s.realtimeHub = realtime.NewHub(logging.Component(s.logger, "realtime"))
	s.snapshots = snapshot.NewStore()
	s.overrides = review.NewOverrideStore()
	s.feedPoller = poller.New(s.client, s.snapshots,
		&feedNotifier{hub: s.realtimeHub, overrides: s.overrides},
		logging.Component(s.logger, "poller"),
		poller.Config{
			PollInterval:   cfg.PollInterval,
			HealthInterval: cfg.HealthInterval,
			AlertLimit:     cfg.AlertLimit,
			MinScore:       cfg.MinScore,
			Tuner:          st,
		})

	// Triage workflow
	s.reviews = review.NewService(s.client, s.overrides, s.realtimeHub,
		logging.Component(s.logger, "review"))

	// Policy assistant transcript
	s.chats = chat.NewService(s.client, logging.Component(s.logger, "chat"))

	// Admin endpoints
	s.adminSvc = admin.New(cfg.AdminSecret, s.client, s.realtimeHub,
		logging.Component(s.logger, "admin"))
	if cfg.AdminSecret == "" {
		s.logger.Warn("ADMIN_SECRET not set, admin endpoints disabled")
	}

	// Readiness checks
	s.healthChecks = health.NewRegistry()
	s.healthChecks.Register("backend", func(ctx context.Context) health.Status {
		h := s.client.Health(ctx)
		return health.Status{Name: "backend", Healthy: h.Up(), Detail: h.Status}
	})

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS
	s.router.Use(security.CORSMiddleware(s.cfg.CORSOrigins))

	// Request size limit (1MB; uploads use their own larger limit)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxUploadSize))

	// Rate limiting
	rlCfg := ratelimit.DefaultConfig()
	rlCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	s.rateLimiter = ratelimit.New(rlCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// requireSession rejects requests while no operator is signed in. Read
// endpoints stay open; everything that writes through to the backend or
// spends its resources sits behind this.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.sessions.State() != session.StateAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "not_signed_in",
				"message": "Sign in to perform this action",
			})
			return
		}
		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// PAGES - what the operator browses
	s.router.GET("/", dashboardPageHandler)
	s.router.GET("/alerts", alertsPageHandler)
	s.router.GET("/entities", entitiesPageHandler)
	s.router.GET("/departments", departmentsPageHandler)
	s.router.GET("/network", networkPageHandler)
	s.router.GET("/benford", benfordPageHandler)
	s.router.GET("/heatmap", heatmapPageHandler)
	s.router.GET("/upload", uploadPageHandler)
	s.router.GET("/chat", chatPageHandler)
	s.router.GET("/settings", settingsPageHandler)
	s.router.GET("/login", loginPageHandler)

	// WebSocket for the live feed
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	// V1 API group
	v1 := s.router.Group("/v1")

	// PUBLIC READS - every page renders from these; all fail soft
	v1.GET("/dashboard", s.dashboardViewHandler)
	v1.GET("/alerts", s.alertsViewHandler)
	v1.GET("/stats", s.statsViewHandler)
	v1.GET("/entities", s.entitiesViewHandler)
	v1.GET("/departments", s.departmentsViewHandler)
	v1.GET("/network", s.networkViewHandler)
	v1.GET("/benford", s.benfordViewHandler)
	v1.GET("/risk/districts", s.districtRiskViewHandler)
	v1.GET("/risk/departments", s.departmentRiskViewHandler)
	v1.GET("/connectivity", s.connectivityViewHandler)

	// AUTH - session lifecycle
	v1.POST("/auth/login", s.loginHandler)
	v1.POST("/auth/register", s.registerHandler)
	v1.POST("/auth/logout", s.logoutHandler)
	v1.GET("/auth/session", s.sessionInfoHandler)

	// PROTECTED - anything that mutates or spends backend resources
	protected := v1.Group("")
	protected.Use(s.requireSession())
	{
		protected.PATCH("/alerts/:id/status", s.updateStatusHandler)
		protected.POST("/alerts/:id/dismiss", s.dismissHandler)
		protected.POST("/predict", s.predictHandler)
		protected.POST("/upload", s.uploadHandler)

		protected.GET("/chat", s.chatTranscriptHandler)
		protected.POST("/chat", s.chatAskHandler)
		protected.DELETE("/chat", s.chatClearHandler)

		protected.GET("/settings", s.settingsGetHandler)
		protected.PUT("/settings", s.settingsPutHandler)
		protected.POST("/settings/reset", s.settingsResetHandler)
	}

	// ADMIN - secret-gated destructive actions
	s.adminSvc.Register(v1.Group("/admin"))
}

// -----------------------------------------------------------------------------
// Health handlers
// -----------------------------------------------------------------------------

// HealthResponse for health check endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	allHealthy, statuses := s.healthChecks.CheckAll(ctx)

	checks := make(map[string]string, len(statuses))
	for _, st := range statuses {
		if st.Healthy {
			checks[st.Name] = "healthy"
		} else {
			checks[st.Name] = st.Detail
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		// The console serves cached data while the backend is down, so a
		// failed backend check degrades rather than fails health.
		status = "degraded"
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	// Try to resume a persisted session before the first poll
	if s.sessions.Resume(runCtx) {
		s.logger.Info("resumed previous session")
	}

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"backend", s.cfg.APIBaseURL,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.realtimeHub.Run(runCtx)

	// Start the feed poller
	s.feedPoller.Start(runCtx)

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, poller)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop the feed poller
	s.feedPoller.Stop()

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// feedNotifier sits between the poller and the hub: each committed snapshot
// reconciles the override store before it is broadcast.
type feedNotifier struct {
	hub       *realtime.Hub
	overrides *review.OverrideStore
}

func (n *feedNotifier) NotifyAlerts(snap snapshot.Snapshot) {
	n.overrides.Reconcile(snap.Alerts)
	n.hub.NotifyAlerts(snap)
}

func (n *feedNotifier) NotifyConnectivity(online bool) {
	n.hub.NotifyConnectivity(online)
}

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
