// Package admin provides operator-of-last-resort endpoints: destructive
// actions that exist for drills and test environments, gated behind a
// shared secret that is never exposed to regular console users.
package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Purger is the slice of the backend client admin needs.
type Purger interface {
	ClearAlerts(ctx context.Context) error
}

// HubStats exposes live-feed connection statistics.
type HubStats interface {
	Stats() map[string]any
}

// Service wires admin operations.
type Service struct {
	secret string
	purger Purger
	hub    HubStats
	logger *slog.Logger
}

// New creates the admin service. An empty secret disables every admin
// endpoint rather than leaving them open.
func New(secret string, purger Purger, hub HubStats, logger *slog.Logger) *Service {
	return &Service{secret: secret, purger: purger, hub: hub, logger: logger}
}

// Middleware rejects requests without the admin secret. Comparison is
// constant-time.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.secret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin endpoints disabled"})
			return
		}
		provided := c.GetHeader("X-Admin-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(s.secret)) != 1 {
			s.logger.Warn("admin auth rejected", "remote", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ClearAlerts proxies the backend's destructive alert purge.
func (s *Service) ClearAlerts(c *gin.Context) {
	start := time.Now()
	if err := s.purger.ClearAlerts(c.Request.Context()); err != nil {
		s.logger.Error("alert purge failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend rejected the purge"})
		return
	}

	s.logger.Warn("all alerts purged", "remote", c.ClientIP(), "took", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// FeedStats reports live-feed connection statistics.
func (s *Service) FeedStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.hub.Stats())
}

// Register mounts admin routes on the given group.
func (s *Service) Register(rg *gin.RouterGroup) {
	rg.Use(s.Middleware())
	rg.DELETE("/alerts", s.ClearAlerts)
	rg.GET("/feed/stats", s.FeedStats)
}
