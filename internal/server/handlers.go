package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openaudit/auditlens/internal/aggregate"
	"github.com/openaudit/auditlens/internal/backend"
	"github.com/openaudit/auditlens/internal/logging"
	"github.com/openaudit/auditlens/internal/pagination"
	"github.com/openaudit/auditlens/internal/review"
	"github.com/openaudit/auditlens/internal/session"
	"github.com/openaudit/auditlens/internal/settings"
	"github.com/openaudit/auditlens/internal/validation"
)

// -----------------------------------------------------------------------------
// Feed views
// -----------------------------------------------------------------------------

// dashboardViewHandler returns everything the dashboard page renders in one
// call: headline KPIs, the highest-risk alerts, trend buckets, and backend
// connectivity.
func (s *Server) dashboardViewHandler(c *gin.Context) {
	snap := s.snapshots.Current()
	alerts := s.overrides.Merge(snap.Alerts)
	kpis := aggregate.ComputeKPIs(alerts, s.settings.Current().Thresholds())
	monthly := aggregate.MonthlyCounts(alerts)

	// Backend stats carry the full-history trend; client-side buckets only
	// cover what the feed window holds.
	if snap.Stats != nil && len(snap.Stats.MonthlyCounts) == 12 {
		copy(monthly[:], snap.Stats.MonthlyCounts)
	}

	c.JSON(http.StatusOK, gin.H{
		"generation": snap.Generation,
		"fetched_at": snap.FetchedAt,
		"online":     s.snapshots.Online(),
		"kpis": gin.H{
			"total_alerts":   kpis.TotalAlerts,
			"critical_count": kpis.CriticalCount,
			"high_count":     kpis.HighCount,
			"medium_count":   kpis.MediumCount,
			"low_count":      kpis.LowCount,
			"total_amount":   kpis.TotalAmount,
			"amount_display": aggregate.FormatAmount(kpis.TotalAmount),
			"mean_score":     kpis.MeanScore,
			"score_display":  aggregate.FormatPercent(kpis.MeanScore),
		},
		"top_alerts":     s.decorate(aggregate.TopAlerts(alerts, 10)),
		"monthly_counts": monthly,
		"bar_heights":    aggregate.BarHeights(monthly, 100),
		"stats":          snap.Stats,
	})
}

// alertsViewHandler pages through the merged alert queue.
// Query: cursor, limit, min_score, tier.
func (s *Server) alertsViewHandler(c *gin.Context) {
	snap := s.snapshots.Current()
	alerts := s.overrides.Merge(snap.Alerts)

	if raw := c.Query("min_score"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || !validation.IsValidScore(min) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_min_score"})
			return
		}
		alerts = filterAlerts(alerts, func(a backend.Alert) bool { return a.RiskScore >= min })
	}

	if tier := c.Query("tier"); tier != "" {
		cfg := s.settings.Current()
		alerts = filterAlerts(alerts, func(a backend.Alert) bool { return cfg.Tier(a.RiskScore) == tier })
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	cursor, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cursor"})
		return
	}

	page, next := pagination.Page(alerts, snap.Generation, cursor, limit)
	c.JSON(http.StatusOK, gin.H{
		"generation":  snap.Generation,
		"total":       len(alerts),
		"alerts":      s.decorate(page),
		"next_cursor": next,
		"online":      s.snapshots.Online(),
	})
}

func (s *Server) statsViewHandler(c *gin.Context) {
	snap := s.snapshots.Current()
	if snap.Stats == nil {
		// Feed has not committed yet; ask the backend directly
		if stats := s.client.Stats(c.Request.Context()); stats != nil {
			c.JSON(http.StatusOK, stats)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, snap.Stats)
}

func (s *Server) connectivityViewHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online":     s.snapshots.Online(),
		"generation": s.snapshots.Generation(),
	})
}

// decoratedAlert is an alert plus console-derived presentation fields.
type decoratedAlert struct {
	backend.Alert
	Tier          string `json:"tier"`
	AmountDisplay string `json:"amount_display"`
	ScoreDisplay  string `json:"score_display"`
	TimeAgo       string `json:"time_ago"`
	SyncState     string `json:"sync_state,omitempty"`
}

// decorate layers tier labels, display strings, and sync markers onto raw
// alerts.
func (s *Server) decorate(alerts []backend.Alert) []decoratedAlert {
	cfg := s.settings.Current()
	out := make([]decoratedAlert, len(alerts))
	for i, a := range alerts {
		out[i] = decoratedAlert{
			Alert:         a,
			Tier:          cfg.Tier(a.RiskScore),
			AmountDisplay: aggregate.FormatAmount(a.Amount),
			ScoreDisplay:  aggregate.FormatPercent(a.RiskScore),
			TimeAgo:       aggregate.TimeAgo(a.CreatedAt),
		}
		if o, ok := s.overrides.Get(a.TransactionID); ok {
			out[i].SyncState = o.SyncState
		}
	}
	return out
}

func filterAlerts(alerts []backend.Alert, keep func(backend.Alert) bool) []backend.Alert {
	out := make([]backend.Alert, 0, len(alerts))
	for _, a := range alerts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Analytics views (fail-soft proxies)
// -----------------------------------------------------------------------------

func (s *Server) entitiesViewHandler(c *gin.Context) {
	entities := s.client.Entities(c.Request.Context())
	if entities == nil {
		// Fall back to a client-side rollup of the current feed so the page
		// still shows something while the endpoint is down.
		snap := s.snapshots.Current()
		groups := aggregate.GroupByVendor(s.overrides.Merge(snap.Alerts), s.settings.Current().Thresholds())
		c.JSON(http.StatusOK, gin.H{"entities": []backend.Entity{}, "fallback": groups, "online": s.snapshots.Online()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities, "online": s.snapshots.Online()})
}

func (s *Server) departmentsViewHandler(c *gin.Context) {
	departments := s.client.Departments(c.Request.Context())
	if departments == nil {
		snap := s.snapshots.Current()
		groups := aggregate.GroupByDepartment(s.overrides.Merge(snap.Alerts), s.settings.Current().Thresholds())
		c.JSON(http.StatusOK, gin.H{"departments": []backend.Department{}, "fallback": groups, "online": s.snapshots.Online()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments, "online": s.snapshots.Online()})
}

func (s *Server) networkViewHandler(c *gin.Context) {
	graph := s.client.NetworkGraph(c.Request.Context())
	if graph == nil {
		c.JSON(http.StatusOK, gin.H{"nodes": []backend.GraphNode{}, "links": []backend.GraphLink{}, "online": s.snapshots.Online()})
		return
	}
	c.JSON(http.StatusOK, graph)
}

func (s *Server) benfordViewHandler(c *gin.Context) {
	b := s.client.Benford(c.Request.Context())
	if b == nil {
		c.JSON(http.StatusOK, backend.Benford{Valid: false, Error: "analysis unavailable"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) districtRiskViewHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cells": s.client.DistrictRisk(c.Request.Context())})
}

func (s *Server) departmentRiskViewHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cells": s.client.DepartmentRisk(c.Request.Context())})
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

func (s *Server) loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body"})
		return
	}

	req.Email = validation.SanitizeString(req.Email, 254)
	errs := validation.Validate(
		validation.Required("email", req.Email),
		validation.ValidEmail("email", req.Email),
		validation.Required("password", req.Password),
	)
	if validation.RespondIfInvalid(c, errs) {
		return
	}

	result := s.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if !result.OK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login_failed", "message": result.Message})
		return
	}

	// Pick up the authenticated feed immediately
	s.refreshFeed()

	c.JSON(http.StatusOK, gin.H{"signed_in": true, "user": result.User})
}

func (s *Server) registerHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body"})
		return
	}

	req.Email = validation.SanitizeString(req.Email, 254)
	req.FullName = validation.SanitizeString(req.FullName, 200)
	errs := validation.Validate(
		validation.Required("email", req.Email),
		validation.ValidEmail("email", req.Email),
		validation.Required("password", req.Password),
	)
	if validation.RespondIfInvalid(c, errs) {
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weak_password", "message": "Password must be at least 8 characters"})
		return
	}

	user, err := s.client.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		logging.L(c.Request.Context()).Warn("registration rejected", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "registration_failed", "message": backendMessage(err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (s *Server) logoutHandler(c *gin.Context) {
	s.sessions.Logout()
	c.JSON(http.StatusOK, gin.H{"signed_in": false})
}

func (s *Server) sessionInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":     s.sessions.State().String(),
		"signed_in": s.sessions.State() == session.StateAuthenticated,
		"user":      s.sessions.User(),
	})
}

// -----------------------------------------------------------------------------
// Triage
// -----------------------------------------------------------------------------

func (s *Server) updateStatusHandler(c *gin.Context) {
	id := c.Param("id")
	if !validation.IsValidTransactionID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transaction_id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !review.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	// Current status comes from the merged feed, so a second transition in
	// quick succession validates against the override, not stale feed data.
	from, ok := s.currentStatus(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert_not_found"})
		return
	}

	err := s.reviews.Apply(c.Request.Context(), id, from, req.Status)
	switch {
	case errors.Is(err, review.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid_transition",
			"message": err.Error(),
		})
	case err != nil:
		// The override has already been rolled back; tell the page so it
		// can show the failure marker.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":          "commit_failed",
			"message":        backendMessage(err),
			"status":         from,
			"sync_state":     review.SyncFailed,
			"transaction_id": id,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"transaction_id": id,
			"status":         req.Status,
			"sync_state":     review.SyncSynced,
		})
	}
}

func (s *Server) dismissHandler(c *gin.Context) {
	id := c.Param("id")
	if !validation.IsValidTransactionID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transaction_id"})
		return
	}
	s.reviews.Dismiss(id)
	c.JSON(http.StatusOK, gin.H{"dismissed": true})
}

// currentStatus resolves an alert's status as the operator sees it.
func (s *Server) currentStatus(transactionID string) (string, bool) {
	if o, ok := s.overrides.Get(transactionID); ok {
		return o.Status, true
	}
	for _, a := range s.snapshots.Current().Alerts {
		if a.TransactionID == transactionID {
			if a.Status == "" {
				return review.StatusPending, true
			}
			return a.Status, true
		}
	}
	return "", false
}

// -----------------------------------------------------------------------------
// Scoring tools
// -----------------------------------------------------------------------------

func (s *Server) predictHandler(c *gin.Context) {
	var tx backend.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body"})
		return
	}

	errs := validation.Validate(
		validation.Required("transaction_id", tx.TransactionID),
		validation.ValidTransactionID("transaction_id", tx.TransactionID),
		validation.Required("vendor_id", tx.VendorID),
		validation.Required("department_id", tx.DepartmentID),
	)
	if validation.RespondIfInvalid(c, errs) {
		return
	}
	if tx.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount", "message": "Amount must be positive"})
		return
	}

	p, err := s.client.Predict(c.Request.Context(), tx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "predict_failed", "message": backendMessage(err)})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) uploadHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file", "message": "Attach a CSV file in the 'file' field"})
		return
	}
	defer file.Close()

	if header.Size > validation.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file_too_large"})
		return
	}

	result, err := s.client.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload_failed", "message": backendMessage(err)})
		return
	}

	// A batch upload changes the feed; refresh without waiting for the tick.
	s.refreshFeed()

	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------
// Chat
// -----------------------------------------------------------------------------

func (s *Server) chatTranscriptHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": s.chats.Transcript()})
}

func (s *Server) chatAskHandler(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body"})
		return
	}
	req.Message = validation.SanitizeString(req.Message, validation.MaxChatLength)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_message"})
		return
	}

	msg := s.chats.Ask(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (s *Server) chatClearHandler(c *gin.Context) {
	s.chats.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

// settingsPayload is the wire form of settings; poll interval is expressed
// in seconds for the page.
type settingsPayload struct {
	CriticalMin      float64 `json:"critical_min"`
	HighMin          float64 `json:"high_min"`
	MediumMin        float64 `json:"medium_min"`
	PollIntervalSecs int     `json:"poll_interval_secs"`
	FeedLimit        int     `json:"feed_limit"`
}

func toPayload(s settings.Settings) settingsPayload {
	return settingsPayload{
		CriticalMin:      s.CriticalMin,
		HighMin:          s.HighMin,
		MediumMin:        s.MediumMin,
		PollIntervalSecs: int(s.PollInterval / time.Second),
		FeedLimit:        s.FeedLimit,
	}
}

func (s *Server) settingsGetHandler(c *gin.Context) {
	c.JSON(http.StatusOK, toPayload(s.settings.Current()))
}

func (s *Server) settingsPutHandler(c *gin.Context) {
	var req settingsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body"})
		return
	}

	next := settings.Settings{
		CriticalMin:  req.CriticalMin,
		HighMin:      req.HighMin,
		MediumMin:    req.MediumMin,
		PollInterval: time.Duration(req.PollIntervalSecs) * time.Second,
		FeedLimit:    req.FeedLimit,
	}
	if err := s.settings.Save(next); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_settings", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPayload(s.settings.Current()))
}

func (s *Server) settingsResetHandler(c *gin.Context) {
	if err := s.settings.Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_failed"})
		return
	}
	c.JSON(http.StatusOK, toPayload(s.settings.Current()))
}

// refreshFeed kicks an out-of-band poll tick, detached from the request
// that triggered it.
func (s *Server) refreshFeed() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.feedPoller.Refresh(ctx)
	}()
}

// backendMessage extracts a safe display message from a backend error.
func backendMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, backend.ErrUnauthorized) {
		return "The backend rejected your session. Sign in again."
	}
	if errors.Is(err, backend.ErrNotFound) {
		return "The backend no longer has this record."
	}
	return "The audit service could not complete the request."
}
