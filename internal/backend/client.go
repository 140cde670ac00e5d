// Package backend is the single point of contact with the remote audit API.
//
// Two failure policies coexist deliberately:
//   - Read endpoints fail soft: any transport, status, or decode failure is
//     logged, counted against the circuit breaker, and surfaced as a zero
//     value. Pages render empty states; the connectivity banner tells the
//     operator why.
//   - Write endpoints fail loud: callers get an error carrying the backend's
//     detail message so they can react (rollback, inline error, retry).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openaudit/auditlens/internal/circuitbreaker"
	"github.com/openaudit/auditlens/internal/metrics"
	"github.com/openaudit/auditlens/internal/traces"
)

// Errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// TokenSource supplies the bearer token for each request. The token is read
// on every call, so a logout mid-session is picked up by the next call.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() string

// Token implements TokenSource.
func (f TokenSourceFunc) Token() string { return f() }

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker sets a custom circuit breaker.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithOnUnauthorized registers a callback fired when the backend rejects the
// bearer token. The session manager uses this to drop the stale token.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client wraps HTTP access to the audit backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	breaker        *circuitbreaker.Breaker
	logger         *slog.Logger
	onUnauthorized func()
}

// New creates a backend client for the given base URL.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		breaker:    circuitbreaker.New(5, 30*time.Second),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// -----------------------------------------------------------------------------
// Read endpoints (fail soft)
// -----------------------------------------------------------------------------

// Alerts lists scored alerts, highest risk first. Returns nil on any failure.
func (c *Client) Alerts(ctx context.Context, limit int, minScore float64) []Alert {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("min_score", fmt.Sprint(minScore))

	var resp alertsResponse
	if err := c.getJSON(ctx, "alerts", "/api/alerts?"+q.Encode(), &resp); err != nil {
		return nil
	}
	return resp.Alerts
}

// Stats fetches the dashboard summary. Returns nil on any failure.
func (c *Client) Stats(ctx context.Context) *Stats {
	var s Stats
	if err := c.getJSON(ctx, "stats", "/api/stats", &s); err != nil {
		return nil
	}
	return &s
}

// Entities lists vendor aggregates. Returns nil on any failure.
func (c *Client) Entities(ctx context.Context) []Entity {
	var out []Entity
	if err := c.getJSON(ctx, "entities", "/api/entities", &out); err != nil {
		return nil
	}
	return out
}

// Departments lists departmental aggregates. Returns nil on any failure.
func (c *Client) Departments(ctx context.Context) []Department {
	var out []Department
	if err := c.getJSON(ctx, "departments", "/api/departments", &out); err != nil {
		return nil
	}
	return out
}

// NetworkGraph fetches the vendor/department relationship graph.
// Returns nil on any failure.
func (c *Client) NetworkGraph(ctx context.Context) *NetworkGraph {
	var g NetworkGraph
	if err := c.getJSON(ctx, "network", "/api/network/graph", &g); err != nil {
		return nil
	}
	return &g
}

// Benford fetches the leading-digit analysis. Returns nil on any failure.
func (c *Client) Benford(ctx context.Context) *Benford {
	var b Benford
	if err := c.getJSON(ctx, "benford", "/api/benford", &b); err != nil {
		return nil
	}
	return &b
}

// DistrictRisk fetches the district heatmap cells. Returns nil on any failure.
func (c *Client) DistrictRisk(ctx context.Context) []RiskCell {
	var out []RiskCell
	if err := c.getJSON(ctx, "risk", "/api/risk/districts", &out); err != nil {
		return nil
	}
	return out
}

// DepartmentRisk fetches the department heatmap cells. Returns nil on any failure.
func (c *Client) DepartmentRisk(ctx context.Context) []RiskCell {
	var out []RiskCell
	if err := c.getJSON(ctx, "risk", "/api/risk/departments", &out); err != nil {
		return nil
	}
	return out
}

// Health probes the backend. Never fails: unreachable backends report
// status "offline".
func (c *Client) Health(ctx context.Context) HealthStatus {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", nil, "")
	if err != nil {
		return HealthStatus{Status: "offline"}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{Status: "offline"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthStatus{Status: "unhealthy"}
	}

	var h HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return HealthStatus{Status: "unhealthy"}
	}
	return h
}

// -----------------------------------------------------------------------------
// Write endpoints (fail loud)
// -----------------------------------------------------------------------------

// Login exchanges credentials for a bearer token. The backend expects
// OAuth2-style form encoding with the email in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var t Token
	err := c.doJSON(ctx, "login", http.MethodPost, "/api/auth/login",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	body, _ := json.Marshal(map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	})

	var u User
	err := c.doJSON(ctx, "register", http.MethodPost, "/api/auth/register",
		bytes.NewReader(body), "application/json", &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser resolves the session behind the bearer token. Fails loud so the
// session manager can clear a rejected token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	err := c.doJSON(ctx, "me", http.MethodGet, "/api/users/me", nil, "", &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateAlertStatus commits an alert status transition.
func (c *Client) UpdateAlertStatus(ctx context.Context, transactionID, status string) error {
	body, _ := json.Marshal(map[string]string{"status": status})
	path := "/api/alerts/" + url.PathEscape(transactionID)
	return c.doJSON(ctx, "alert_status", http.MethodPatch, path,
		bytes.NewReader(body), "application/json", nil)
}

// ClearAlerts deletes every alert on the backend. Destructive.
func (c *Client) ClearAlerts(ctx context.Context) error {
	return c.doJSON(ctx, "clear_alerts", http.MethodDelete, "/api/alerts", nil, "", nil)
}

// Predict scores a single transaction.
func (c *Client) Predict(ctx context.Context, tx Transaction) (*Prediction, error) {
	body, _ := json.Marshal(tx)

	var p Prediction
	err := c.doJSON(ctx, "predict", http.MethodPost, "/api/predict",
		bytes.NewReader(body), "application/json", &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upload submits a CSV for batch analysis.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var result UploadResult
	err = c.doJSON(ctx, "upload", http.MethodPost, "/api/upload",
		&buf, mw.FormDataContentType(), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat asks the policy assistant a question.
func (c *Client) Chat(ctx context.Context, message string) (*ChatReply, error) {
	body, _ := json.Marshal(map[string]string{"message": message})

	var reply ChatReply
	err := c.doJSON(ctx, "chat", http.MethodPost, "/api/chat",
		bytes.NewReader(body), "application/json", &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// getJSON performs a fail-soft read guarded by the circuit breaker.
func (c *Client) getJSON(ctx context.Context, key, path string, out any) error {
	if !c.breaker.Allow(key) {
		metrics.BackendRequestsTotal.WithLabelValues(key, "short_circuit").Inc()
		return fmt.Errorf("circuit open for %s", key)
	}

	err := c.doJSON(ctx, key, http.MethodGet, path, nil, "", out)
	if err != nil {
		c.breaker.RecordFailure(key)
		c.logger.Warn("backend read failed", "endpoint", key, "error", err)
		return err
	}

	c.breaker.RecordSuccess(key)
	return nil
}

// doJSON issues a request and decodes the JSON response into out (if non-nil).
// Non-2xx responses become errors carrying the backend's detail message.
func (c *Client) doJSON(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string, out any) error {
	ctx, span := traces.StartSpan(ctx, "backend."+endpoint, traces.Endpoint(endpoint))
	defer span.End()

	timer := prometheus.NewTimer(metrics.BackendRequestDuration.WithLabelValues(endpoint))
	defer timer.ObserveDuration()

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return c.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
			return fmt.Errorf("decode response: %w", err)
		}
	}

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

// statusError converts a non-2xx response to an error, mining the body for
// the backend's human-readable detail message when present.
func (c *Client) statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, detailMessage(resp))
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detailMessage(resp))
	default:
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, detailMessage(resp))
	}
}

func detailMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	// FastAPI-style {"detail": "..."} bodies
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return resp.Status
}
