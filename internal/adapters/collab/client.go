// Package collab fetches leads and analytics payloads from the CRM backend.
package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/pkg/logger"
	"github.com/Ismail26477/crm-main/pkg/metrics"
)

// Endpoint names, used as metric labels.
const (
	EndpointLeads     = "leads"
	EndpointUpcoming  = "upcoming_followups"
	EndpointAnalytics = "analytics"
	EndpointScores    = "lead_scores"
	EndpointTeam      = "team_performance"
	EndpointRealtime  = "realtime_metrics"
)

// Collaborator paths relative to the base URL.
const (
	PathLeads     = "/api/leads"
	PathAnalytics = "/api/analytics/dashboard"
	PathScores    = "/api/leads/scoring"
	PathTeam      = "/api/team/performance"
	PathRealtime  = "/api/dashboard/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	defaultBackoff  = 100 * time.Millisecond
	maxJitterMs     = 150
	errBodyLimit    = 1024
)

// HTTPClient is the subset of *http.Client the client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpc = c
		}
	}
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpc = &http.Client{Timeout: d}
		}
	}
}

// WithRetry sets the number of attempts and the base backoff. The wait
// before attempt i+1 is base<<i plus up to 150ms of jitter.
func WithRetry(attempts int, base time.Duration) Option {
	return func(cl *Client) {
		if attempts > 0 {
			cl.attempts = attempts
		}
		if base >= 0 {
			cl.backoff = base
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// WithJitter replaces the jitter source. Tests use it to remove randomness.
func WithJitter(f func() time.Duration) Option {
	return func(cl *Client) {
		if f != nil {
			cl.jitter = f
		}
	}
}

// Client talks to the six collaborator endpoints.
type Client struct {
	base     string
	httpc    HTTPClient
	attempts int
	backoff  time.Duration
	jitter   func() time.Duration
	log      logger.Logger
}

// New returns a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		jitter: func() time.Duration {
			return time.Duration(rand.Intn(maxJitterMs)) * time.Millisecond //nolint:gosec // jitter only
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("collab")
	}
	return c
}

type leadsEnvelope struct {
	Leads []json.RawMessage `json:"leads"`
}

// Leads fetches the full lead set. Records that fail to decode are dropped.
func (c *Client) Leads(ctx context.Context) ([]model.Lead, error) {
	return c.leads(ctx, EndpointLeads, c.base+PathLeads)
}

// UpcomingFollowups fetches leads with a scheduled follow-up.
func (c *Client) UpcomingFollowups(ctx context.Context) ([]model.Lead, error) {
	return c.leads(ctx, EndpointUpcoming, c.base+PathLeads+"?upcomingFollowups=true")
}

func (c *Client) leads(ctx context.Context, endpoint, u string) ([]model.Lead, error) {
	var env leadsEnvelope
	if err := c.getJSON(ctx, endpoint, u, &env); err != nil {
		return nil, err
	}
	out := make([]model.Lead, 0, len(env.Leads))
	dropped := 0
	for _, raw := range env.Leads {
		var l model.Lead
		if err := json.Unmarshal(raw, &l); err != nil {
			dropped++
			continue
		}
		out = append(out, l)
	}
	if dropped > 0 {
		c.log.Debug(ctx, "dropped undecodable leads",
			logger.String("endpoint", endpoint), logger.Int("dropped", dropped))
	}
	return out, nil
}

// Analytics fetches the analytics snapshot for [from, to].
func (c *Client) Analytics(ctx context.Context, from, to time.Time) (*model.Analytics, error) {
	q := url.Values{}
	q.Set("fromDate", from.UTC().Format(time.RFC3339Nano))
	q.Set("toDate", to.UTC().Format(time.RFC3339Nano))
	var out model.Analytics
	if err := c.getJSON(ctx, EndpointAnalytics, c.base+PathAnalytics+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeadScores fetches the lead scoring payload.
func (c *Client) LeadScores(ctx context.Context) (*model.LeadScores, error) {
	var out model.LeadScores
	if err := c.getJSON(ctx, EndpointScores, c.base+PathScores, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TeamPerformance fetches the team leaderboard payload.
func (c *Client) TeamPerformance(ctx context.Context) (*model.TeamPerformance, error) {
	var out model.TeamPerformance
	if err := c.getJSON(ctx, EndpointTeam, c.base+PathTeam, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RealtimeMetrics fetches the live counters.
func (c *Client) RealtimeMetrics(ctx context.Context) (*model.RealtimeMetrics, error) {
	var out model.RealtimeMetrics
	if err := c.getJSON(ctx, EndpointRealtime, c.base+PathRealtime, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON retries transport errors and 5xx/429 responses with exponential
// backoff and jitter. Other non-2xx statuses fail immediately.
func (c *Client) getJSON(ctx context.Context, endpoint, u string, dst any) error {
	start := time.Now()
	defer func() {
		metrics.RecordCollaboratorFetch(endpoint, float64(time.Since(start).Milliseconds()))
	}()

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			metrics.RecordCollaboratorRetry(endpoint)
			wait := time.Duration(1<<(i-1))*c.backoff + c.jitter()
			select {
			case <-ctx.Done():
				metrics.RecordCollaboratorError(endpoint)
				return fmt.Errorf("%s: %w: %w", endpoint, ErrCollaborator, ctx.Err())
			case <-time.After(wait):
			}
		}

		retry, err := c.fetch(ctx, u, dst)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		c.log.Debug(ctx, "collaborator fetch failed, retrying",
			logger.String("endpoint", endpoint), logger.Int("attempt", i+1), logger.Error(err))
	}
	metrics.RecordCollaboratorError(endpoint)
	return fmt.Errorf("%s: %w: %w", endpoint, ErrCollaborator, lastErr)
}

func (c *Client) fetch(ctx context.Context, u string, dst any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		retry = resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return retry, fmt.Errorf("%w: %d body=%s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return false, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return false, nil
}
