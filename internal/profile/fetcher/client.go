// Package fetcher looks donor profiles up on the upstream profile API and
// classifies each response as not found, partial, or full.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"donorprofile/internal/profile/adapter"
	"donorprofile/internal/profile/metrics"
	"donorprofile/internal/profile/models"
	"donorprofile/pkg/platform/circuit"
)

// Status classifies a successful round trip.
type Status int

const (
	StatusNotFound Status = iota
	StatusPartial
	StatusFull
)

func (s Status) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusFull:
		return "full"
	default:
		return "not_found"
	}
}

// Result is the outcome of Fetch. Profile is nil when Status is StatusNotFound.
type Result struct {
	Status  Status
	Profile *models.APIProfile
}

const (
	profilePath    = "/api/public_profiles/"
	maxBodyBytes   = 1 << 20
	defaultTimeout = 10 * time.Second
	tracerName     = "donorprofile/fetcher"
	breakerName    = "profile-api"
)

// Client calls the upstream profile API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, including its timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New builds a Client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    circuit.New(breakerName),
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch looks up the profile for uuid. When answers is non-nil its gender,
// id number, phone number and birthday are attached as query parameters.
// Non-404 failures return an *Error; callers decide how to collapse them.
func (c *Client) Fetch(ctx context.Context, uuid string, answers *models.AnswerSet) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "profile.fetch", trace.WithAttributes(
		attribute.Bool("profile.verified_request", answers != nil),
	))
	defer span.End()

	if !c.breaker.Allow() {
		c.metrics.IncrementOutcome(string(ErrorCircuitOpen))
		err := newError(ErrorCircuitOpen, 0, "circuit open, skipping upstream call", nil)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(uuid, answers), nil)
	if err != nil {
		return Result{}, newError(ErrorTransport, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveLatency(answers != nil, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, c.canceled(span, 0, err)
		}
		fe := newError(ErrorTransport, 0, "request failed", err)
		c.recordFailure(ctx, fe)
		span.RecordError(err)
		span.SetStatus(codes.Error, fe.Error())
		return Result{}, fe
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, c.canceled(span, resp.StatusCode, err)
		}
		fe := newError(ErrorTransport, resp.StatusCode, "read body", err)
		c.recordFailure(ctx, fe)
		span.SetStatus(codes.Error, fe.Error())
		return Result{}, fe
	}

	result, err := parseProfileResponse(resp.StatusCode, body)
	if err != nil {
		c.recordFailure(ctx, err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	c.recordSuccess(ctx)
	c.metrics.IncrementOutcome(result.Status.String())
	span.SetAttributes(attribute.String("profile.status", result.Status.String()))
	return result, nil
}

func (c *Client) requestURL(uuid string, answers *models.AnswerSet) string {
	u := c.baseURL + profilePath + url.PathEscape(uuid)
	if answers == nil {
		return u
	}
	q := url.Values{}
	q.Set("gender", answers.Gender)
	q.Set("id_number", answers.IDNumber)
	q.Set("phone_number", answers.PhoneNumber)
	q.Set("birthday", adapter.FormatBirthdayForAPI(answers.DateOfBirth))
	return u + "?" + q.Encode()
}

// parseProfileResponse maps an upstream status and body to a Result.
func parseProfileResponse(status int, body []byte) (Result, error) {
	var completeness Status
	switch status {
	case http.StatusNotFound:
		return Result{Status: StatusNotFound}, nil
	case http.StatusPartialContent:
		completeness = StatusPartial
	case http.StatusOK:
		completeness = StatusFull
	default:
		return Result{}, newError(ErrorUpstreamStatus, status, fmt.Sprintf("unexpected status %d", status), nil)
	}

	var profile models.APIProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return Result{}, newError(ErrorBadData, status, "decode profile", err)
	}
	return Result{Status: completeness, Profile: &profile}, nil
}

// canceled reports a call abandoned by the caller. The breaker is left alone.
func (c *Client) canceled(span trace.Span, status int, err error) *Error {
	fe := newError(ErrorCanceled, status, "request canceled", err)
	c.metrics.IncrementOutcome(string(ErrorCanceled))
	span.SetStatus(codes.Error, fe.Error())
	return fe
}

func (c *Client) recordFailure(ctx context.Context, err error) {
	c.metrics.IncrementOutcome(string(GetCategory(err)))
	if !IsRetryable(err) {
		return
	}
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.metrics.SetCircuitOpen(true)
		c.logger.WarnContext(ctx, "profile api circuit opened", "breaker", c.breaker.Name(), "error", err)
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	_, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.metrics.SetCircuitOpen(false)
		c.logger.InfoContext(ctx, "profile api circuit closed", "breaker", c.breaker.Name())
	}
}
