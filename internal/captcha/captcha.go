// Package captcha checks reCAPTCHA tokens against the siteverify endpoint.
// Every failure mode (network, non-2xx, parse, success=false) is a rejection.
package captcha

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
)

// DefaultEndpoint is Google's verification endpoint.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// Error codes added locally when no upstream code applies.
const (
	CodeMissingSecret   = "missing-input-secret"
	CodeMissingResponse = "missing-input-response"
	CodeRequestFailed   = "request-failed"
	CodeBadResponse     = "bad-response"

	// CodeDuplicate matches the upstream code for a reused token.
	CodeDuplicate = "timeout-or-duplicate"
)

const maxBodyBytes = 64 << 10

// Result is the verdict for one token.
type Result struct {
	Success    bool
	ErrorCodes []string
	Hostname   string
}

type siteverifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Client verifies tokens with a server-held secret.
type Client struct {
	secret     string
	endpoint   string
	httpClient *http.Client
	metrics    *Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the siteverify URL.
func WithEndpoint(u string) Option {
	return func(c *Client) {
		c.endpoint = u
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(secret string, opts ...Option) *Client {
	c := &Client{
		secret:     secret,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
		tracer:     otel.Tracer("donorprofile/captcha"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify reports whether token is accepted.
func (c *Client) Verify(ctx context.Context, token string) bool {
	return c.Check(ctx, token, "").Success
}

// Check verifies token and returns the verdict with any error codes.
// remoteIP is forwarded when non-empty.
func (c *Client) Check(ctx context.Context, token, remoteIP string) Result {
	ctx, span := c.tracer.Start(ctx, "captcha.verify")
	defer span.End()

	result := c.check(ctx, token, remoteIP)
	span.SetAttributes(attribute.Bool("captcha.success", result.Success))
	if !result.Success {
		span.SetStatus(codes.Error, strings.Join(result.ErrorCodes, ","))
		c.logger.InfoContext(ctx, "captcha rejected", "error_codes", result.ErrorCodes)
	}
	c.metrics.IncrementOutcome(result)
	return result
}

func (c *Client) check(ctx context.Context, token, remoteIP string) Result {
	if c.secret == "" {
		c.logger.WarnContext(ctx, "captcha secret not configured, rejecting token")
		return reject(CodeMissingSecret)
	}
	if token == "" {
		return reject(CodeMissingResponse)
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return reject(CodeRequestFailed)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "captcha verification request failed", "error", err)
		return reject(CodeRequestFailed)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return reject(CodeRequestFailed)
	}
	result, err := parseSiteverifyResponse(resp.StatusCode, body)
	if err != nil {
		c.logger.WarnContext(ctx, "captcha verification response unusable", "error", err)
		return reject(CodeBadResponse)
	}
	return result
}

func parseSiteverifyResponse(status int, body []byte) (Result, error) {
	if status < 200 || status > 299 {
		return Result{}, fmt.Errorf("unexpected status %d", status)
	}
	var r siteverifyResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Result{}, fmt.Errorf("decode siteverify response: %w", err)
	}
	return Result{Success: r.Success, ErrorCodes: r.ErrorCodes, Hostname: r.Hostname}, nil
}

func reject(code string) Result {
	return Result{Success: false, ErrorCodes: []string{code}}
}
