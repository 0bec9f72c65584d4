package models

import "time"

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RateLimitExceededResponse is the JSON body sent with a 429.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
