// Package cache keeps the last successful verification answers for a browser
// session so a revisit within the freshness window can unlock the profile
// without asking again.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"donorprofile/internal/profile/models"
	"donorprofile/internal/verification/store"
	"donorprofile/pkg/platform/sentinel"
)

const (
	// Key is the fixed record key inside a session.
	Key = "verification_data"

	// FreshnessWindowMs is how long answers stay replayable after capture.
	FreshnessWindowMs int64 = 3_600_000
)

// Cache reads and writes the answer set through an injected session store.
type Cache struct {
	store  store.Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

func New(s store.Store, opts ...Option) *Cache {
	c := &Cache{
		store:  s,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the stored answers for uuid, or nil when there are none.
// Entries that are expired, belong to another profile, or cannot be decoded
// are removed before returning nil. Store failures are returned as errors.
func (c *Cache) Read(ctx context.Context, sessionID, uuid string) (*models.AnswerSet, error) {
	if sessionID == "" {
		return nil, nil
	}
	raw, err := c.store.Get(ctx, sessionID, Key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if errors.Is(err, sentinel.ErrCorrupt) {
		c.logger.WarnContext(ctx, "discarding corrupt verification record", "error", err)
		return nil, c.remove(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}

	var answers models.AnswerSet
	if err := json.Unmarshal(raw, &answers); err != nil {
		c.logger.WarnContext(ctx, "discarding corrupt verification record", "error", err)
		return nil, c.remove(ctx, sessionID)
	}

	age := c.now().UnixMilli() - answers.Timestamp
	if age >= FreshnessWindowMs {
		return nil, c.remove(ctx, sessionID)
	}
	if !strings.EqualFold(answers.UUID, uuid) {
		return nil, c.remove(ctx, sessionID)
	}
	return &answers, nil
}

// Write stamps answers with the current time and replaces any prior record.
// It returns the stamped copy.
func (c *Cache) Write(ctx context.Context, sessionID string, answers models.AnswerSet) (models.AnswerSet, error) {
	answers.Timestamp = c.now().UnixMilli()
	if sessionID == "" {
		return answers, nil
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return answers, err
	}
	return answers, c.store.Set(ctx, sessionID, Key, raw)
}

// Clear removes the session's record.
func (c *Cache) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return c.remove(ctx, sessionID)
}

func (c *Cache) remove(ctx context.Context, sessionID string) error {
	return c.store.Delete(ctx, sessionID, Key)
}
