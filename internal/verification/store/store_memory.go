package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"donorprofile/pkg/platform/sentinel"
)

const memoryCleanupInterval = time.Minute

// InMemoryStore keeps session records in process memory. Records expire ttl
// after their last write.
type InMemoryStore struct {
	c   *gocache.Cache
	ttl time.Duration
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		c:   gocache.New(ttl, memoryCleanupInterval),
		ttl: ttl,
	}
}

func (s *InMemoryStore) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	v, ok := s.c.Get(recordKey(sessionID, key))
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, sentinel.ErrCorrupt
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *InMemoryStore) Set(_ context.Context, sessionID, key string, value []byte) error {
	b := make([]byte, len(value))
	copy(b, value)
	s.c.Set(recordKey(sessionID, key), b, s.ttl)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID, key string) error {
	s.c.Delete(recordKey(sessionID, key))
	return nil
}

// Len reports how many live records are held.
func (s *InMemoryStore) Len() int {
	return s.c.ItemCount()
}
