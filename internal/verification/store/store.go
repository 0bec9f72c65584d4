// Package store holds per-session key/value records. It is the server-side
// stand-in for browser session storage: records belong to one session id and
// disappear when that session goes idle past its TTL.
package store

import "context"

// Store is a session-scoped key/value store.
// Get returns sentinel.ErrNotFound when the record does not exist.
type Store interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}

func recordKey(sessionID, key string) string {
	return sessionID + ":" + key
}
