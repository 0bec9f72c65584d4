package gate

import "sync"

// inflight tracks verification attempts currently being processed so a
// session cannot run two for the same profile at once.
type inflight struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{pending: make(map[string]struct{})}
}

// acquire claims the slot for key. The returned release must be called once
// the attempt ends. ok is false when the slot is already held.
func (f *inflight) acquire(key string) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.pending[key]; busy {
		return nil, false
	}
	f.pending[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.pending, key)
		f.mu.Unlock()
	}, true
}

func (f *inflight) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
