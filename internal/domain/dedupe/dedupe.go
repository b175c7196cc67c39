// Package dedupe tracks recently submitted match fingerprints so a
// double-clicked or replayed submission cannot create the same game
// twice in quick succession. Entries age out after a short window; the
// guard targets rapid retries, not legitimate rematches.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder records seen submission fingerprints.
type Recorder interface {
	// SeenAndRecord atomically checks whether fp was recorded and records
	// it if not. Returns true when fp was already present.
	SeenAndRecord(ctx context.Context, fp string) bool

	// Unrecord forgets fp so the submission may be retried, used when a
	// recorded submission failed in flight.
	Unrecord(ctx context.Context, fp string)

	// Size reports the number of tracked fingerprints.
	Size() int64
}

type entry struct {
	fp string
	at time.Time
}

// memoryRecorder keeps fingerprints in a bounded map with FIFO eviction.
// Entries older than the window expire on the next record. With
// maxSize <= 0 the count bound is off; with window <= 0 entries never
// expire by age.
type memoryRecorder struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []entry
	maxSize int
	window  time.Duration
	now     func() time.Time
	size    atomic.Int64
}

// NewMemoryRecorder creates a recorder with configuration options.
func NewMemoryRecorder(opts ...Option) Recorder {
	r := &memoryRecorder{
		maxSize: defaultMaxSize,
		window:  defaultWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.seen = make(map[string]struct{})
	return r
}

func (r *memoryRecorder) SeenAndRecord(_ context.Context, fp string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.expire(now)

	if _, ok := r.seen[fp]; ok {
		return true
	}
	if r.maxSize > 0 && len(r.seen) >= r.maxSize {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, oldest.fp)
		r.size.Add(-1)
	}
	r.seen[fp] = struct{}{}
	r.order = append(r.order, entry{fp: fp, at: now})
	r.size.Add(1)
	return false
}

func (r *memoryRecorder) Unrecord(_ context.Context, fp string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[fp]; !ok {
		return
	}
	delete(r.seen, fp)
	for i, e := range r.order {
		if e.fp == fp {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.size.Add(-1)
}

func (r *memoryRecorder) Size() int64 {
	return r.size.Load()
}

// expire drops entries older than the window. Caller holds the lock.
func (r *memoryRecorder) expire(now time.Time) {
	if r.window <= 0 {
		return
	}
	for len(r.order) > 0 && now.Sub(r.order[0].at) >= r.window {
		delete(r.seen, r.order[0].fp)
		r.order = r.order[1:]
		r.size.Add(-1)
	}
}
