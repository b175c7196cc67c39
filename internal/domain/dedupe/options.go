package dedupe

import "time"

// Defaults for the fingerprint window.
const (
	// defaultMaxSize bounds the fingerprint count; old entries age out FIFO.
	defaultMaxSize = 1024
	// defaultWindow expires fingerprints by age; long enough to absorb a
	// double click or a stuttering retry, short enough to let an identical
	// rematch through.
	defaultWindow = 10 * time.Second
)

// Option applies a configuration option to the memory recorder.
type Option func(*memoryRecorder)

// WithMaxSize sets how many fingerprints to retain. maxSize <= 0 means
// no count bound.
func WithMaxSize(maxSize int) Option {
	return func(r *memoryRecorder) {
		r.maxSize = maxSize
	}
}

// WithWindow sets how long a fingerprint blocks an identical submission.
// window <= 0 disables age expiry.
func WithWindow(window time.Duration) Option {
	return func(r *memoryRecorder) {
		r.window = window
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *memoryRecorder) {
		if now != nil {
			r.now = now
		}
	}
}
