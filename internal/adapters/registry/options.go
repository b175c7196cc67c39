package registry

import "time"

// Default registry configuration constants.
const (
	defaultTTL         = 30 * time.Minute
	defaultMaxSessions = 256
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithTTL sets how long an idle session survives before the sweeper
// evicts it.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithMaxSessions caps concurrently held sessions.
func WithMaxSessions(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxSessions = n
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}
