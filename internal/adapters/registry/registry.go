// Package registry stores live roster sessions in memory. A session is
// exclusively owned by one operator view; it is created at view mount,
// touched on every interaction, and discarded on navigation away or
// after sitting idle past the TTL. Nothing is persisted.
package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/matchdesk/internal/domain/match"
	"github.com/okian/matchdesk/internal/domain/roster"
)

// Session bundles one view's roster state: the column model, the score
// inputs, and the in-flight submission flag.
type Session struct {
	ID     string
	Roster *roster.Roster

	// LoadFailed marks a session whose pool seeding failed; the view
	// shows an empty roster with a load-failure indicator.
	LoadFailed bool

	// scores guards the free-text score entry.
	scoresMu sync.Mutex
	scores   match.ScoreEntry

	// inFlight serializes submission per session: at most one
	// outstanding create-game call; concurrent attempts are rejected,
	// never queued.
	inFlight atomic.Bool
}

// Scores returns the current score entry.
func (s *Session) Scores() match.ScoreEntry {
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()
	return s.scores
}

// SetScores replaces the score entry.
func (s *Session) SetScores(entry match.ScoreEntry) {
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()
	s.scores = entry
}

// BeginSubmit claims the in-flight slot. Returns false when a
// submission is already outstanding.
func (s *Session) BeginSubmit() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

// EndSubmit releases the slot. Callers defer this so the release happens
// on success and failure alike.
func (s *Session) EndSubmit() {
	s.inFlight.Store(false)
}

// Submitting reports whether a submission is outstanding.
func (s *Session) Submitting() bool {
	return s.inFlight.Load()
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry is the in-memory session store with TTL eviction.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

// New creates a registry with configuration options.
func New(opts ...Option) *Registry {
	r := &Registry{
		ttl:         defaultTTL,
		maxSessions: defaultMaxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sessions = make(map[string]*entry)
	return r
}

// Create registers a new session around the given roster and returns it.
func (r *Registry) Create(_ context.Context, ro *roster.Roster, loadFailed bool) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxSessions {
		return nil, ErrFull
	}
	s := &Session{
		ID:         uuid.NewString(),
		Roster:     ro,
		LoadFailed: loadFailed,
	}
	r.sessions[s.ID] = &entry{session: s, lastSeen: r.now()}
	return s, nil
}

// Get returns the session and refreshes its idle timer.
func (r *Registry) Get(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = r.now()
	return e.session, nil
}

// Delete discards a session. Deleting an unknown id is a no-op so that
// navigation-away races stay harmless.
func (r *Registry) Delete(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *Registry) Len(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SweepExpired evicts sessions idle past the TTL and returns how many
// were removed. A session with a submission in flight is spared until
// the guard releases.
func (r *Registry) SweepExpired(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	evicted := 0
	for id, e := range r.sessions {
		if e.lastSeen.After(cutoff) || e.session.Submitting() {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	return evicted
}
