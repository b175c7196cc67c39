// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/matchdesk/internal/adapters/registry"
	"github.com/okian/matchdesk/internal/adapters/upstream"
	"github.com/okian/matchdesk/internal/domain/dedupe"
	"github.com/okian/matchdesk/internal/domain/match"
	"github.com/okian/matchdesk/internal/domain/rating"
	"github.com/okian/matchdesk/internal/domain/roster"
	"github.com/okian/matchdesk/pkg/logger"
	"github.com/okian/matchdesk/pkg/metrics"
)

// Backend is the slice of the rating backend the service consumes.
// *upstream.Client satisfies it; tests substitute fakes.
type Backend interface {
	ActivePlayers(ctx context.Context) ([]upstream.Player, error)
	Leaderboard(ctx context.Context, scope rating.Scope) ([]rating.Player, error)
	CreateGame(ctx context.Context, payload match.Payload) (upstream.CreatedGame, error)
}

// Phase names one half of the drag lifecycle.
type Phase string

// Drag phases as the drag layer reports them.
const (
	PhaseConsider Phase = "consider"
	PhaseFinalize Phase = "finalize"
)

// View is the read model of one session handed to the HTTP layer.
type View struct {
	ID         string           `json:"id"`
	Version    uint64           `json:"version"`
	LoadFailed bool             `json:"load_failed,omitempty"`
	Submitting bool             `json:"submitting"`
	Scores     match.ScoreEntry `json:"scores"`
	Pool       []roster.Item    `json:"pool"`
	TeamA      []roster.Item    `json:"team_a"`
	TeamB      []roster.Item    `json:"team_b"`
}

// SubmitResult reports a stored game back to the operator.
type SubmitResult struct {
	GameID int64 `json:"game_id,omitempty"`
}

// Service implements the API dependencies for the match desk.
type Service struct {
	mu sync.RWMutex

	// Core components
	backend  Backend
	sessions *registry.Registry
	recent   dedupe.Recorder
	inflight singleflight.Group

	// Configuration
	defaultScope       rating.Scope
	sessionTTL         time.Duration
	sweepInterval      time.Duration
	maxSessions        int
	recentSubmitSize   int
	recentSubmitWindow time.Duration

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBackend injects the rating-backend client.
func WithBackend(b Backend) Option {
	return func(s *Service) {
		if b != nil {
			s.backend = b
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultScope sets the leaderboard scope used when none is named.
func WithDefaultScope(scope string) Option {
	return func(s *Service) {
		if scope != "" {
			s.defaultScope = rating.ParseScope(scope)
		}
	}
}

// WithSessionTTL sets how long idle sessions survive.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSweepInterval sets the eviction sweep cadence.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithMaxSessions caps concurrently open sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithRecentSubmitSize bounds the duplicate-submission window by count.
func WithRecentSubmitSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentSubmitSize = n
		}
	}
}

// WithRecentSubmitWindow bounds the duplicate-submission window by age.
func WithRecentSubmitWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.recentSubmitWindow = d
		}
	}
}

// Default service configuration constants.
const (
	defaultSessionTTL    = 30 * time.Minute
	defaultSweepInterval = time.Minute
	defaultMaxSessions   = 256
	defaultRecentSubmits = 1024
	defaultRecentWindow  = 10 * time.Second
)

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultScope:       rating.DefaultScope,
		sessionTTL:         defaultSessionTTL,
		sweepInterval:      defaultSweepInterval,
		maxSessions:        defaultMaxSessions,
		recentSubmitSize:   defaultRecentSubmits,
		recentSubmitWindow: defaultRecentWindow,
		stopCh:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components and the eviction sweeper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting match desk service...")

	s.sessions = registry.New(
		registry.WithTTL(s.sessionTTL),
		registry.WithMaxSessions(s.maxSessions),
	)
	s.recent = dedupe.NewMemoryRecorder(
		dedupe.WithMaxSize(s.recentSubmitSize),
		dedupe.WithWindow(s.recentSubmitWindow),
	)

	go s.sweepLoop()

	s.started = true
	s.logger.Info(ctx, "match desk service started",
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("maxSessions", s.maxSessions),
		logger.String("defaultScope", string(s.defaultScope)),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
	s.logger.Info(context.Background(), "match desk service stopped")
}

func (s *Service) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			ctx := context.Background()
			if n := s.sessions.SweepExpired(ctx); n > 0 {
				metrics.RecordSessionsEvicted(n)
				s.logger.Debug(ctx, "evicted idle sessions", logger.Int("count", n))
			}
			metrics.UpdateActiveSessions(s.sessions.Len(ctx))
		}
	}
}

// ready guards public operations against use before Start.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// CreateSession seeds a new roster from the backend's active players.
// A fetch failure still yields a usable session with an empty pool and
// the load-failed marker set; the operator can retry by reloading.
func (s *Service) CreateSession(ctx context.Context) (View, error) {
	if err := s.ready(); err != nil {
		return View{}, err
	}
	loadFailed := false
	var items []roster.Item

	start := time.Now()
	players, err := s.backend.ActivePlayers(ctx)
	metrics.RecordUpstreamLatency("active_players", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest("active_players", "error")
		s.logger.Warn(ctx, "active player fetch failed; seeding empty roster", logger.Error(err))
		loadFailed = true
	} else {
		metrics.RecordUpstreamRequest("active_players", "ok")
		for _, p := range players {
			if !p.Active {
				continue
			}
			items = append(items, roster.Item{ID: p.ID, Name: p.Name, Color: p.Color})
		}
	}

	sess, err := s.sessions.Create(ctx, roster.New(items), loadFailed)
	if err != nil {
		return View{}, fmt.Errorf("create session: %w", err)
	}
	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(s.sessions.Len(ctx))
	s.logger.Info(ctx, "session created",
		logger.String("session", sess.ID),
		logger.Int("poolSize", len(items)),
		logger.Bool("loadFailed", loadFailed),
	)
	return s.view(sess), nil
}

// Session returns the current view of one session.
func (s *Service) Session(ctx context.Context, id string) (View, error) {
	if err := s.ready(); err != nil {
		return View{}, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(sess), nil
}

// DiscardSession drops a session; unknown ids are harmless.
func (s *Service) DiscardSession(ctx context.Context, id string) {
	if err := s.ready(); err != nil {
		return
	}
	s.sessions.Delete(ctx, id)
	metrics.UpdateActiveSessions(s.sessions.Len(ctx))
}

// Reorder routes one drag lifecycle event to the session's roster. Both
// phases carry the full item-id sequence the drag layer shows for the
// column; consider updates the working copy, finalize commits it.
func (s *Service) Reorder(ctx context.Context, id string, phase Phase, col roster.ColumnID, itemIDs []int64) (View, error) {
	if err := s.ready(); err != nil {
		return View{}, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	switch phase {
	case PhaseConsider:
		err = sess.Roster.Consider(col, itemIDs)
	case PhaseFinalize:
		err = sess.Roster.Finalize(col, itemIDs)
		if err == nil {
			metrics.RecordDragCommit()
		}
	default:
		return View{}, ErrUnknownPhase
	}
	if err != nil {
		return View{}, err
	}
	return s.view(sess), nil
}

// Move applies a quick-move command to the session's roster.
func (s *Service) Move(ctx context.Context, id string, itemID int64, col roster.ColumnID) (View, error) {
	if err := s.ready(); err != nil {
		return View{}, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := sess.Roster.Move(itemID, col); err != nil {
		return View{}, err
	}
	metrics.RecordRosterMove()
	return s.view(sess), nil
}

// Submit validates the roster and scores, then posts the finished match
// upstream. At most one submission is in flight per session; concurrent
// attempts are rejected, never queued. The roster and score entry stay
// untouched on failure so the operator can retry without re-assigning.
func (s *Service) Submit(ctx context.Context, id string, entry match.ScoreEntry) (SubmitResult, error) {
	if err := s.ready(); err != nil {
		return SubmitResult{}, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}
	sess.SetScores(entry)

	snap := sess.Roster.Snapshot()
	scores, err := match.Validate(snap, entry)
	if err != nil {
		metrics.RecordSubmission("blocked")
		return SubmitResult{}, err
	}

	if !sess.BeginSubmit() {
		metrics.RecordSubmission("rejected")
		return SubmitResult{}, ErrSubmitInFlight
	}
	defer sess.EndSubmit()

	payload := match.BuildPayload(snap, scores)
	// Fingerprints are scoped to the session: an identical rematch run
	// from a fresh session is legitimate, only rapid same-desk replays
	// are refused.
	fp := sess.ID + "|" + payload.Fingerprint()
	if s.recent.SeenAndRecord(ctx, fp) {
		metrics.RecordSubmission("duplicate")
		return SubmitResult{}, ErrDuplicateSubmit
	}

	start := time.Now()
	created, err := s.backend.CreateGame(ctx, payload)
	elapsed := float64(time.Since(start).Milliseconds())
	metrics.RecordUpstreamLatency("create_game", elapsed)
	metrics.RecordSubmissionLatency(elapsed)
	if err != nil {
		// Allow a retry of the exact same match after a failure.
		s.recent.Unrecord(ctx, fp)
		metrics.RecordUpstreamRequest("create_game", "error")
		metrics.RecordSubmission("failed")
		s.logger.Warn(ctx, "game submission failed",
			logger.String("session", sess.ID),
			logger.Error(err),
		)
		return SubmitResult{}, err
	}

	metrics.RecordUpstreamRequest("create_game", "ok")
	metrics.RecordSubmission("accepted")
	s.logger.Info(ctx, "game submitted",
		logger.String("session", sess.ID),
		logger.Int64("gameID", created.ID),
		logger.Float64("resultTeam1", payload.ResultTeam1),
		logger.Float64("resultTeam2", payload.ResultTeam2),
	)
	return SubmitResult{GameID: created.ID}, nil
}

// Leaderboard fetches the raw rating rows and ranks them under the
// requested scope. Concurrent requests for the same scope coalesce into
// one backend call.
func (s *Service) Leaderboard(ctx context.Context, scopeParam string) ([]rating.Row, rating.Scope, error) {
	if err := s.ready(); err != nil {
		return nil, s.defaultScope, err
	}
	// Absent and unrecognized scopes both fall back to the configured
	// default.
	scope := s.defaultScope
	if parsed, ok := rating.ScopeOf(scopeParam); ok {
		scope = parsed
	}
	metrics.RecordLeaderboardRequest(string(scope))

	v, err, _ := s.inflight.Do(string(scope), func() (any, error) {
		// The fetch serves every coalesced caller, so it must not die
		// with whichever caller happened to arrive first.
		fetchCtx := context.WithoutCancel(ctx)
		start := time.Now()
		players, err := s.backend.Leaderboard(fetchCtx, scope)
		metrics.RecordUpstreamLatency("leaderboard", float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordUpstreamRequest("leaderboard", "error")
			return nil, err
		}
		metrics.RecordUpstreamRequest("leaderboard", "ok")
		return players, nil
	})
	if err != nil {
		s.logger.Warn(ctx, "leaderboard fetch failed",
			logger.String("scope", string(scope)),
			logger.Error(err),
		)
		return nil, scope, err
	}
	players, ok := v.([]rating.Player)
	if !ok {
		return nil, scope, errors.New("unexpected leaderboard payload type")
	}
	return rating.Rank(players, scope), scope, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"maxSessions":  s.maxSessions,
		"sessionTTL":   s.sessionTTL.String(),
		"defaultScope": string(s.defaultScope),
	}
	if s.started {
		live := s.sessions.Len(ctx)
		stats["activeSessions"] = live
		stats["recentSubmits"] = s.recent.Size()
		metrics.UpdateActiveSessions(live)
	}
	return stats
}

func (s *Service) view(sess *registry.Session) View {
	snap := sess.Roster.Snapshot()
	return View{
		ID:         sess.ID,
		Version:    sess.Roster.Version(),
		LoadFailed: sess.LoadFailed,
		Submitting: sess.Submitting(),
		Scores:     sess.Scores(),
		Pool:       snap.Pool,
		TeamA:      snap.TeamA,
		TeamB:      snap.TeamB,
	}
}
