// Package upstream is the HTTP client for the rating backend that owns
// players, games and rating snapshots. Matchdesk never computes ratings
// itself; it reads them from here and posts finished games back.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/matchdesk/internal/domain/match"
	"github.com/okian/matchdesk/internal/domain/rating"
)

// Default client configuration constants.
const (
	defaultTimeout     = 10 * time.Second
	maxErrorBodyBytes  = 4 << 10
	playersPath        = "/api/players"
	leaderboardPath    = "/api/players/leaderboard"
	gamesPath          = "/api/games"
	scopeQueryParam    = "leaderboard_type"
	contentTypeJSON    = "application/json"
	headerContentType  = "Content-Type"
	headerAcceptHeader = "Accept"
)

// Doer abstracts *http.Client so tests can substitute transport behavior.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Player is one entry of the active-player listing used to seed rosters.
type Player struct {
	ID     int64  `json:"id"`
	Name   string `json:"player_name"`
	Color  string `json:"player_color"`
	Active bool   `json:"active"`
}

// CreatedGame is the backend's confirmation of a stored game.
type CreatedGame struct {
	ID int64 `json:"id"`
}

// Client talks to the rating backend.
type Client struct {
	baseURL string
	doer    Doer
	timeout time.Duration
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithDoer injects a transport, primarily for tests.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTimeout bounds every upstream call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: c.timeout}
	}
	return c
}

// ActivePlayers fetches the player listing. Callers filter on Active
// before seeding a roster pool.
func (c *Client) ActivePlayers(ctx context.Context) ([]Player, error) {
	var players []Player
	if err := c.getJSON(ctx, playersPath, nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// Leaderboard fetches the raw per-player rating rows for the scope.
func (c *Client) Leaderboard(ctx context.Context, scope rating.Scope) ([]rating.Player, error) {
	q := url.Values{scopeQueryParam: []string{string(scope)}}
	var players []rating.Player
	if err := c.getJSON(ctx, leaderboardPath, q, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// CreateGame posts a finished match and returns the stored game id.
func (c *Client) CreateGame(ctx context.Context, payload match.Payload) (CreatedGame, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return CreatedGame{}, fmt.Errorf("encode game payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+gamesPath, bytes.NewReader(body))
	if err != nil {
		return CreatedGame{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)

	resp, err := c.doer.Do(req)
	if err != nil {
		return CreatedGame{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CreatedGame{}, statusError(resp)
	}

	var created CreatedGame
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		// A 2xx with an unreadable body still created the game; surface
		// a zero id rather than failing the whole submission.
		return CreatedGame{}, nil
	}
	return created, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerAcceptHeader, contentTypeJSON)

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// statusError shapes a non-2xx response, preferring the backend's own
// message. FastAPI-style bodies wrap it as {"detail": "..."}.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	msg := strings.TrimSpace(string(raw))
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
		msg = detail.Detail
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
