// Package demomatch drives a running match desk instance end to end.
package demomatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Default configuration constants.
const (
	defaultTimeout = 10 * time.Second
)

// Config controls one demo run.
type Config struct {
	BaseURL   string
	RedScore  string
	BlueScore string
	Scope     string
	Timeout   time.Duration
	Verbose   bool
}

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type sessionView struct {
	ID         string `json:"id"`
	LoadFailed bool   `json:"load_failed"`
	Pool       []item `json:"pool"`
	TeamA      []item `json:"team_a"`
	TeamB      []item `json:"team_b"`
}

type submitResult struct {
	GameID int64 `json:"game_id"`
}

type leaderboard struct {
	Scope string `json:"scope"`
	Rows  []struct {
		Name   string `json:"name"`
		Wins   int    `json:"wins"`
		Losses int    `json:"losses"`
		Elo    int    `json:"elo"`
	} `json:"rows"`
	LoadFailed bool `json:"load_failed"`
}

// ShowHelp prints usage information.
func ShowHelp() {
	fmt.Println(`demo-match walks a match desk instance through a full match:
open a session, split the pool over both teams, submit a score, and read
the leaderboard back.

The target instance must be running and able to reach its upstream.`)
}

// Run performs the full walkthrough against the configured instance.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := &http.Client{Timeout: cfg.Timeout}

	var view sessionView
	if err := call(ctx, client, http.MethodPost, cfg.BaseURL+"/api/sessions", nil, &view); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	fmt.Printf("session %s opened with %d players in the pool\n", view.ID, len(view.Pool))
	if view.LoadFailed {
		fmt.Println("warning: roster load failed; pool is empty")
	}
	defer func() {
		_ = call(context.Background(), client, http.MethodDelete, cfg.BaseURL+"/api/sessions/"+view.ID, nil, nil)
	}()

	if len(view.Pool) < 2 {
		return fmt.Errorf("need at least 2 players in the pool, have %d", len(view.Pool))
	}

	// Alternate pool players over the two teams.
	for i, p := range view.Pool {
		column := "team_a"
		if i%2 == 1 {
			column = "team_b"
		}
		body := map[string]any{"item_id": p.ID, "column": column}
		if err := call(ctx, client, http.MethodPost, cfg.BaseURL+"/api/sessions/"+view.ID+"/move", body, &view); err != nil {
			return fmt.Errorf("move %s: %w", p.Name, err)
		}
		if cfg.Verbose {
			fmt.Printf("moved %s to %s\n", p.Name, column)
		}
	}
	fmt.Printf("teams set: %d vs %d\n", len(view.TeamA), len(view.TeamB))

	// Reverse team A through a drag-finalize event to exercise the reorder path.
	if len(view.TeamA) > 1 {
		ids := make([]int64, 0, len(view.TeamA))
		for i := len(view.TeamA) - 1; i >= 0; i-- {
			ids = append(ids, view.TeamA[i].ID)
		}
		body := map[string]any{"phase": "finalize", "column": "team_a", "item_ids": ids}
		if err := call(ctx, client, http.MethodPost, cfg.BaseURL+"/api/sessions/"+view.ID+"/reorder", body, &view); err != nil {
			return fmt.Errorf("reorder: %w", err)
		}
		if cfg.Verbose {
			fmt.Println("reordered team_a")
		}
	}

	body := map[string]any{"red_score": cfg.RedScore, "blue_score": cfg.BlueScore}
	var result submitResult
	if err := call(ctx, client, http.MethodPost, cfg.BaseURL+"/api/sessions/"+view.ID+"/submit", body, &result); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fmt.Printf("match %s:%s stored as game %d\n", cfg.RedScore, cfg.BlueScore, result.GameID)

	var board leaderboard
	if err := call(ctx, client, http.MethodGet, cfg.BaseURL+"/api/leaderboard?scope="+cfg.Scope, nil, &board); err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	if board.LoadFailed {
		fmt.Println("leaderboard load failed")
		return nil
	}
	fmt.Printf("leaderboard (%s):\n", board.Scope)
	for i, row := range board.Rows {
		fmt.Printf("%3d. %-20s elo=%d w=%d l=%d\n", i+1, row.Name, row.Elo, row.Wins, row.Losses)
	}
	return nil
}

func call(ctx context.Context, client *http.Client, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Fail prints the error and exits nonzero. Split out so main stays thin.
func Fail(err error) {
	os.Stderr.WriteString("demo failed: " + err.Error() + "\n")
	os.Exit(1)
}
