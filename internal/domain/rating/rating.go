// Package rating resolves the scope-dependent rating fields and orders
// players into leaderboard rows.
package rating

import (
	"math"
	"sort"
)

// Scope selects which rating window applies.
type Scope string

// Known scopes.
const (
	Monthly Scope = "monthly"
	Yearly  Scope = "yearly"
	Overall Scope = "overall"
)

// DefaultScope applies when the request carries no scope or an
// unrecognized one.
const DefaultScope = Yearly

// ScopeOf reports whether s names a known scope.
func ScopeOf(s string) (Scope, bool) {
	switch Scope(s) {
	case Monthly, Yearly, Overall:
		return Scope(s), true
	default:
		return "", false
	}
}

// ParseScope maps a query-parameter value to a Scope, falling back to
// DefaultScope for anything it does not recognize.
func ParseScope(s string) Scope {
	if scope, ok := ScopeOf(s); ok {
		return scope
	}
	return DefaultScope
}

// Snapshot carries the per-window mean and uncertainty of a player's
// skill rating. The values are computed upstream and opaque here.
type Snapshot struct {
	MuMonthly    float64 `json:"mu_monthly"`
	SigmaMonthly float64 `json:"sigma_monthly"`
	MuYearly     float64 `json:"mu_yearly"`
	SigmaYearly  float64 `json:"sigma_yearly"`
	MuOverall    float64 `json:"mu_overall"`
	SigmaOverall float64 `json:"sigma_overall"`
}

// Select returns the (mu, sigma) pair for the scope.
func (s Snapshot) Select(scope Scope) (mu, sigma float64) {
	switch scope {
	case Monthly:
		return s.MuMonthly, s.SigmaMonthly
	case Overall:
		return s.MuOverall, s.SigmaOverall
	default:
		return s.MuYearly, s.SigmaYearly
	}
}

// Player is one raw leaderboard input row as the rating backend reports it.
type Player struct {
	Name        string   `json:"player_name"`
	Active      bool     `json:"active"`
	Wins        int      `json:"wins"`
	GamesPlayed int      `json:"games_played"`
	Rating      Snapshot `json:"rating"`
}

// Row is one ordered leaderboard display row.
type Row struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Elo    int    `json:"elo"`
}

// Rank filters to active players, resolves the scope's rating fields,
// and orders rows by descending elo. The sort is stable: mu ties are
// common at season start and must keep the input's relative order.
func Rank(players []Player, scope Scope) []Row {
	rows := make([]Row, 0, len(players))
	for _, p := range players {
		if !p.Active {
			continue
		}
		mu, _ := p.Rating.Select(scope)
		rows = append(rows, Row{
			Name:   p.Name,
			Wins:   p.Wins,
			Losses: p.GamesPlayed - p.Wins,
			Elo:    int(math.Round(mu)),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Elo > rows[j].Elo })
	return rows
}
