// Package match validates a completed roster plus score entry and shapes
// the game-creation payload sent to the rating backend.
package match

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/matchdesk/internal/domain/roster"
)

// Reason classifies why a submission was blocked. Each reason carries a
// distinct user-facing message.
type Reason string

// Blocking reasons, in the order they are checked.
const (
	ReasonInvalidScore   Reason = "invalid_score"
	ReasonBothTeamsEmpty Reason = "both_teams_empty"
	ReasonTeamAEmpty     Reason = "team_a_empty"
	ReasonTeamBEmpty     Reason = "team_b_empty"
)

// Message returns the operator-facing text for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonInvalidScore:
		return "both scores must be numbers"
	case ReasonBothTeamsEmpty:
		return "assign players to both teams first"
	case ReasonTeamAEmpty:
		return "team A has no players"
	case ReasonTeamBEmpty:
		return "team B has no players"
	default:
		return "submission blocked"
	}
}

// ValidationError blocks a submission before any network call.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string { return e.Reason.Message() }

// ScoreEntry mirrors the free-text score inputs bound to submission.
type ScoreEntry struct {
	Red  string `json:"red_score"`
	Blue string `json:"blue_score"`
}

// Scores holds the parsed result once validation passes.
type Scores struct {
	Red  float64
	Blue float64
}

// Validate checks the roster and score entry and returns the parsed
// scores, or a *ValidationError naming the first rule that failed.
// Rules run in order: score parsing, both teams empty, team A empty,
// team B empty. Validate is pure and mutates nothing.
func Validate(snap roster.Snapshot, entry ScoreEntry) (Scores, error) {
	red, okRed := parseScore(entry.Red)
	blue, okBlue := parseScore(entry.Blue)
	switch {
	case !okRed || !okBlue:
		return Scores{}, &ValidationError{Reason: ReasonInvalidScore}
	case len(snap.TeamA) == 0 && len(snap.TeamB) == 0:
		return Scores{}, &ValidationError{Reason: ReasonBothTeamsEmpty}
	case len(snap.TeamA) == 0:
		return Scores{}, &ValidationError{Reason: ReasonTeamAEmpty}
	case len(snap.TeamB) == 0:
		return Scores{}, &ValidationError{Reason: ReasonTeamBEmpty}
	}
	return Scores{Red: red, Blue: blue}, nil
}

func parseScore(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// TeamSlot assigns one player to team 1 (A) or team 2 (B).
type TeamSlot struct {
	PlayerID   int64 `json:"player_id"`
	TeamNumber int   `json:"team_number"`
}

// Payload is the game-creation body for the rating backend.
type Payload struct {
	ResultTeam1 float64    `json:"result_team1"`
	ResultTeam2 float64    `json:"result_team2"`
	Teams       []TeamSlot `json:"teams"`
}

// BuildPayload shapes the backend payload from a validated roster and
// parsed scores: team A maps to team_number 1, team B to 2, each in
// column order.
func BuildPayload(snap roster.Snapshot, scores Scores) Payload {
	teams := make([]TeamSlot, 0, len(snap.TeamA)+len(snap.TeamB))
	for _, it := range snap.TeamA {
		teams = append(teams, TeamSlot{PlayerID: it.ID, TeamNumber: 1})
	}
	for _, it := range snap.TeamB {
		teams = append(teams, TeamSlot{PlayerID: it.ID, TeamNumber: 2})
	}
	return Payload{ResultTeam1: scores.Red, ResultTeam2: scores.Blue, Teams: teams}
}

// Fingerprint canonicalizes a payload for duplicate-submission tracking:
// identical rosters and scores produce identical fingerprints.
func (p Payload) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(p.ResultTeam1, 'f', -1, 64))
	b.WriteByte(':')
	b.WriteString(strconv.FormatFloat(p.ResultTeam2, 'f', -1, 64))
	for _, t := range p.Teams {
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(t.PlayerID, 10))
		b.WriteByte('@')
		b.WriteString(strconv.Itoa(t.TeamNumber))
	}
	return b.String()
}
