package match_test

import (
	"errors"
	"testing"

	"github.com/okian/matchdesk/internal/domain/match"
	"github.com/okian/matchdesk/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func reason(err error) match.Reason {
	var v *match.ValidationError
	if errors.As(err, &v) {
		return v.Reason
	}
	return ""
}

func TestValidate(t *testing.T) {
	Convey("Given a roster snapshot and score entry", t, func() {
		full := roster.Snapshot{
			TeamA: []roster.Item{{ID: 1, Name: "anna"}},
			TeamB: []roster.Item{{ID: 2, Name: "ben"}},
		}

		Convey("When both teams are staffed and scores parse", func() {
			scores, err := match.Validate(full, match.ScoreEntry{Red: "5", Blue: "3"})

			Convey("Then validation passes with parsed scores", func() {
				So(err, ShouldBeNil)
				So(scores.Red, ShouldEqual, 5)
				So(scores.Blue, ShouldEqual, 3)
			})
		})

		Convey("When a score is not numeric", func() {
			_, err := match.Validate(full, match.ScoreEntry{Red: "5", Blue: "abc"})

			Convey("Then the invalid-score rule fires first", func() {
				So(reason(err), ShouldEqual, match.ReasonInvalidScore)
			})
		})

		Convey("When a score is empty", func() {
			_, err := match.Validate(full, match.ScoreEntry{Red: "", Blue: "3"})
			So(reason(err), ShouldEqual, match.ReasonInvalidScore)
		})

		Convey("When a score is NaN or infinite", func() {
			_, err := match.Validate(full, match.ScoreEntry{Red: "NaN", Blue: "3"})
			So(reason(err), ShouldEqual, match.ReasonInvalidScore)

			_, err = match.Validate(full, match.ScoreEntry{Red: "5", Blue: "+Inf"})
			So(reason(err), ShouldEqual, match.ReasonInvalidScore)
		})

		Convey("When scores carry surrounding whitespace", func() {
			scores, err := match.Validate(full, match.ScoreEntry{Red: " 5 ", Blue: "3\n"})
			So(err, ShouldBeNil)
			So(scores.Red, ShouldEqual, 5)
		})

		Convey("When both teams are empty", func() {
			_, err := match.Validate(roster.Snapshot{}, match.ScoreEntry{Red: "5", Blue: "3"})
			So(reason(err), ShouldEqual, match.ReasonBothTeamsEmpty)
		})

		Convey("When only team A is empty", func() {
			snap := roster.Snapshot{TeamB: full.TeamB}
			_, err := match.Validate(snap, match.ScoreEntry{Red: "5", Blue: "3"})
			So(reason(err), ShouldEqual, match.ReasonTeamAEmpty)
		})

		Convey("When only team B is empty", func() {
			snap := roster.Snapshot{TeamA: full.TeamA}
			_, err := match.Validate(snap, match.ScoreEntry{Red: "5", Blue: "3"})
			So(reason(err), ShouldEqual, match.ReasonTeamBEmpty)
		})

		Convey("When scores fail on an empty roster", func() {
			_, err := match.Validate(roster.Snapshot{}, match.ScoreEntry{Red: "x", Blue: "y"})

			Convey("Then score parsing is reported before team checks", func() {
				So(reason(err), ShouldEqual, match.ReasonInvalidScore)
			})
		})

		Convey("Then every reason maps to a distinct message", func() {
			msgs := map[string]struct{}{}
			for _, r := range []match.Reason{
				match.ReasonInvalidScore,
				match.ReasonBothTeamsEmpty,
				match.ReasonTeamAEmpty,
				match.ReasonTeamBEmpty,
			} {
				msgs[r.Message()] = struct{}{}
			}
			So(len(msgs), ShouldEqual, 4)
		})
	})
}

func TestBuildPayload(t *testing.T) {
	Convey("Given a validated roster and parsed scores", t, func() {
		snap := roster.Snapshot{
			TeamA: []roster.Item{{ID: 1, Name: "anna"}},
			TeamB: []roster.Item{{ID: 2, Name: "ben"}},
		}

		Convey("When building the submission payload", func() {
			p := match.BuildPayload(snap, match.Scores{Red: 5, Blue: 3})

			Convey("Then it matches the backend contract", func() {
				So(p, ShouldResemble, match.Payload{
					ResultTeam1: 5,
					ResultTeam2: 3,
					Teams: []match.TeamSlot{
						{PlayerID: 1, TeamNumber: 1},
						{PlayerID: 2, TeamNumber: 2},
					},
				})
			})
		})

		Convey("When teams hold several players", func() {
			snap := roster.Snapshot{
				TeamA: []roster.Item{{ID: 3}, {ID: 1}},
				TeamB: []roster.Item{{ID: 4}, {ID: 2}},
			}
			p := match.BuildPayload(snap, match.Scores{Red: 10, Blue: 8})

			Convey("Then column order is preserved per team", func() {
				So(p.Teams, ShouldResemble, []match.TeamSlot{
					{PlayerID: 3, TeamNumber: 1},
					{PlayerID: 1, TeamNumber: 1},
					{PlayerID: 4, TeamNumber: 2},
					{PlayerID: 2, TeamNumber: 2},
				})
			})
		})

		Convey("When fingerprinting payloads", func() {
			a := match.BuildPayload(snap, match.Scores{Red: 5, Blue: 3})
			b := match.BuildPayload(snap, match.Scores{Red: 5, Blue: 3})
			c := match.BuildPayload(snap, match.Scores{Red: 3, Blue: 5})

			Convey("Then equal submissions collide and different ones do not", func() {
				So(a.Fingerprint(), ShouldEqual, b.Fingerprint())
				So(a.Fingerprint(), ShouldNotEqual, c.Fingerprint())
			})
		})
	})
}
