package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/matchdesk/internal/adapters/upstream"
	"github.com/okian/matchdesk/internal/domain/match"
	"github.com/okian/matchdesk/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestActivePlayers(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backend that lists players", t, func(c C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.URL.Path, ShouldEqual, "/api/players")
			c.So(r.Method, ShouldEqual, http.MethodGet)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": 1, "player_name": "anna", "player_color": "#f00", "active": true},
				{"id": 2, "player_name": "ben", "player_color": "#0f0", "active": false}
			]`))
		}))
		defer srv.Close()
		client := upstream.New(srv.URL)

		Convey("When fetching the listing", func() {
			players, err := client.ActivePlayers(ctx)

			Convey("Then all rows decode, including inactive ones", func() {
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 2)
				So(players[0].Name, ShouldEqual, "anna")
				So(players[0].Active, ShouldBeTrue)
				So(players[1].Active, ShouldBeFalse)
			})
		})
	})

	Convey("Given an unreachable backend", t, func() {
		client := upstream.New("http://127.0.0.1:1")

		Convey("When fetching the listing", func() {
			_, err := client.ActivePlayers(ctx)

			Convey("Then the failure is classified as unavailable", func() {
				So(errors.Is(err, upstream.ErrUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backend serving leaderboard rows", t, func(c C) {
		var gotScope string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.URL.Path, ShouldEqual, "/api/players/leaderboard")
			gotScope = r.URL.Query().Get("leaderboard_type")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"player_name": "anna", "active": true, "wins": 3, "games_played": 5,
				 "rating": {"mu_monthly": 10, "sigma_monthly": 1, "mu_yearly": 20,
				            "sigma_yearly": 2, "mu_overall": 30, "sigma_overall": 3}}
			]`))
		}))
		defer srv.Close()
		client := upstream.New(srv.URL)

		Convey("When fetching with the monthly scope", func() {
			rows, err := client.Leaderboard(ctx, rating.Monthly)

			Convey("Then the scope rides the query string", func() {
				So(err, ShouldBeNil)
				So(gotScope, ShouldEqual, "monthly")
			})

			Convey("And the rating snapshot decodes fully", func() {
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Rating.MuMonthly, ShouldEqual, 10)
				So(rows[0].Rating.MuOverall, ShouldEqual, 30)
				So(rows[0].GamesPlayed, ShouldEqual, 5)
			})
		})
	})
}

func TestCreateGame(t *testing.T) {
	ctx := context.Background()
	payload := match.Payload{
		ResultTeam1: 5,
		ResultTeam2: 3,
		Teams: []match.TeamSlot{
			{PlayerID: 1, TeamNumber: 1},
			{PlayerID: 2, TeamNumber: 2},
		},
	}

	Convey("Given a backend accepting games", t, func(c C) {
		var got match.Payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.URL.Path, ShouldEqual, "/api/games")
			c.So(r.Method, ShouldEqual, http.MethodPost)
			c.So(json.NewDecoder(r.Body).Decode(&got), ShouldBeNil)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 42}`))
		}))
		defer srv.Close()
		client := upstream.New(srv.URL)

		Convey("When posting a finished match", func() {
			created, err := client.CreateGame(ctx, payload)

			Convey("Then the payload arrives unchanged and the id returns", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldEqual, 42)
				So(got, ShouldResemble, payload)
			})
		})
	})

	Convey("Given a backend that rejects the game", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": "Duplicate players in teams"}`))
		}))
		defer srv.Close()
		client := upstream.New(srv.URL)

		Convey("When posting", func() {
			_, err := client.CreateGame(ctx, payload)

			Convey("Then the server's own message surfaces", func() {
				var se *upstream.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)
				So(se.Message, ShouldEqual, "Duplicate players in teams")
				So(errors.Is(err, upstream.ErrStatus), ShouldBeTrue)
			})
		})
	})

	Convey("Given a backend that fails with a bare body", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}))
		defer srv.Close()
		client := upstream.New(srv.URL)

		Convey("When posting", func() {
			_, err := client.CreateGame(ctx, payload)

			Convey("Then the raw body becomes the message", func() {
				var se *upstream.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Message, ShouldEqual, "boom")
			})
		})
	})
}
