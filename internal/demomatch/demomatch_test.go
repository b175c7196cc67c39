package demomatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRunWalkthrough(t *testing.T) {
	convey.Convey("Given a fake match desk instance", t, func() {
		var submitted map[string]string
		mux := http.NewServeMux()
		view := sessionView{
			ID: "s-1",
			Pool: []item{
				{ID: 1, Name: "Anna"},
				{ID: 2, Name: "Omid"},
			},
		}
		mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(view)
		})
		mux.HandleFunc("/api/sessions/s-1/move", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			var req struct {
				ItemID int64  `json:"item_id"`
				Column string `json:"column"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			for i, p := range view.Pool {
				if p.ID != req.ItemID {
					continue
				}
				view.Pool = append(view.Pool[:i], view.Pool[i+1:]...)
				if req.Column == "team_a" {
					view.TeamA = append(view.TeamA, p)
				} else {
					view.TeamB = append(view.TeamB, p)
				}
				break
			}
			_ = json.NewEncoder(w).Encode(view)
		})
		mux.HandleFunc("/api/sessions/s-1/submit", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&submitted)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(submitResult{GameID: 7})
		})
		mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(`{"scope":"yearly","rows":[{"name":"Anna","wins":1,"losses":0,"elo":26}]}`))
		})
		mux.HandleFunc("/api/sessions/s-1", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When running the demo", func() {
			cfg := &Config{BaseURL: srv.URL, RedScore: "5", BlueScore: "3", Scope: "yearly"}
			err := Run(context.Background(), cfg)

			convey.Convey("Then the full walkthrough succeeds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(submitted["red_score"], convey.ShouldEqual, "5")
				convey.So(submitted["blue_score"], convey.ShouldEqual, "3")
				convey.So(view.Pool, convey.ShouldBeEmpty)
				convey.So(view.TeamA, convey.ShouldHaveLength, 1)
				convey.So(view.TeamB, convey.ShouldHaveLength, 1)
			})
		})
	})
}

func TestRunNeedsPlayers(t *testing.T) {
	convey.Convey("Given an instance whose roster load failed", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(sessionView{ID: "s-2", LoadFailed: true})
		})
		mux.HandleFunc("/api/sessions/s-2", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When running the demo", func() {
			err := Run(context.Background(), &Config{BaseURL: srv.URL, RedScore: "1", BlueScore: "0"})

			convey.Convey("Then it reports the empty pool", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "at least 2 players")
			})
		})
	})
}
