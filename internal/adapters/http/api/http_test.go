package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/courtside/internal/adapters/http/api"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/stats"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func startServer(opts ...api.Option) (*service.Service, http.Handler) {
	svc := service.New(
		service.WithWorkerCount(1),
		service.WithQueueSize(100),
		service.WithDedupeSize(100),
		service.WithChronoTick(0),
		service.WithPersistDebounce(time.Millisecond),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc, api.NewServer(svc, svc, opts...).Router()
}

func do(h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func createVolleyball(h http.Handler, id string) {
	w := do(h, http.MethodPost, "/matches", `{"id":"`+id+`","sport":"volleyball","team_names":{"blue":"Lions","red":"Tigers"}}`)
	So(w.Code, ShouldEqual, http.StatusCreated)
}

func TestServer_Ambient(t *testing.T) {
	Convey("Given the API router", t, func() {
		provider := &mockStatsProvider{stats: map[string]interface{}{"matches": 3, "started": true}}
		svc := service.New()
		h := api.NewServer(svc, provider).Router()

		Convey("When the health endpoint is requested", func() {
			w := do(h, http.MethodGet, "/healthz", "")

			Convey("Then it reports ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When stats are requested", func() {
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then the provider's stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				got := decode[map[string]interface{}](w)
				So(got["matches"], ShouldEqual, 3)
				So(got["started"], ShouldEqual, true)
			})
		})

		Convey("When metrics are scraped", func() {
			do(h, http.MethodGet, "/healthz", "")
			w := do(h, http.MethodGet, "/metrics", "")

			Convey("Then the HTTP request counter is exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
			})
		})

		Convey("When the sports are listed", func() {
			w := do(h, http.MethodGet, "/sports", "")
			actions := do(h, http.MethodGet, "/sports/tennis/actions", "")
			unknown := do(h, http.MethodGet, "/sports/curling/actions", "")

			Convey("Then every sport and its vocabulary is available", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[[]map[string]string](w), ShouldHaveLength, len(model.Sports()))
				So(actions.Code, ShouldEqual, http.StatusOK)
				defs := decode[[]sport.ActionDef](actions)
				So(defs, ShouldNotBeEmpty)
				So(unknown.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the service is not started", func() {
			w := do(h, http.MethodGet, "/matches/any", "")

			Convey("Then the API is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, "not_started")
			})
		})
	})
}

func TestServer_Matches(t *testing.T) {
	Convey("Given a started service behind the router", t, func() {
		svc, h := startServer()
		Reset(svc.Stop)

		Convey("When a match is created", func() {
			w := do(h, http.MethodPost, "/matches", `{"id":"final","sport":"tennis","team_names":{"blue":"Ana","red":"Bea"}}`)

			Convey("Then it is returned with its location", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(w.Header().Get("Location"), ShouldEqual, "/matches/final")
				view := decode[types.MatchView](w)
				So(view.Sport, ShouldEqual, model.SportTennis)
				So(view.PeriodLabel, ShouldEqual, "Set")
			})

			Convey("And it can be fetched and listed", func() {
				get := do(h, http.MethodGet, "/matches/final", "")
				list := do(h, http.MethodGet, "/matches", "")
				So(get.Code, ShouldEqual, http.StatusOK)
				So(decode[types.MatchView](get).TeamNames.Red, ShouldEqual, "Bea")
				So(list.Code, ShouldEqual, http.StatusOK)
				So(decode[[]types.MatchSummary](list), ShouldHaveLength, 1)
			})

			Convey("And creating it again conflicts", func() {
				again := do(h, http.MethodPost, "/matches", `{"id":"final","sport":"tennis"}`)
				So(again.Code, ShouldEqual, http.StatusConflict)
				So(again.Body.String(), ShouldContainSubstring, "duplicate_match")
			})

			Convey("And deleting it removes it", func() {
				del := do(h, http.MethodDelete, "/matches/final", "")
				So(del.Code, ShouldEqual, http.StatusNoContent)
				So(do(h, http.MethodGet, "/matches/final", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a request is malformed", func() {
			badSport := do(h, http.MethodPost, "/matches", `{"sport":"curling"}`)
			badJSON := do(h, http.MethodPost, "/matches", `{"sport":`)
			missing := do(h, http.MethodGet, "/matches/nope/snapshot", "")

			Convey("Then it is rejected with a precise status", func() {
				So(badSport.Code, ShouldEqual, http.StatusBadRequest)
				So(badSport.Body.String(), ShouldContainSubstring, "invalid_sport")
				So(badJSON.Code, ShouldEqual, http.StatusBadRequest)
				So(missing.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestServer_Commands(t *testing.T) {
	Convey("Given a volleyball match", t, func() {
		svc, h := startServer()
		Reset(svc.Stop)
		createVolleyball(h, "vb")

		Convey("When blue's attack is selected and tapped on red's court", func() {
			sel := do(h, http.MethodPost, "/matches/vb/select", `{"team":"blue","type":"scored","action":"attack"}`)
			hl := do(h, http.MethodGet, "/matches/vb/highlights", "")
			tap := do(h, http.MethodPost, "/matches/vb/tap", `{"x":0.75,"y":0.5}`, "Idempotency-Key", "tap-1")

			Convey("Then the point is recorded for blue", func() {
				So(sel.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Outcome](sel).Tap.Status, ShouldEqual, service.TapSelected)
				So(hl.Code, ShouldEqual, http.StatusOK)
				So(decode[[]json.RawMessage](hl), ShouldNotBeEmpty)
				out := decode[service.Outcome](tap)
				So(tap.Code, ShouldEqual, http.StatusOK)
				So(out.Tap.Status, ShouldEqual, service.TapRecorded)
				So(out.Match.Score, ShouldResemble, model.Score{Blue: 1})
			})

			Convey("And replaying the tap command is a duplicate", func() {
				again := do(h, http.MethodPost, "/matches/vb/tap", `{"x":0.75,"y":0.5}`, "Idempotency-Key", "tap-1")
				out := decode[service.Outcome](again)
				So(again.Code, ShouldEqual, http.StatusOK)
				So(out.Duplicate, ShouldBeTrue)
				So(out.Match.Score, ShouldResemble, model.Score{Blue: 1})
			})

			Convey("And the views reflect the point", func() {
				st := do(h, http.MethodGet, "/matches/vb/stats?set=all", "")
				hm := do(h, http.MethodGet, "/matches/vb/heatmap?cols=4&rows=2", "")
				rp := do(h, http.MethodGet, "/matches/vb/replay/0/1", "")
				So(st.Code, ShouldEqual, http.StatusOK)
				So(decode[types.StatsView](st).Teams.Blue.Scored, ShouldEqual, 1)
				So(hm.Code, ShouldEqual, http.StatusOK)
				So(decode[stats.Heatmap](hm).Blue[1][3], ShouldEqual, 1)
				So(rp.Code, ShouldEqual, http.StatusOK)
				So(decode[types.ReplayView](rp).Score, ShouldResemble, model.Score{Blue: 1})
			})

			Convey("And undo removes it", func() {
				undo := do(h, http.MethodPost, "/matches/vb/undo", "")
				So(undo.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Outcome](undo).Match.Score, ShouldResemble, model.Score{})
			})

			Convey("And the match exports as a workbook and a heatmap image", func() {
				xlsx := do(h, http.MethodGet, "/matches/vb/export.xlsx", "")
				png := do(h, http.MethodGet, "/matches/vb/heatmap.png?set=all", "")
				So(xlsx.Code, ShouldEqual, http.StatusOK)
				So(xlsx.Header().Get("Content-Disposition"), ShouldContainSubstring, "vb.xlsx")
				f, err := excelize.OpenReader(bytes.NewReader(xlsx.Body.Bytes()))
				So(err, ShouldBeNil)
				So(f.GetSheetList(), ShouldContain, "Set 1")
				So(f.Close(), ShouldBeNil)
				So(png.Code, ShouldEqual, http.StatusOK)
				So(png.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(bytes.HasPrefix(png.Body.Bytes(), []byte("\x89PNG")), ShouldBeTrue)
			})
		})

		Convey("When a tap has no coordinates", func() {
			w := do(h, http.MethodPost, "/matches/vb/tap", `{"x":0.5}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the selection names an invalid team", func() {
			w := do(h, http.MethodPost, "/matches/vb/select", `{"team":"green","type":"scored","action":"attack"}`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "invalid_team")
			})
		})

		Convey("When a roster is uploaded as a spreadsheet", func() {
			f := excelize.NewFile()
			So(f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "#", "ID"}), ShouldBeNil)
			So(f.SetSheetRow("Sheet1", "A2", &[]any{"Lea", 7, "lea"}), ShouldBeNil)
			buf, err := f.WriteToBuffer()
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			req := httptest.NewRequest(http.MethodPut, "/matches/vb/players", buf)
			req.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then scored points wait for a player", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Outcome](w).Match.Players, ShouldResemble, []model.Player{{ID: "lea", Name: "Lea", Number: 7}})

				do(h, http.MethodPost, "/matches/vb/select", `{"team":"blue","type":"scored","action":"attack"}`)
				tap := do(h, http.MethodPost, "/matches/vb/tap", `{"x":0.75,"y":0.5}`)
				So(decode[service.Outcome](tap).Tap.Status, ShouldEqual, service.TapParked)

				empty := do(h, http.MethodPost, "/matches/vb/players/assign", `{"player_id":""}`)
				So(empty.Code, ShouldEqual, http.StatusBadRequest)

				assign := do(h, http.MethodPost, "/matches/vb/players/assign", `{"player_id":"ghost"}`)
				So(assign.Code, ShouldEqual, http.StatusOK)
				out := decode[service.Outcome](assign)
				So(out.Changed, ShouldBeTrue)
				So(out.Match.PendingAssignment, ShouldBeNil)
				So(out.Match.Points[0].PlayerID, ShouldEqual, "ghost")

				skip := do(h, http.MethodPost, "/matches/vb/players/skip", "")
				So(skip.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Outcome](skip).Changed, ShouldBeFalse)
			})
		})

		Convey("When a set ends and the match finishes", func() {
			do(h, http.MethodPost, "/matches/vb/select", `{"team":"red","type":"scored","action":"block"}`)
			do(h, http.MethodPost, "/matches/vb/tap", `{"x":0.2,"y":0.5}`)
			end := do(h, http.MethodPost, "/matches/vb/sets/end", "")
			start := do(h, http.MethodPost, "/matches/vb/sets/start", "")
			finish := do(h, http.MethodPost, "/matches/vb/finish", "")
			sel := do(h, http.MethodPost, "/matches/vb/select", `{"team":"blue","type":"scored","action":"attack"}`)

			Convey("Then the set is stored and later commands are no-ops", func() {
				So(end.Code, ShouldEqual, http.StatusOK)
				view := decode[service.Outcome](end).Match
				So(view.CompletedSets, ShouldHaveLength, 1)
				So(view.CompletedSets[0].Winner, ShouldEqual, model.TeamRed)
				So(decode[service.Outcome](start).Match.SidesSwapped, ShouldBeTrue)
				So(decode[service.Outcome](finish).Match.Finished, ShouldBeTrue)
				So(sel.Code, ShouldEqual, http.StatusOK)
				late := decode[service.Outcome](sel)
				So(late.Changed, ShouldBeFalse)
				So(late.Match.Finished, ShouldBeTrue)
				So(do(h, http.MethodGet, "/matches/vb/stats?set=9", "").Code, ShouldEqual, http.StatusNotFound)
				So(do(h, http.MethodGet, "/matches/vb/stats?set=zero", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestServer_RateLimit(t *testing.T) {
	Convey("Given a router limited to one request per client", t, func() {
		_, h := startServerWithoutService(api.WithRateLimit(0.001, 1))

		Convey("When a client sends two requests", func() {
			first := do(h, http.MethodGet, "/healthz", "")
			second := do(h, http.MethodGet, "/healthz", "")

			Convey("Then the second is throttled", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				So(second.Header().Get("Retry-After"), ShouldNotBeEmpty)
			})
		})
	})
}

func startServerWithoutService(opts ...api.Option) (*service.Service, http.Handler) {
	svc := service.New()
	return svc, api.NewServer(svc, &mockStatsProvider{}, opts...).Router()
}
