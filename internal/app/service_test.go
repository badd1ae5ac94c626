package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func startService(opts ...service.Option) (*service.Service, context.Context) {
	base := []service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(100),
		service.WithDedupeSize(100),
		service.WithChronoTick(0),
		service.WithPersistDebounce(time.Millisecond),
	}
	svc := service.New(append(base, opts...)...)
	ctx := context.Background()
	So(svc.Start(ctx), ShouldBeNil)
	return svc, ctx
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should not be started", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("And match commands should fail", func() {
			_, err := svc.GetMatch(context.Background(), "any")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.CreateMatch(context.Background(), service.CreateRequest{Sport: model.SportTennis})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := startService()
		Reset(func() { svc.Stop() })

		Convey("When starting it twice", func() {
			err := svc.Start(ctx)

			Convey("Then the second start is a no-op", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})
		})

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And stopping again should not panic", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

func TestService_Matches(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := startService()
		Reset(func() { svc.Stop() })

		Convey("When a match is created", func() {
			view, err := svc.CreateMatch(ctx, service.CreateRequest{
				ID:        "m1",
				Sport:     model.SportVolleyball,
				TeamNames: model.TeamNames{Blue: "Lions", Red: "Tigers"},
			})
			So(err, ShouldBeNil)

			Convey("Then it can be read back", func() {
				So(view.ID, ShouldEqual, "m1")
				got, err := svc.GetMatch(ctx, "m1")
				So(err, ShouldBeNil)
				So(got.TeamNames.Blue, ShouldEqual, "Lions")
				So(got.Sport, ShouldEqual, model.SportVolleyball)
			})

			Convey("And the same id cannot be created twice", func() {
				_, err := svc.CreateMatch(ctx, service.CreateRequest{ID: "m1", Sport: model.SportTennis})
				So(errors.Is(err, service.ErrDuplicateMatch), ShouldBeTrue)
			})

			Convey("And it is listed", func() {
				_, err := svc.CreateMatch(ctx, service.CreateRequest{ID: "m2", Sport: model.SportPadel})
				So(err, ShouldBeNil)
				list, err := svc.ListMatches(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 2)
				So(list[0].ID, ShouldEqual, "m1")
				So(list[1].ID, ShouldEqual, "m2")
			})

			Convey("And it can be deleted", func() {
				So(svc.DeleteMatch(ctx, "m1"), ShouldBeNil)
				_, err := svc.GetMatch(ctx, "m1")
				So(errors.Is(err, service.ErrMatchNotFound), ShouldBeTrue)
				So(errors.Is(svc.DeleteMatch(ctx, "m1"), service.ErrMatchNotFound), ShouldBeTrue)
			})
		})

		Convey("When the sport is unknown", func() {
			_, err := svc.CreateMatch(ctx, service.CreateRequest{Sport: "hockey"})

			Convey("Then the request is refused", func() {
				So(errors.Is(err, service.ErrInvalidSport), ShouldBeTrue)
			})
		})

		Convey("When the roster repeats a player", func() {
			_, err := svc.CreateMatch(ctx, service.CreateRequest{
				Sport:   model.SportVolleyball,
				Players: []model.Player{{ID: "p1"}, {ID: "p1"}},
			})

			Convey("Then the request is refused", func() {
				So(errors.Is(err, service.ErrInvalidPlayers), ShouldBeTrue)
			})
		})

		Convey("When an id is generated", func() {
			view, err := svc.CreateMatch(ctx, service.CreateRequest{Sport: model.SportBasketball})

			Convey("Then the match gets a fresh id", func() {
				So(err, ShouldBeNil)
				So(view.ID, ShouldNotBeEmpty)
				So(view.PeriodLabel, ShouldEqual, "Quarter")
			})
		})
	})
}

func TestService_Commands(t *testing.T) {
	Convey("Given a volleyball match in a started service", t, func() {
		svc, ctx := startService()
		Reset(func() { svc.Stop() })
		_, err := svc.CreateMatch(ctx, service.CreateRequest{
			ID:      "vb",
			Sport:   model.SportVolleyball,
			Players: []model.Player{{ID: "p7", Name: "Lea", Number: 7}},
		})
		So(err, ShouldBeNil)

		attack := service.Selection{Team: model.TeamBlue, Type: model.TypeScored, Action: model.ActionAttack}

		Convey("When blue attacks", func() {
			sel, err := svc.SelectAction(ctx, "vb", "c1", attack)
			So(err, ShouldBeNil)
			tap, err := svc.RecordTap(ctx, "vb", "c2", 0.75, 0.5)
			So(err, ShouldBeNil)

			Convey("Then the point waits for a player", func() {
				So(sel.Tap.Status, ShouldEqual, service.TapSelected)
				So(tap.Tap.Status, ShouldEqual, service.TapParked)
				So(tap.Match.PendingAssignment, ShouldNotBeNil)
			})

			Convey("And the player is attributed", func() {
				out, err := svc.AssignPlayer(ctx, "vb", "c3", "p7")
				So(err, ShouldBeNil)
				So(out.Changed, ShouldBeTrue)
				So(out.Match.Score, ShouldResemble, model.Score{Blue: 1})

				st, err := svc.Stats(ctx, "vb", 0)
				So(err, ShouldBeNil)
				So(st.SetNumber, ShouldEqual, 1)
				So(st.Players, ShouldHaveLength, 1)
				So(st.Players[0].Scored, ShouldEqual, 1)
			})

			Convey("And a player off the roster counts as a ghost", func() {
				out, err := svc.AssignPlayer(ctx, "vb", "c3", "nobody")
				So(err, ShouldBeNil)
				So(out.Changed, ShouldBeTrue)
				So(out.Match.Points[0].PlayerID, ShouldEqual, "nobody")

				_, err = svc.AssignPlayer(ctx, "vb", "c4", "")
				So(errors.Is(err, service.ErrInvalidPlayers), ShouldBeTrue)
			})

			Convey("And skipping commits without attribution", func() {
				out, err := svc.SkipPlayerAssignment(ctx, "vb", "c3")
				So(err, ShouldBeNil)
				So(out.Match.Points, ShouldHaveLength, 1)

				again, err := svc.SkipPlayerAssignment(ctx, "vb", "c4")
				So(err, ShouldBeNil)
				So(again.Changed, ShouldBeFalse)

				assigned, err := svc.AssignPlayer(ctx, "vb", "c5", "p7")
				So(err, ShouldBeNil)
				So(assigned.Changed, ShouldBeFalse)
				So(assigned.Match.Points, ShouldHaveLength, 1)
			})

			Convey("And a repeated command id is not applied again", func() {
				again, err := svc.RecordTap(ctx, "vb", "c2", 0.75, 0.5)
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)
				So(again.Changed, ShouldBeFalse)
			})
		})

		Convey("When a tap lands in an illegal zone", func() {
			_, err := svc.SelectAction(ctx, "vb", "", attack)
			So(err, ShouldBeNil)
			out, err := svc.RecordTap(ctx, "vb", "", 0.25, 0.5)

			Convey("Then it is rejected without a change", func() {
				So(err, ShouldBeNil)
				So(out.Changed, ShouldBeFalse)
				So(out.Tap.Status, ShouldEqual, service.TapRejected)
				hl, err := svc.Highlights(ctx, "vb")
				So(err, ShouldBeNil)
				So(hl, ShouldHaveLength, 1)
			})
		})

		Convey("When the team is invalid", func() {
			_, err := svc.SelectAction(ctx, "vb", "", service.Selection{Team: "green", Type: model.TypeScored, Action: model.ActionAttack})

			Convey("Then an invalid team error is returned", func() {
				So(errors.Is(err, service.ErrInvalidTeam), ShouldBeTrue)
			})
		})

		Convey("When a set is played and closed", func() {
			_, err := svc.SelectAction(ctx, "vb", "", service.Selection{Team: model.TeamRed, Type: model.TypeScored, Action: model.ActionAttack})
			So(err, ShouldBeNil)
			_, err = svc.RecordTap(ctx, "vb", "", 0.25, 0.5)
			So(err, ShouldBeNil)
			ended, err := svc.EndSet(ctx, "vb", "")
			So(err, ShouldBeNil)
			started, err := svc.StartNewSet(ctx, "vb", "")
			So(err, ShouldBeNil)

			Convey("Then the next set starts with sides switched", func() {
				So(ended.Match.CompletedSets, ShouldHaveLength, 1)
				So(ended.Match.CompletedSets[0].Winner, ShouldEqual, model.TeamRed)
				So(started.Match.SetNumber, ShouldEqual, 2)
				So(started.Match.BlueSide, ShouldEqual, model.SideRight)
			})

			Convey("And the completed set can be replayed", func() {
				rv, err := svc.Replay(ctx, "vb", 1, 1)
				So(err, ShouldBeNil)
				So(rv.Score, ShouldResemble, model.Score{Red: 1})

				_, err = svc.Replay(ctx, "vb", 9, 1)
				So(errors.Is(err, service.ErrSetNotFound), ShouldBeTrue)
			})

			Convey("And match stats cover every set", func() {
				st, err := svc.Stats(ctx, "vb", -1)
				So(err, ShouldBeNil)
				So(st.SetNumber, ShouldEqual, 0)
				So(st.Teams.Red.Scored, ShouldEqual, 1)

				hm, err := svc.Heatmap(ctx, "vb", -1, 4, 2)
				So(err, ShouldBeNil)
				So(hm.Red[1][1], ShouldEqual, 1)
			})
		})

		Convey("When the match is finished", func() {
			_, err := svc.SelectAction(ctx, "vb", "", service.Selection{Team: model.TeamBlue, Type: model.TypeFault, Action: model.ActionServiceMiss})
			So(err, ShouldBeNil)
			out, err := svc.FinishMatch(ctx, "vb", "")
			So(err, ShouldBeNil)

			Convey("Then further play is a no-op", func() {
				So(out.Match.Finished, ShouldBeTrue)
				sel, err := svc.SelectAction(ctx, "vb", "", attack)
				So(err, ShouldBeNil)
				So(sel.Changed, ShouldBeFalse)
				So(sel.Tap.Status, ShouldEqual, service.TapIgnored)
				So(sel.Match.Finished, ShouldBeTrue)

				tap, err := svc.RecordTap(ctx, "vb", "", 0.75, 0.5)
				So(err, ShouldBeNil)
				So(tap.Changed, ShouldBeFalse)

				undo, err := svc.Undo(ctx, "vb", "")
				So(err, ShouldBeNil)
				So(undo.Changed, ShouldBeFalse)
			})
		})

		Convey("When the match does not exist", func() {
			_, err := svc.Undo(ctx, "missing", "")

			Convey("Then a not found error is returned", func() {
				So(errors.Is(err, service.ErrMatchNotFound), ShouldBeTrue)
			})
		})
	})
}
