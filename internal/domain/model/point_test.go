package model_test

import (
	"testing"

	model "github.com/okian/courtside/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTeam(t *testing.T) {
	convey.Convey("Given the two teams", t, func() {
		convey.Convey("Then each is the opponent of the other", func() {
			convey.So(model.TeamBlue.Opponent(), convey.ShouldEqual, model.TeamRed)
			convey.So(model.TeamRed.Opponent(), convey.ShouldEqual, model.TeamBlue)
		})

		convey.Convey("Then only blue and red are valid", func() {
			convey.So(model.TeamBlue.Valid(), convey.ShouldBeTrue)
			convey.So(model.TeamRed.Valid(), convey.ShouldBeTrue)
			convey.So(model.Team("green").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestPoint(t *testing.T) {
	convey.Convey("Given a point at the sentinel coordinate", t, func() {
		p := model.Point{Team: model.TeamRed, Type: model.TypeFault, X: model.NoCourtX, Y: model.NoCourtY}

		convey.Convey("Then it has no position but still counts", func() {
			convey.So(p.HasPosition(), convey.ShouldBeFalse)
			convey.So(p.Counts(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a neutral point on court", t, func() {
		p := model.Point{Type: model.TypeNeutral, X: 0.5, Y: 0.5}

		convey.Convey("Then it has a position and does not count", func() {
			convey.So(p.HasPosition(), convey.ShouldBeTrue)
			convey.So(p.Counts(), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a rally action with both endpoints", t, func() {
		sx, sy, ex, ey := 0.1, 0.2, 0.8, 0.9
		r := model.RallyAction{StartX: &sx, StartY: &sy, EndX: &ex, EndY: &ey}

		convey.Convey("Then it has a direction", func() {
			convey.So(r.HasDirection(), convey.ShouldBeTrue)
			convey.So(model.RallyAction{}.HasDirection(), convey.ShouldBeFalse)
		})
	})
}

func TestScore(t *testing.T) {
	convey.Convey("Given a tied score", t, func() {
		s := model.Score{Blue: 3, Red: 3}

		convey.Convey("Then blue is the leader", func() {
			convey.So(s.Leader(), convey.ShouldEqual, model.TeamBlue)
		})
	})

	convey.Convey("Given red ahead", t, func() {
		s := model.Score{Blue: 1, Red: 2}

		convey.Convey("Then red leads and tallies are addressable by team", func() {
			convey.So(s.Leader(), convey.ShouldEqual, model.TeamRed)
			convey.So(s.Of(model.TeamRed), convey.ShouldEqual, 2)
			convey.So(s.Of(model.TeamBlue), convey.ShouldEqual, 1)
		})
	})
}

func TestMetadata(t *testing.T) {
	convey.Convey("Given default metadata", t, func() {
		m := model.DefaultMetadata()

		convey.Convey("Then the court and tennis rules are on", func() {
			convey.So(m.HasCourt, convey.ShouldBeTrue)
			convey.So(m.AdvantageRule, convey.ShouldBeTrue)
			convey.So(m.TiebreakEnabled, convey.ShouldBeTrue)
			convey.So(m.InitialServer, convey.ShouldEqual, model.TeamBlue)
			convey.So(m.DirectionMode(), convey.ShouldBeFalse)
		})

		convey.Convey("Then direction mode needs performance mode", func() {
			m.DirectionTracking = true
			convey.So(m.DirectionMode(), convey.ShouldBeFalse)
			m.PerformanceMode = true
			convey.So(m.DirectionMode(), convey.ShouldBeTrue)
		})
	})
}
