package zone

import (
	"math"

	"github.com/okian/courtside/internal/domain/model"
)

// Basketball court geometry. Each three-point arc is a half circle around a
// point just in front of the hoop, continued by straight corner lines.
const (
	bbLeft         = 20.0
	bbRight        = 580.0
	bbTop          = 20.0
	bbBottom       = 380.0
	bbArcLeftX     = 70.0
	bbArcRightX    = 530.0
	bbArcRadius    = 120.0
	bbCornerTop    = 80.0
	bbCornerBottom = 320.0
)

// Basketball is the basketball zone model. A team attacks the hoop on the
// side it does not defend.
type Basketball struct{}

func (Basketball) Sport() model.Sport { return model.SportBasketball }

func (Basketball) Classify(x, y float64) Zone {
	if x < bbLeft || x > bbRight || y < bbTop || y > bbBottom {
		return Outside
	}
	side := sideOf(x)
	cx := pick(side, bbArcLeftX, bbArcRightX)
	behindArcCenter := (side == model.SideLeft && x <= cx) || (side == model.SideRight && x >= cx)

	var two bool
	if behindArcCenter {
		two = y >= bbCornerTop && y <= bbCornerBottom
	} else {
		two = math.Hypot(x-cx, y-midY) <= bbArcRadius
	}
	if two {
		return pick(side, LeftTwo, RightTwo)
	}
	return pick(side, LeftThree, RightThree)
}

func (Basketball) Allowed(z Zone, sel Selection) bool {
	opp := TeamSide(sel.Team, sel.SidesSwapped).Other()
	two := pick(opp, LeftTwo, RightTwo)
	three := pick(opp, LeftThree, RightThree)

	switch sel.Action {
	case model.ActionFreeThrow, model.ActionTwoPoints:
		return z == two
	case model.ActionThreePoints:
		return z == three
	case model.ActionMissedShot:
		return z == two || z == three
	default:
		return true
	}
}

func (Basketball) Highlights(sel Selection) []Rect {
	opp := TeamSide(sel.Team, sel.SidesSwapped).Other()

	half := Rect{X: bbLeft, Y: bbTop, W: netX - bbLeft, H: bbBottom - bbTop}
	paint := Rect{X: bbLeft, Y: bbCornerTop, W: bbArcLeftX + bbArcRadius - bbLeft, H: bbCornerBottom - bbCornerTop}
	if opp == model.SideRight {
		half.X = netX
		paint.X = bbArcRightX - bbArcRadius
	}

	switch sel.Action {
	case model.ActionFreeThrow, model.ActionTwoPoints:
		return []Rect{paint}
	case model.ActionThreePoints, model.ActionMissedShot:
		return []Rect{half}
	default:
		return []Rect{Full}
	}
}
