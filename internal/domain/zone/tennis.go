package zone

import "github.com/okian/courtside/internal/domain/model"

// Tennis court geometry: doubles rectangle, singles sidelines and service
// lines. The alleys between singles and doubles sidelines count as wide.
const (
	tnLeft          = 30.0
	tnRight         = 570.0
	tnTop           = 40.0
	tnBottom        = 360.0
	tnSinglesTop    = 80.0
	tnSinglesBottom = 320.0
	tnServiceLeft   = 165.0
	tnServiceRight  = 435.0
	tnNetMargin     = 12.0
)

// Tennis is the tennis zone model.
type Tennis struct{}

func (Tennis) Sport() model.Sport { return model.SportTennis }

func (Tennis) Classify(x, y float64) Zone {
	inCourt := x >= tnLeft && x <= tnRight && y >= tnTop && y <= tnBottom
	if !inCourt {
		switch {
		case x < tnLeft:
			return LongLeft
		case x > tnRight:
			return LongRight
		default:
			return pick(sideOf(x), WideLeft, WideRight)
		}
	}
	if abs(x-netX) < tnNetMargin {
		return Net
	}
	if y < tnSinglesTop || y > tnSinglesBottom {
		return pick(sideOf(x), WideLeft, WideRight)
	}
	if x >= tnServiceLeft && x < netX {
		return serviceBox(model.SideLeft, y < midY)
	}
	if x > netX && x <= tnServiceRight {
		return serviceBox(model.SideRight, y < midY)
	}
	return pick(sideOf(x), LeftCourt, RightCourt)
}

func (Tennis) Allowed(z Zone, sel Selection) bool {
	own := TeamSide(sel.Team, sel.SidesSwapped)
	opp := own.Other()

	if sel.Action == model.ActionTennisAce {
		return z == aceTarget(own, sel.ServingSide)
	}
	if isTennisWinner(sel.Action) {
		return oneOf(z, pick(opp, LeftCourt, RightCourt), serviceBox(opp, true), serviceBox(opp, false))
	}
	switch sel.Action {
	case model.ActionDoubleFault:
		return oneOf(z, Net, WideLeft, WideRight, LongLeft, LongRight) ||
			(isServiceBox(z) && z != aceTarget(own, sel.ServingSide))
	case model.ActionNetError:
		return z == Net
	case model.ActionOutLong:
		return z == pick(opp, LongLeft, LongRight)
	case model.ActionOutWide:
		return z == pick(opp, WideLeft, WideRight)
	default:
		return true
	}
}

func (Tennis) Highlights(sel Selection) []Rect {
	own := TeamSide(sel.Team, sel.SidesSwapped)
	opp := own.Other()

	if sel.Action == model.ActionTennisAce {
		return []Rect{boxRect(aceTarget(own, sel.ServingSide), tnServiceLeft, tnServiceRight, tnSinglesTop, tnSinglesBottom)}
	}
	if isTennisWinner(sel.Action) {
		h := tnSinglesBottom - tnSinglesTop
		if opp == model.SideLeft {
			return []Rect{{X: tnLeft, Y: tnSinglesTop, W: netX - tnLeft, H: h}}
		}
		return []Rect{{X: netX, Y: tnSinglesTop, W: tnRight - netX, H: h}}
	}
	switch sel.Action {
	case model.ActionNetError:
		return []Rect{{X: netX - tnNetMargin, Y: tnTop, W: 2 * tnNetMargin, H: tnBottom - tnTop}}
	case model.ActionOutLong:
		if opp == model.SideLeft {
			return []Rect{{X: 0, Y: 0, W: tnLeft, H: Height}}
		}
		return []Rect{{X: tnRight, Y: 0, W: Width - tnRight, H: Height}}
	case model.ActionOutWide:
		x, w := netX, tnRight-netX
		if opp == model.SideLeft {
			x, w = tnLeft, netX-tnLeft
		}
		return []Rect{
			{X: x, Y: 0, W: w, H: tnSinglesTop},
			{X: x, Y: tnSinglesBottom, W: w, H: Height - tnSinglesBottom},
		}
	default:
		return []Rect{Full}
	}
}

func isTennisWinner(a model.Action) bool {
	switch a {
	case model.ActionWinnerForehand, model.ActionWinnerBackhand, model.ActionVolleyWinner,
		model.ActionSmash, model.ActionDropShotWinner, model.ActionOtherTennisWinner:
		return true
	}
	return false
}
