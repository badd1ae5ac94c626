package zone

import "github.com/okian/courtside/internal/domain/model"

// Volleyball court geometry.
const (
	vbLeft      = 20.0
	vbRight     = 580.0
	vbTop       = 20.0
	vbBottom    = 380.0
	vbNetMargin = 15.0
)

// Volleyball is the volleyball zone model.
type Volleyball struct{}

func (Volleyball) Sport() model.Sport { return model.SportVolleyball }

func (Volleyball) Classify(x, y float64) Zone {
	inCourt := x >= vbLeft && x <= vbRight && y >= vbTop && y <= vbBottom
	if inCourt {
		if abs(x-netX) < vbNetMargin {
			return Net
		}
		return pick(sideOf(x), LeftCourt, RightCourt)
	}
	return pick(sideOf(x), OutsideLeft, OutsideRight)
}

func (Volleyball) Allowed(z Zone, sel Selection) bool {
	own := TeamSide(sel.Team, sel.SidesSwapped)
	opp := own.Other()

	if isVolleyballOffensive(sel.Action) {
		return z == pick(opp, LeftCourt, RightCourt)
	}
	switch sel.Action {
	case model.ActionServiceMiss, model.ActionOut:
		return z == pick(opp, OutsideLeft, OutsideRight)
	case model.ActionNetFault:
		return z == Net
	case model.ActionBlockOut:
		return z == pick(own, OutsideLeft, OutsideRight)
	default:
		return true
	}
}

func (Volleyball) Highlights(sel Selection) []Rect {
	own := TeamSide(sel.Team, sel.SidesSwapped)
	opp := own.Other()

	if isVolleyballOffensive(sel.Action) {
		return []Rect{vbCourt(opp)}
	}
	switch sel.Action {
	case model.ActionServiceMiss, model.ActionOut:
		return vbOutside(opp)
	case model.ActionNetFault:
		return []Rect{{X: netX - vbNetMargin, Y: vbTop, W: 2 * vbNetMargin, H: vbBottom - vbTop}}
	case model.ActionBlockOut:
		return vbOutside(own)
	default:
		return []Rect{Full}
	}
}

func isVolleyballOffensive(a model.Action) bool {
	switch a {
	case model.ActionAttack, model.ActionAce, model.ActionBlock,
		model.ActionBidouille, model.ActionSecondeMain, model.ActionOtherOffensive:
		return true
	}
	return false
}

func vbCourt(side model.Side) Rect {
	if side == model.SideLeft {
		return Rect{X: vbLeft, Y: vbTop, W: netX - vbLeft, H: vbBottom - vbTop}
	}
	return Rect{X: netX, Y: vbTop, W: vbRight - netX, H: vbBottom - vbTop}
}

func vbOutside(side model.Side) []Rect {
	if side == model.SideLeft {
		return []Rect{
			{X: 0, Y: 0, W: vbLeft, H: Height},
			{X: vbLeft, Y: 0, W: netX - vbLeft, H: vbTop},
			{X: vbLeft, Y: vbBottom, W: netX - vbLeft, H: Height - vbBottom},
		}
	}
	return []Rect{
		{X: vbRight, Y: 0, W: Width - vbRight, H: Height},
		{X: netX, Y: 0, W: vbRight - netX, H: vbTop},
		{X: netX, Y: vbBottom, W: vbRight - netX, H: Height - vbBottom},
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
