package zone

import "github.com/okian/courtside/internal/domain/model"

// Padel court geometry. The enclosure wraps the playing area with glass on
// the back walls and side walls, and grilles near the net.
const (
	pdLeft         = 30.0
	pdRight        = 570.0
	pdTop          = 30.0
	pdBottom       = 370.0
	pdServiceLeft  = 165.0
	pdServiceRight = 435.0
	pdWall         = 20.0
	pdGrille       = 80.0
	pdNetMargin    = 12.0

	pdEncLeft   = pdLeft - pdWall
	pdEncRight  = pdRight + pdWall
	pdEncTop    = pdTop - pdWall
	pdEncBottom = pdBottom + pdWall
)

// Padel is the padel zone model.
type Padel struct{}

func (Padel) Sport() model.Sport { return model.SportPadel }

func (Padel) Classify(x, y float64) Zone {
	inCourt := x >= pdLeft && x <= pdRight && y >= pdTop && y <= pdBottom
	if inCourt {
		if abs(x-netX) < pdNetMargin {
			return Net
		}
		if x >= pdServiceLeft && x < netX {
			return serviceBox(model.SideLeft, y < midY)
		}
		if x > netX && x <= pdServiceRight {
			return serviceBox(model.SideRight, y < midY)
		}
		return pick(sideOf(x), LeftCourt, RightCourt)
	}

	if (y < pdTop || y > pdBottom) && abs(x-netX) < pdGrille {
		return Grille
	}
	if y >= pdTop && y <= pdBottom {
		if x < pdLeft {
			return BackGlassLeft
		}
		if x > pdRight {
			return BackGlassRight
		}
	}
	if y < pdTop {
		return SideWallTop
	}
	if y > pdBottom {
		return SideWallBottom
	}
	return Outside
}

func (Padel) Allowed(z Zone, sel Selection) bool {
	own := TeamSide(sel.Team, sel.SidesSwapped)
	opp := own.Other()

	if sel.Action == model.ActionPadelAce {
		return z == aceTarget(own, sel.ServingSide)
	}
	if isPadelWinner(sel.Action) {
		glass := pick(opp, BackGlassLeft, BackGlassRight)
		if sel.Action == model.ActionPar3 {
			return oneOf(z, glass, Grille, SideWallTop, SideWallBottom)
		}
		return oneOf(z,
			pick(opp, LeftCourt, RightCourt),
			serviceBox(opp, true),
			serviceBox(opp, false),
			glass,
			Grille,
		)
	}

	switch sel.Action {
	case model.ActionPadelDoubleFault:
		return z == Outside || z == Net || (isServiceBox(z) && z != aceTarget(own, sel.ServingSide))
	case model.ActionPadelNetError:
		return z == Net
	case model.ActionPadelOut:
		return oneOf(z, Outside, SideWallTop, SideWallBottom)
	case model.ActionGrilleError:
		return z == Grille
	case model.ActionVitreError:
		return oneOf(z, BackGlassLeft, BackGlassRight, SideWallTop, SideWallBottom)
	default:
		return true
	}
}

func (Padel) Highlights(sel Selection) []Rect {
	own := TeamSide(sel.Team, sel.SidesSwapped)
	opp := own.Other()

	if sel.Action == model.ActionPadelAce {
		return []Rect{boxRect(aceTarget(own, sel.ServingSide), pdServiceLeft, pdServiceRight, pdTop, pdBottom)}
	}
	if isPadelWinner(sel.Action) {
		if sel.Action == model.ActionPar3 {
			return []Rect{
				{X: pdEncLeft, Y: pdEncTop, W: pdWall, H: pdEncBottom - pdEncTop},
				{X: pdRight, Y: pdEncTop, W: pdWall, H: pdEncBottom - pdEncTop},
				{X: pdEncLeft, Y: pdEncTop, W: pdEncRight - pdEncLeft, H: pdWall},
				{X: pdEncLeft, Y: pdBottom, W: pdEncRight - pdEncLeft, H: pdWall},
			}
		}
		if opp == model.SideRight {
			return []Rect{{X: netX, Y: pdEncTop, W: pdEncRight - netX, H: pdEncBottom - pdEncTop}}
		}
		return []Rect{{X: pdEncLeft, Y: pdEncTop, W: netX - pdEncLeft, H: pdEncBottom - pdEncTop}}
	}

	switch sel.Action {
	case model.ActionPadelNetError:
		return []Rect{{X: netX - pdNetMargin, Y: pdTop, W: 2 * pdNetMargin, H: pdBottom - pdTop}}
	case model.ActionGrilleError:
		return []Rect{
			{X: netX - pdGrille, Y: pdEncTop, W: 2 * pdGrille, H: pdWall},
			{X: netX - pdGrille, Y: pdBottom, W: 2 * pdGrille, H: pdWall},
		}
	case model.ActionVitreError:
		return []Rect{
			{X: pdEncLeft, Y: pdTop, W: pdWall, H: pdBottom - pdTop},
			{X: pdRight, Y: pdTop, W: pdWall, H: pdBottom - pdTop},
			{X: pdLeft, Y: pdEncTop, W: pdRight - pdLeft, H: pdWall},
			{X: pdLeft, Y: pdBottom, W: pdRight - pdLeft, H: pdWall},
		}
	default:
		return []Rect{Full}
	}
}

func isPadelWinner(a model.Action) bool {
	switch a {
	case model.ActionVibora, model.ActionBandeja, model.ActionSmashPadel, model.ActionVolee,
		model.ActionBajada, model.ActionChiquitaWinner, model.ActionPar3, model.ActionOtherPadelWinner:
		return true
	}
	return false
}

// boxRect returns the rectangle of a service box given the service lines
// and the vertical extent of the boxes.
func boxRect(box Zone, serviceLeft, serviceRight, top, bottom float64) Rect {
	left := box == ServiceBoxLeftTop || box == ServiceBoxLeftBottom
	upper := box == ServiceBoxLeftTop || box == ServiceBoxRightTop

	r := Rect{X: netX, W: serviceRight - netX, Y: midY, H: bottom - midY}
	if left {
		r.X, r.W = serviceLeft, netX-serviceLeft
	}
	if upper {
		r.Y, r.H = top, midY-top
	}
	return r
}
