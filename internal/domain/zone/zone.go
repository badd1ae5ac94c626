// Package zone classifies court taps into named regions and decides whether a
// tap is a legal landing spot for the selected action.
//
// Taps arrive normalized to [0,1] on both axes and are scaled into a fixed
// 600x400 court space. All rules are written against physical sides (left
// or right of the net) and translate teams to sides with TeamSide.
package zone

import (
	"github.com/okian/courtside/internal/domain/model"
)

// Court space dimensions.
const (
	Width  = 600.0
	Height = 400.0
	netX   = 300.0
	midY   = 200.0
)

// Zone names a region of the court diagram.
type Zone string

const (
	None         Zone = "none"
	LeftCourt    Zone = "left_court"
	RightCourt   Zone = "right_court"
	Net          Zone = "net"
	OutsideLeft  Zone = "outside_left"
	OutsideRight Zone = "outside_right"
	Outside      Zone = "outside"

	ServiceBoxLeftTop     Zone = "service_box_left_top"
	ServiceBoxLeftBottom  Zone = "service_box_left_bottom"
	ServiceBoxRightTop    Zone = "service_box_right_top"
	ServiceBoxRightBottom Zone = "service_box_right_bottom"

	BackGlassLeft    Zone = "back_glass_left"
	BackGlassRight   Zone = "back_glass_right"
	SideWallTop      Zone = "side_wall_top"
	SideWallBottom   Zone = "side_wall_bottom"
	Grille           Zone = "grille"
	WideLeft         Zone = "wide_left"
	WideRight        Zone = "wide_right"
	LongLeft         Zone = "long_left"
	LongRight        Zone = "long_right"
	LeftTwo          Zone = "left_two"
	LeftThree        Zone = "left_three"
	RightTwo         Zone = "right_two"
	RightThree       Zone = "right_three"
)

// Rect is an axis-aligned rectangle in court space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Full is the whole court diagram.
var Full = Rect{X: 0, Y: 0, W: Width, H: Height}

// Selection is the context a tap is validated against.
type Selection struct {
	Team         model.Team
	Type         model.PointType
	Action       model.Action
	SidesSwapped bool
	ServingSide  model.ServingSide
}

// Model is the zone geometry and legality table of one sport.
type Model interface {
	Sport() model.Sport
	// Classify maps a court-space coordinate to a zone.
	Classify(x, y float64) Zone
	// Allowed reports whether the selection may land in zone.
	Allowed(z Zone, sel Selection) bool
	// Highlights returns the rectangles a caller should emphasize for sel.
	Highlights(sel Selection) []Rect
}

// New returns the zone model of sport.
func New(sport model.Sport) (Model, bool) {
	switch sport {
	case model.SportVolleyball:
		return Volleyball{}, true
	case model.SportTennis:
		return Tennis{}, true
	case model.SportPadel:
		return Padel{}, true
	case model.SportBasketball:
		return Basketball{}, true
	default:
		return nil, false
	}
}

// TeamSide returns the physical side a team defends.
func TeamSide(team model.Team, sidesSwapped bool) model.Side {
	if (team == model.TeamBlue) != sidesSwapped {
		return model.SideLeft
	}
	return model.SideRight
}

// Scale converts a normalized tap to court space. Taps outside the unit
// square report false.
func Scale(x, y float64) (float64, float64, bool) {
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return 0, 0, false
	}
	return x * Width, y * Height, true
}

// Locate classifies a normalized tap with m.
func Locate(m Model, x, y float64) Zone {
	sx, sy, ok := Scale(x, y)
	if !ok {
		return None
	}
	return m.Classify(sx, sy)
}

// Check classifies a normalized tap and reports whether it is legal for sel.
func Check(m Model, x, y float64, sel Selection) (Zone, bool) {
	z := Locate(m, x, y)
	if z == None {
		return z, IsOutFault(sel.Action)
	}
	return z, m.Allowed(z, sel)
}

// IsOutFault reports whether the action is a ball-out fault, the only kind
// allowed to land off the diagram.
func IsOutFault(a model.Action) bool {
	switch a {
	case model.ActionOut, model.ActionPadelOut, model.ActionOutLong, model.ActionOutWide:
		return true
	}
	return false
}

// Contains reports whether the court-space point lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func pick[T any](side model.Side, left, right T) T {
	if side == model.SideLeft {
		return left
	}
	return right
}

func sideOf(x float64) model.Side {
	if x < netX {
		return model.SideLeft
	}
	return model.SideRight
}

// serviceBox returns the box on side, top or bottom half.
func serviceBox(side model.Side, top bool) Zone {
	if side == model.SideLeft {
		if top {
			return ServiceBoxLeftTop
		}
		return ServiceBoxLeftBottom
	}
	if top {
		return ServiceBoxRightTop
	}
	return ServiceBoxRightBottom
}

// aceTarget returns the single service box a serve from serverSide must
// land in. The box lies on the receiver's side and is the top one iff the
// server stands left and serves from deuce, or stands right and serves from
// ad.
func aceTarget(serverSide model.Side, serving model.ServingSide) Zone {
	if serving == "" {
		serving = model.ServingDeuce
	}
	top := (serverSide == model.SideLeft) == (serving == model.ServingDeuce)
	return serviceBox(serverSide.Other(), top)
}

func isServiceBox(z Zone) bool {
	switch z {
	case ServiceBoxLeftTop, ServiceBoxLeftBottom, ServiceBoxRightTop, ServiceBoxRightBottom:
		return true
	}
	return false
}

func oneOf(z Zone, zones ...Zone) bool {
	for _, c := range zones {
		if z == c {
			return true
		}
	}
	return false
}
