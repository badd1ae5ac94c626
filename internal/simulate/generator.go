package simulate

import (
	"sync"

	"github.com/brianvoe/gofakeit/v7"

	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/zone"
)

// Generator produces match fixtures and operator choices from a seeded
// faker. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a fixed seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(uint64(seed))}
}

// TeamNames returns two distinct club names.
func (g *Generator) TeamNames() model.TeamNames {
	g.mu.Lock()
	defer g.mu.Unlock()
	blue := g.faker.City()
	red := g.faker.City()
	for red == blue {
		red = g.faker.City()
	}
	return model.TeamNames{Blue: blue, Red: red}
}

// Roster returns n players with unique ids and shirt numbers.
func (g *Generator) Roster(n int) []model.Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	players := make([]model.Player, 0, n)
	numbers := map[int]bool{}
	for len(players) < n {
		number := g.faker.Number(1, 99)
		if numbers[number] {
			continue
		}
		numbers[number] = true
		players = append(players, model.Player{
			ID:     g.faker.UUID(),
			Name:   g.faker.FirstName() + " " + g.faker.LastName(),
			Number: number,
		})
	}
	return players
}

// Selection picks a team and one of the sport's point-concluding actions.
func (g *Generator) Selection(defs []sport.ActionDef) (service.Selection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	candidates := make([]sport.ActionDef, 0, len(defs))
	for _, d := range defs {
		if d.Type == model.TypeScored || d.Type == model.TypeFault {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return service.Selection{}, false
	}
	d := candidates[g.faker.Number(0, len(candidates)-1)]
	team := model.TeamBlue
	if g.faker.Bool() {
		team = model.TeamRed
	}
	return service.Selection{Team: team, Type: d.Type, Action: d.Action}, true
}

// Tap returns a position inside one of rects, away from its edges. Without
// rects it returns a position anywhere on the diagram.
func (g *Generator) Tap(rects []zone.Rect) (float64, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(rects) == 0 {
		return g.faker.Float64Range(0.05, 0.95), g.faker.Float64Range(0.05, 0.95)
	}
	r := rects[g.faker.Number(0, len(rects)-1)]
	return r.X + r.W*g.faker.Float64Range(0.2, 0.8), r.Y + r.H*g.faker.Float64Range(0.2, 0.8)
}

// Player picks a roster player, or "" to skip attribution about one time in
// five.
func (g *Generator) Player(players []model.Player) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(players) == 0 || g.faker.Number(1, 5) == 1 {
		return ""
	}
	return players[g.faker.Number(0, len(players)-1)].ID
}

// CommandID returns a fresh idempotency key.
func (g *Generator) CommandID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.UUID()
}
