package scoring

import (
	"fmt"
	"strconv"

	"github.com/okian/courtside/internal/domain/model"
)

// Tennis scoring constants.
const (
	pointsToWinGame     = 4
	gamesToWinSet       = 6
	pointsToWinTiebreak = 7
	winningMargin       = 2
)

// Config selects the game and set rules of the fold.
type Config struct {
	// AdvantageRule requires a two point lead after deuce. When false the
	// next point at 40-40 wins the game (golden point).
	AdvantageRule bool
	// TiebreakEnabled plays a tiebreak game at 6-6.
	TiebreakEnabled bool
}

// ConfigFrom extracts the fold configuration from match metadata.
func ConfigFrom(meta model.Metadata) Config {
	return Config{AdvantageRule: meta.AdvantageRule, TiebreakEnabled: meta.TiebreakEnabled}
}

// GameScore is the displayed score of the game in progress.
type GameScore struct {
	Blue string `json:"blue"`
	Red  string `json:"red"`
}

// GameState is the game-set view of one period.
type GameState struct {
	Games           model.Score       `json:"games"`
	GameScore       GameScore         `json:"game_score"`
	Tiebreak        bool              `json:"tiebreak"`
	SetJustWon      *model.Team       `json:"set_just_won,omitempty"`
	ServingTeam     model.Team        `json:"serving_team"`
	ServingSide     model.ServingSide `json:"serving_side"`
	TotalGamesInSet int               `json:"total_games_in_set"`
	GamesDisplay    string            `json:"games_display"`
}

// ComputeGameState folds the points of one set into its game state. Neutral
// points are skipped. The fold has no memory: the same log always yields the
// same state.
func ComputeGameState(points []model.Point, cfg Config, initialServer model.Team) GameState {
	var (
		games      model.Score
		blue, red  int
		tiebreak   bool
		setJustWon *model.Team
		completed  int
	)

	for _, p := range points {
		if !p.Counts() {
			continue
		}
		if p.Team == model.TeamBlue {
			blue++
		} else {
			red++
		}

		if tiebreak {
			if hi, lo := maxMin(blue, red); hi >= pointsToWinTiebreak && hi-lo >= winningMargin {
				w := model.TeamRed
				if blue > red {
					w = model.TeamBlue
				}
				addGame(&games, w)
				completed++
				setJustWon = &w
				blue, red = 0, 0
				tiebreak = false
			}
			continue
		}

		w, ok := gameWinner(blue, red, cfg.AdvantageRule)
		if !ok {
			setJustWon = nil
			continue
		}
		addGame(&games, w)
		completed++
		blue, red = 0, 0
		setJustWon = nil

		if sw, won := setWinner(games); won {
			setJustWon = &sw
		} else if cfg.TiebreakEnabled && games.Blue == gamesToWinSet && games.Red == gamesToWinSet {
			tiebreak = true
		}
	}

	st := GameState{
		Games:           games,
		Tiebreak:        tiebreak,
		SetJustWon:      setJustWon,
		ServingTeam:     server(initialServer, completed, tiebreak, blue+red),
		ServingSide:     model.ServingDeuce,
		TotalGamesInSet: completed,
		GamesDisplay:    fmt.Sprintf("%d - %d", games.Blue, games.Red),
	}
	if (blue+red)%2 == 1 {
		st.ServingSide = model.ServingAd
	}
	if tiebreak {
		st.GameScore = GameScore{Blue: strconv.Itoa(blue), Red: strconv.Itoa(red)}
	} else {
		st.GameScore = formatGameScore(blue, red, cfg.AdvantageRule)
	}
	return st
}

// server returns the serving team. Outside a tiebreak the serve alternates
// every game. In a tiebreak the next server in sequence serves the first
// point, then the serve changes after that point and every two points.
func server(initial model.Team, completed int, tiebreak bool, tbPoints int) model.Team {
	other := initial.Opponent()
	first := initial
	if completed%2 == 1 {
		first = other
	}
	if !tiebreak || tbPoints == 0 {
		return first
	}
	if ((tbPoints-1)/2)%2 == 0 {
		return first.Opponent()
	}
	return first
}

func gameWinner(blue, red int, advantage bool) (model.Team, bool) {
	if blue < pointsToWinGame && red < pointsToWinGame {
		return "", false
	}
	if !advantage {
		switch {
		case blue >= pointsToWinGame && blue > red:
			return model.TeamBlue, true
		case red >= pointsToWinGame && red > blue:
			return model.TeamRed, true
		}
		return "", false
	}
	switch {
	case blue >= pointsToWinGame && blue-red >= winningMargin:
		return model.TeamBlue, true
	case red >= pointsToWinGame && red-blue >= winningMargin:
		return model.TeamRed, true
	}
	return "", false
}

// setWinner applies first-to-six with a two game lead. Without a tiebreak
// the lead requirement simply continues past 6-6.
func setWinner(games model.Score) (model.Team, bool) {
	switch {
	case games.Blue >= gamesToWinSet && games.Blue-games.Red >= winningMargin:
		return model.TeamBlue, true
	case games.Red >= gamesToWinSet && games.Red-games.Blue >= winningMargin:
		return model.TeamRed, true
	}
	return "", false
}

var tennisPoints = [...]string{"0", "15", "30", "40"}

func formatGameScore(blue, red int, advantage bool) GameScore {
	label := func(n int) string {
		if n >= len(tennisPoints) {
			return "40"
		}
		return tennisPoints[n]
	}
	if blue < 3 || red < 3 || blue == red || !advantage {
		return GameScore{Blue: label(blue), Red: label(red)}
	}
	if blue > red {
		return GameScore{Blue: "Ad", Red: "40"}
	}
	return GameScore{Blue: "40", Red: "Ad"}
}

func addGame(games *model.Score, w model.Team) {
	if w == model.TeamBlue {
		games.Blue++
	} else {
		games.Red++
	}
}

func maxMin(a, b int) (int, int) {
	if a > b {
		return a, b
	}
	return b, a
}
