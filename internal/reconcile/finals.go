package reconcile

import (
	"strings"

	"EventSync/internal/model"

	"github.com/google/uuid"
)

// DefaultFinalsRequiredWins finals series length is best of three
const DefaultFinalsRequiredWins = 2

// IsFinalsPlay finals plays are named "Final ..." or "Overtime ..."
func IsFinalsPlay(m *model.Match) bool {
	return strings.HasPrefix(m.Name, "Final") || strings.HasPrefix(m.Name, "Overtime")
}

// FinalsWins decided (non-tie) finals wins per alliance over active plays
func FinalsWins(state *model.EventState) map[uuid.UUID]int {
	wins := make(map[uuid.UUID]int)
	for _, play := range state.ActivePlays(model.LevelPlayoff) {
		if !IsFinalsPlay(play) || play.Winner == nil {
			continue
		}
		var id *uuid.UUID
		switch *play.Winner {
		case model.WinnerRed:
			id = play.RedAllianceID
		case model.WinnerBlue:
			id = play.BlueAllianceID
		}
		if id != nil {
			wins[*id]++
		}
	}
	return wins
}

// AggregateFinals returns the event winner once exactly one alliance reaches requiredWins.
// nil, nil means the series is undecided. More than one alliance at the threshold is an
// *AmbiguousFinalsError and is never resolved here.
func AggregateFinals(state *model.EventState, requiredWins int) (*uuid.UUID, error) {
	if requiredWins <= 0 {
		requiredWins = DefaultFinalsRequiredWins
	}
	wins := FinalsWins(state)
	var leaders []uuid.UUID
	for id, n := range wins {
		if n >= requiredWins {
			leaders = append(leaders, id)
		}
	}
	switch len(leaders) {
	case 0:
		return nil, nil
	case 1:
		winner := leaders[0]
		return &winner, nil
	default:
		return nil, &AmbiguousFinalsError{
			RequiredWins: requiredWins,
			Wins:         wins,
			Names:        allianceNames(state.Alliances),
		}
	}
}
