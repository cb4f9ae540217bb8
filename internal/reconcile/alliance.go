package reconcile

import (
	"EventSync/internal/model"

	"github.com/google/uuid"
)

// CorrelateAlliances binds active playoff plays to alliances by roster intersection.
// Sides that already carry an id are left alone; no intersection leaves the side unset.
// Returns the number of sides assigned.
func CorrelateAlliances(state *model.EventState) int {
	if len(state.Alliances) == 0 {
		return 0
	}
	assigned := 0
	for _, play := range state.ActivePlays(model.LevelPlayoff) {
		changed := false
		if play.RedAllianceID == nil {
			if a := matchAlliance(state.Alliances, play.RedTeams); a != nil {
				id := a.ID
				play.RedAllianceID = &id
				changed = true
			}
		}
		if play.BlueAllianceID == nil {
			if a := matchAlliance(state.Alliances, play.BlueTeams); a != nil {
				id := a.ID
				play.BlueAllianceID = &id
				changed = true
			}
		}
		if changed {
			state.MarkMatchChanged(play)
			assigned++
		}
	}
	return assigned
}

// matchAlliance largest roster overlap wins; equal overlaps go to the lower alliance number
func matchAlliance(alliances []*model.Alliance, teams []int) *model.Alliance {
	if len(teams) == 0 {
		return nil
	}
	side := make(map[int]struct{}, len(teams))
	for _, t := range teams {
		side[t] = struct{}{}
	}
	var best *model.Alliance
	bestOverlap := 0
	for _, a := range alliances {
		overlap := 0
		for _, t := range a.Teams {
			if _, ok := side[t]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		if overlap > bestOverlap || (overlap == bestOverlap && a.Number < best.Number) {
			best, bestOverlap = a, overlap
		}
	}
	return best
}

// allianceNames id to name lookup for error reporting
func allianceNames(alliances []*model.Alliance) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(alliances))
	for _, a := range alliances {
		out[a.ID] = a.Name
	}
	return out
}
