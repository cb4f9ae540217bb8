package service

import (
	"context"
	"fmt"

	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

func initialSync(_ context.Context, sc *StepContext) error {
	sc.State.AdvanceStatus(model.EventStatusAwaitingQuals)
	return nil
}

// populateEventTeams upserts the roster by team number and drops teams the source no longer lists
func populateEventTeams(ctx context.Context, sc *StepContext) error {
	teams, err := sc.Client.GetTeamsForEvent(ctx, sc.State.Event)
	if err != nil {
		return fmt.Errorf("fetch teams: %w", err)
	}
	if len(teams) == 0 {
		sc.Logger.Debug("source lists no teams yet")
		return nil
	}

	state := sc.State
	existing := make(map[int]*model.EventTeam, len(state.Teams))
	for _, t := range state.Teams {
		existing[t.TeamNumber] = t
	}
	seen := make(map[int]bool, len(teams))
	added, updated := 0, 0
	for _, src := range teams {
		seen[src.TeamNumber] = true
		cur, ok := existing[src.TeamNumber]
		if !ok {
			state.AddTeam(&model.EventTeam{
				TeamNumber: src.TeamNumber,
				Name:       src.Name,
				City:       src.City,
				StateProv:  src.StateProv,
				Country:    src.Country,
				RookieYear: src.RookieYear,
			})
			added++
			continue
		}
		if cur.Name != src.Name || cur.City != src.City || cur.StateProv != src.StateProv ||
			cur.Country != src.Country || cur.RookieYear != src.RookieYear {
			cur.Name, cur.City, cur.StateProv = src.Name, src.City, src.StateProv
			cur.Country, cur.RookieYear = src.Country, src.RookieYear
			state.MarkTeamChanged(cur)
			updated++
		}
	}
	removed := 0
	for _, t := range append([]*model.EventTeam(nil), state.Teams...) {
		if !seen[t.TeamNumber] {
			state.RemoveTeam(t)
			removed++
		}
	}
	sc.Logger.WithFields(logrus.Fields{"added": added, "updated": updated, "removed": removed}).Debug("event teams reconciled")
	return nil
}

// detectEventOver a Winner/Winning award naming a team completes the event
func detectEventOver(ctx context.Context, sc *StepContext) error {
	awards, err := sc.Client.GetAwardsForEvent(ctx, sc.State.Event)
	if err != nil {
		return fmt.Errorf("fetch awards: %w", err)
	}
	for _, a := range awards {
		if !a.IsEventWinnerAward() {
			continue
		}
		if sc.State.AdvanceStatus(model.EventStatusCompleted) {
			if sc.State.Event.CompletedAt == nil {
				now := sc.Now().UTC()
				sc.State.Event.CompletedAt = &now
			}
			sc.Logger.WithFields(logrus.Fields{"award": a.Name, "team": a.TeamNumber}).Info("event over")
		}
		return nil
	}
	return nil
}
