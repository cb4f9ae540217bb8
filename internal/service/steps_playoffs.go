package service

import (
	"context"
	"fmt"
	"slices"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/reconcile"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// loadAlliances adds, updates and removes alliances by name
func loadAlliances(ctx context.Context, sc *StepContext) error {
	alliances, err := sc.Client.GetAlliancesForEvent(ctx, sc.State.Event)
	if err != nil {
		return fmt.Errorf("fetch alliances: %w", err)
	}
	if len(alliances) == 0 {
		sc.Logger.Debug("alliance selection not published yet")
		return nil
	}

	state := sc.State
	listed := make(map[string]bool, len(alliances))
	for _, src := range alliances {
		listed[src.Name] = true
		cur := state.AllianceByName(src.Name)
		if cur == nil {
			state.AddAlliance(&model.Alliance{Number: src.Number, Name: src.Name, Teams: slices.Clone(src.Teams)})
			continue
		}
		if cur.Number != src.Number || !slices.Equal([]int(cur.Teams), src.Teams) {
			cur.Number = src.Number
			cur.Teams = slices.Clone(src.Teams)
			state.MarkAllianceChanged(cur)
		}
	}

	var removed []uuid.UUID
	for _, a := range slices.Clone(state.Alliances) {
		if !listed[a.Name] {
			removed = append(removed, a.ID)
			state.RemoveAlliance(a)
		}
	}
	if len(removed) > 0 {
		clearAllianceRefs(state, removed)
	}

	if len(state.Alliances) > 0 && state.AdvanceStatus(model.EventStatusAwaitingPlayoffs) {
		sc.Logger.WithField("alliances", len(state.Alliances)).Info("alliances loaded")
	}
	return nil
}

// clearAllianceRefs unsets ids of removed alliances on active plays so they correlate again
func clearAllianceRefs(state *model.EventState, removed []uuid.UUID) {
	gone := func(id *uuid.UUID) bool { return id != nil && slices.Contains(removed, *id) }
	for _, play := range state.ActivePlays(model.LevelPlayoff) {
		changed := false
		if gone(play.RedAllianceID) {
			play.RedAllianceID = nil
			changed = true
		}
		if gone(play.BlueAllianceID) {
			play.BlueAllianceID = nil
			changed = true
		}
		if changed {
			state.MarkMatchChanged(play)
		}
	}
}

// updatePlayoffResults reconciles playoff plays, correlates alliances, resolves winners and aggregates finals
func updatePlayoffResults(ctx context.Context, sc *StepContext) error {
	event := sc.State.Event

	// schedule and results are independent; fetch both then join
	var schedule, results []*model.SourceMatch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if schedule, err = sc.Client.GetPlayoffScheduleForEvent(gctx, event); err != nil {
			return fmt.Errorf("fetch playoff schedule: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if results, err = sc.Client.GetPlayoffResultsForEvent(gctx, event); err != nil {
			return fmt.Errorf("fetch playoff results: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	state := sc.State
	scheduled := sc.Reconciler.Reconcile(state, model.LevelPlayoff, schedule)
	played := sc.Reconciler.Reconcile(state, model.LevelPlayoff, results)
	sc.recordReplays(scheduled.Replays)
	sc.recordReplays(played.Replays)

	if len(state.ActivePlays(model.LevelPlayoff)) == 0 {
		return nil
	}
	if state.AdvanceStatus(model.EventStatusPlayoffsInProgress) {
		sc.Logger.Info("playoffs started")
	}

	reconcile.CorrelateAlliances(state)
	resolveWinners(ctx, sc, played, sc.Tiebreak())

	winner, err := reconcile.AggregateFinals(state, sc.FinalsRequiredWins)
	if err != nil {
		return err
	}
	if winner == nil {
		return nil
	}
	if event.WinningAllianceID == nil || *event.WinningAllianceID != *winner {
		id := *winner
		event.WinningAllianceID = &id
		state.MarkEventChanged()
	}
	if state.AdvanceStatus(model.EventStatusWinnerDetermined) {
		name := ""
		if a := state.AllianceByID(*winner); a != nil {
			name = a.Name
		}
		sc.Logger.WithFields(logrus.Fields{"alliance_id": *winner, "alliance": name}).Info("event winner determined")
	}
	return nil
}

func resolveWinners(ctx context.Context, sc *StepContext, out reconcile.Outcome, tiebreak interfaces.TiebreakResolver) {
	stats := reconcile.ResolveWinners(ctx, sc.State, out.Plays, tiebreak, sc.Logger)
	sc.Metrics.addTiebreakFailures(stats.TiebreakFailed)
}
