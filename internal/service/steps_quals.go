package service

import (
	"context"
	"fmt"
	"math"
	"slices"

	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

// loadQualSchedule lays down play 1 of every scheduled qualification match.
// Active qualification plays the schedule no longer lists are discarded.
func loadQualSchedule(ctx context.Context, sc *StepContext) error {
	schedule, err := sc.Client.GetQualScheduleForEvent(ctx, sc.State.Event)
	if err != nil {
		return fmt.Errorf("fetch qualification schedule: %w", err)
	}
	if len(schedule) == 0 {
		sc.Logger.Debug("qualification schedule not published yet")
		return nil
	}

	state := sc.State
	out := sc.Reconciler.Reconcile(state, model.LevelQualification, schedule)
	sc.recordReplays(out.Replays)

	listed := make(map[int]bool, len(schedule))
	for _, m := range schedule {
		listed[m.MatchNumber] = true
	}
	dropped := 0
	for _, play := range state.ActivePlays(model.LevelQualification) {
		if !listed[play.MatchNumber] {
			play.IsDiscarded = true
			state.MarkMatchChanged(play)
			dropped++
		}
	}

	state.AdvanceStatus(model.EventStatusQualsInProgress)
	sc.Logger.WithFields(logrus.Fields{
		"scheduled": len(schedule),
		"created":   out.Created,
		"dropped":   dropped,
	}).Info("qualification schedule loaded")
	return nil
}

// updateQualResults reconciles results; the event moves on once every active qualification play has one
func updateQualResults(ctx context.Context, sc *StepContext) error {
	results, err := sc.Client.GetQualResultsForEvent(ctx, sc.State.Event)
	if err != nil {
		return fmt.Errorf("fetch qualification results: %w", err)
	}

	state := sc.State
	out := sc.Reconciler.Reconcile(state, model.LevelQualification, results)
	sc.recordReplays(out.Replays)
	resolveWinners(ctx, sc, out, nil)

	active := state.ActivePlays(model.LevelQualification)
	if len(active) == 0 {
		return nil
	}
	pending := 0
	for _, play := range active {
		if !play.HasResult() {
			pending++
		}
	}
	if pending == 0 && state.AdvanceStatus(model.EventStatusAwaitingAlliances) {
		sc.Logger.WithField("matches", len(active)).Info("qualifications complete")
	}
	return nil
}

// updateQualRankings replaces the ranking table when it differs from the stored one
func updateQualRankings(ctx context.Context, sc *StepContext) error {
	rankings, err := sc.Client.GetQualRankingsForEvent(ctx, sc.State.Event)
	if err != nil {
		return fmt.Errorf("fetch rankings: %w", err)
	}
	rows := make([]*model.EventRanking, 0, len(rankings))
	for _, r := range rankings {
		rows = append(rows, &model.EventRanking{
			TeamNumber:        r.TeamNumber,
			Rank:              r.Rank,
			Wins:              r.Wins,
			Losses:            r.Losses,
			Ties:              r.Ties,
			SortOrders:        slices.Clone(r.SortOrders),
			QualAverage:       roundAverage(r.QualAverage),
			Disqualifications: r.Disqualifications,
			MatchesPlayed:     r.MatchesPlayed,
		})
	}
	if rankingsEqual(sc.State.Rankings, rows) {
		return nil
	}
	sc.State.ReplaceRankings(rows)
	sc.Logger.WithField("rows", len(rows)).Debug("rankings replaced")
	return nil
}

func rankingsEqual(stored, fresh []*model.EventRanking) bool {
	if len(stored) != len(fresh) {
		return false
	}
	byTeam := make(map[int]*model.EventRanking, len(stored))
	for _, r := range stored {
		byTeam[r.TeamNumber] = r
	}
	for _, f := range fresh {
		s, ok := byTeam[f.TeamNumber]
		if !ok {
			return false
		}
		if s.Rank != f.Rank || s.Wins != f.Wins || s.Losses != f.Losses || s.Ties != f.Ties ||
			!sameAverage(s.QualAverage, f.QualAverage) || s.Disqualifications != f.Disqualifications ||
			s.MatchesPlayed != f.MatchesPlayed || !slices.Equal([]float64(s.SortOrders), []float64(f.SortOrders)) {
			return false
		}
	}
	return true
}

// roundAverage qual averages are stored as numeric(10,4); rounding here keeps the database from
// picking a different half-way rounding than the comparison below
func roundAverage(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func sameAverage(a, b float64) bool {
	return math.Round(a*1e4) == math.Round(b*1e4)
}
