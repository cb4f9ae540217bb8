package reconcile

import (
	"slices"
	"time"

	"EventSync/internal/model"
)

// DefaultReplayTolerance minimum actual-start shift that marks a new play
const DefaultReplayTolerance = time.Minute

// MatchReconciler merges fetched match rows into the stored plays of an event
type MatchReconciler struct {
	Tolerance time.Duration
}

func NewMatchReconciler(tolerance time.Duration) *MatchReconciler {
	if tolerance <= 0 {
		tolerance = DefaultReplayTolerance
	}
	return &MatchReconciler{Tolerance: tolerance}
}

// Reconciled the active play an incoming row was applied to
type Reconciled struct {
	Play   *model.Match
	Source *model.SourceMatch
}

// Outcome result of one Reconcile call
type Outcome struct {
	Plays   []Reconciled
	Created int
	Updated int
	Replays []*model.Match // plays created because a replay was detected
	Unmoved int
}

// IsReplay the stored play already started and the incoming start moved by at least the tolerance
func (r *MatchReconciler) IsReplay(stored *model.Match, incoming *model.SourceMatch) bool {
	if stored.ActualStartTime == nil || incoming.ActualStartTime == nil {
		return false
	}
	diff := incoming.ActualStartTime.Sub(*stored.ActualStartTime)
	if diff < 0 {
		diff = -diff
	}
	return diff >= r.Tolerance
}

// Reconcile applies incoming rows of one level. Unchanged rows produce no tracked mutation.
func (r *MatchReconciler) Reconcile(state *model.EventState, level model.TournamentLevel, incoming []*model.SourceMatch) Outcome {
	var out Outcome
	for _, in := range incoming {
		latest := state.LatestPlay(level, in.MatchNumber)
		switch {
		case latest == nil:
			play := &model.Match{Level: level, MatchNumber: in.MatchNumber, PlayNumber: 1}
			applySource(play, in)
			state.AddMatch(play)
			out.Created++
			out.Plays = append(out.Plays, Reconciled{Play: play, Source: in})

		case latest.IsDiscarded:
			// every play of this number was discarded; start a fresh one after the last
			play := nextPlay(latest)
			applySource(play, in)
			state.AddMatch(play)
			out.Created++
			out.Plays = append(out.Plays, Reconciled{Play: play, Source: in})

		case r.IsReplay(latest, in):
			latest.IsDiscarded = true
			state.MarkMatchChanged(latest)
			play := nextPlay(latest)
			applySource(play, in)
			state.AddMatch(play)
			out.Replays = append(out.Replays, play)
			out.Plays = append(out.Plays, Reconciled{Play: play, Source: in})

		default:
			if applySource(latest, in) {
				state.MarkMatchChanged(latest)
				out.Updated++
			} else {
				out.Unmoved++
			}
			out.Plays = append(out.Plays, Reconciled{Play: latest, Source: in})
		}
	}
	return out
}

// nextPlay carries team lists and alliance ids forward; result fields start unset
func nextPlay(prev *model.Match) *model.Match {
	return &model.Match{
		Level:              prev.Level,
		MatchNumber:        prev.MatchNumber,
		PlayNumber:         prev.PlayNumber + 1,
		Name:               prev.Name,
		RedTeams:           slices.Clone(prev.RedTeams),
		BlueTeams:          slices.Clone(prev.BlueTeams),
		RedAllianceID:      prev.RedAllianceID,
		BlueAllianceID:     prev.BlueAllianceID,
		ScheduledStartTime: prev.ScheduledStartTime,
	}
}

// applySource copies the non-empty incoming fields; reports whether anything changed
func applySource(play *model.Match, in *model.SourceMatch) bool {
	changed := false
	if in.Name != "" && play.Name != in.Name {
		play.Name = in.Name
		changed = true
	}
	if len(in.RedTeams) > 0 && !slices.Equal([]int(play.RedTeams), in.RedTeams) {
		play.RedTeams = slices.Clone(in.RedTeams)
		changed = true
	}
	if len(in.BlueTeams) > 0 && !slices.Equal([]int(play.BlueTeams), in.BlueTeams) {
		play.BlueTeams = slices.Clone(in.BlueTeams)
		changed = true
	}
	changed = setTime(&play.ScheduledStartTime, in.ScheduledStartTime) || changed
	changed = setTime(&play.ActualStartTime, in.ActualStartTime) || changed
	changed = setTime(&play.PostResultTime, in.PostResultTime) || changed
	changed = setInt(&play.RedScore, in.RedScore) || changed
	changed = setInt(&play.BlueScore, in.BlueScore) || changed
	return changed
}

func setTime(dst **time.Time, src *time.Time) bool {
	if src == nil {
		return false
	}
	if *dst != nil && (*dst).Equal(*src) {
		return false
	}
	v := src.UTC()
	*dst = &v
	return true
}

func setInt(dst **int, src *int) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}
