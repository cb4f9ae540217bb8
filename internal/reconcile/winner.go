package reconcile

import (
	"context"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

// WinnerStats counts from one ResolveWinners call
type WinnerStats struct {
	Reported         int
	TiebreakResolved int
	TiebreakFailed   int
}

// ResolveWinners sets the winner of every reconciled active play that has a posted result and no winner yet.
// A winner reported by the source wins; otherwise playoff plays go to the tiebreak resolver.
// Resolver failures are logged and leave the winner unset.
func ResolveWinners(ctx context.Context, state *model.EventState, plays []Reconciled, tiebreak interfaces.TiebreakResolver, logger logrus.FieldLogger) WinnerStats {
	var stats WinnerStats
	for _, p := range plays {
		play := p.Play
		if play.IsDiscarded || play.Winner != nil || !play.HasResult() {
			continue
		}
		if p.Source != nil && p.Source.Winner != nil {
			w := *p.Source.Winner
			play.Winner = &w
			state.MarkMatchChanged(play)
			stats.Reported++
			continue
		}
		if play.Level != model.LevelPlayoff || tiebreak == nil {
			continue
		}
		w, err := tiebreak.Resolve(ctx, play)
		if err != nil {
			stats.TiebreakFailed++
			logger.WithError(err).WithFields(logrus.Fields{
				"match_number": play.MatchNumber,
				"play_number":  play.PlayNumber,
			}).Warn("playoff tiebreak failed, winner left unset")
			continue
		}
		play.Winner = &w
		state.MarkMatchChanged(play)
		stats.TiebreakResolved++
	}
	return stats
}
