package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/reconcile"

	"github.com/sirupsen/logrus"
)

// step names
const (
	StepPopulateEventTeams   = "PopulateEventTeams"
	StepInitialSync          = "InitialSync"
	StepLoadQualSchedule     = "LoadQualSchedule"
	StepUpdateQualResults    = "UpdateQualResults"
	StepUpdateQualRankings   = "UpdateQualRankings"
	StepLoadAlliances        = "LoadAlliances"
	StepUpdatePlayoffResults = "UpdatePlayoffResults"
	StepDetectEventOver      = "DetectEventOver"
)

// StepFunc one idempotent unit of lifecycle progression
type StepFunc func(ctx context.Context, sc *StepContext) error

// Step descriptor: the statuses it applies to and what it does
type Step struct {
	Name     string
	Statuses []model.EventStatus
	Run      StepFunc
}

func (s Step) AppliesTo(status model.EventStatus) bool {
	return slices.Contains(s.Statuses, status)
}

// StepRegistry steps in fixed registration order
type StepRegistry struct {
	steps  []Step
	byName map[string]int
}

func NewStepRegistry(steps ...Step) (*StepRegistry, error) {
	r := &StepRegistry{byName: make(map[string]int, len(steps))}
	for _, s := range steps {
		if s.Name == "" || s.Run == nil {
			return nil, fmt.Errorf("step %q: name and run function are required", s.Name)
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("step %q registered twice", s.Name)
		}
		r.byName[s.Name] = len(r.steps)
		r.steps = append(r.steps, s)
	}
	return r, nil
}

// DefaultStepRegistry the event lifecycle steps
func DefaultStepRegistry() *StepRegistry {
	r, err := NewStepRegistry(DefaultSteps()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Steps registered steps in order
func (r *StepRegistry) Steps() []Step {
	return slices.Clone(r.steps)
}

func (r *StepRegistry) Lookup(name string) (Step, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Step{}, false
	}
	return r.steps[i], true
}

// DefaultSteps lifecycle steps in registration order.
// PopulateEventTeams precedes InitialSync so the roster is loaded while the event is still NotStarted.
func DefaultSteps() []Step {
	return []Step{
		{
			Name:     StepPopulateEventTeams,
			Statuses: []model.EventStatus{model.EventStatusNotStarted},
			Run:      populateEventTeams,
		},
		{
			Name:     StepInitialSync,
			Statuses: []model.EventStatus{model.EventStatusNotStarted},
			Run:      initialSync,
		},
		{
			Name:     StepLoadQualSchedule,
			Statuses: []model.EventStatus{model.EventStatusAwaitingQuals},
			Run:      loadQualSchedule,
		},
		{
			Name:     StepUpdateQualResults,
			Statuses: []model.EventStatus{model.EventStatusQualsInProgress, model.EventStatusAwaitingAlliances},
			Run:      updateQualResults,
		},
		{
			Name:     StepUpdateQualRankings,
			Statuses: []model.EventStatus{model.EventStatusQualsInProgress, model.EventStatusAwaitingAlliances},
			Run:      updateQualRankings,
		},
		{
			Name:     StepLoadAlliances,
			Statuses: []model.EventStatus{model.EventStatusAwaitingAlliances},
			Run:      loadAlliances,
		},
		{
			Name:     StepUpdatePlayoffResults,
			Statuses: []model.EventStatus{model.EventStatusAwaitingPlayoffs, model.EventStatusPlayoffsInProgress},
			Run:      updatePlayoffResults,
		},
		{
			Name:     StepDetectEventOver,
			Statuses: []model.EventStatus{model.EventStatusPlayoffsInProgress, model.EventStatusWinnerDetermined},
			Run:      detectEventOver,
		},
	}
}

// StepContext everything a step may touch during one pass. Owned by a single goroutine.
type StepContext struct {
	State              *model.EventState
	Client             interfaces.DataClient
	Reconciler         *reconcile.MatchReconciler
	FinalsRequiredWins int
	Logger             *logrus.Entry
	Metrics            *Metrics
	Now                func() time.Time

	tiebreakOnce sync.Once
	tiebreak     interfaces.TiebreakResolver
	replays      []*model.Match
}

// Tiebreak resolver for this event, created at most once per pass
func (sc *StepContext) Tiebreak() interfaces.TiebreakResolver {
	sc.tiebreakOnce.Do(func() {
		sc.tiebreak = sc.Client.GetPlayoffTiebreak(sc.State.Event)
	})
	return sc.tiebreak
}

func (sc *StepContext) recordReplays(plays []*model.Match) {
	for _, p := range plays {
		sc.Logger.WithFields(logrus.Fields{
			"level":        p.Level,
			"match_number": p.MatchNumber,
			"play_number":  p.PlayNumber,
		}).Info("match replay detected")
	}
	sc.replays = append(sc.replays, plays...)
}

// Replays plays created by replay detection during this pass
func (sc *StepContext) Replays() []*model.Match {
	return sc.replays
}
