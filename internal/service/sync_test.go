package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"EventSync/internal/model"
	"EventSync/internal/reconcile"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEventLoadsScheduleFromNotStarted(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.teams = sourceTeams(1, 2, 3, 4, 5, 6)
	client.qualSchedule = qualSchedule(10)
	id := seed(store, "MIDET", model.EventStatusNotStarted)

	require.NoError(t, newTestService(store, client).SyncEvent(context.Background(), id))

	got := store.stored(t, id)
	assert.Equal(t, model.EventStatusQualsInProgress, got.Event.Status)
	assert.Len(t, got.Teams, 6)
	require.Len(t, got.Matches, 10)
	for _, m := range got.Matches {
		assert.Equal(t, 1, m.PlayNumber)
		assert.False(t, m.IsDiscarded)
		assert.Equal(t, model.LevelQualification, m.Level)
	}
	assert.Equal(t, 1, store.commitCount(), "one pass commits once")
	assert.Equal(t, 1, client.callCount("GetTeamsForEvent"))
	assert.Equal(t, 1, client.callCount("GetQualScheduleForEvent"))
	assert.Equal(t, 1, client.callCount("GetQualResultsForEvent"))
	assert.Zero(t, client.callCount("GetAlliancesForEvent"))
}

func TestSyncEventTwiceWithSameDataCommitsOnce(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.teams = sourceTeams(1, 2, 3, 4, 5, 6)
	client.qualSchedule = qualSchedule(10)
	client.qualResults = qualResults(4)
	client.rankings = []*model.SourceRanking{
		{TeamNumber: 1, Rank: 1, Wins: 4, SortOrders: []float64{2.1, 44}, QualAverage: 44.1234, MatchesPlayed: 4},
		{TeamNumber: 4, Rank: 2, Losses: 4, SortOrders: []float64{0, 30}, QualAverage: 30, MatchesPlayed: 4},
	}
	id := seed(store, "MIDET", model.EventStatusNotStarted)
	svc := newTestService(store, client)

	require.NoError(t, svc.SyncEvent(context.Background(), id))
	first := store.stored(t, id)
	require.Equal(t, 1, store.commitCount())

	require.NoError(t, svc.SyncEvent(context.Background(), id))
	assert.Equal(t, 1, store.commitCount(), "unchanged source data must not commit")
	assert.Equal(t, first, store.stored(t, id))
}

func TestSyncEventWalksTheLifecycle(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	notifier := &recordingNotifier{}
	client.teams = sourceTeams(1, 2, 3, 4, 5, 6)
	client.qualSchedule = qualSchedule(10)
	id := seed(store, "MIDET", model.EventStatusNotStarted)
	svc := newTestService(store, client, WithNotifier(notifier))
	ctx := context.Background()

	require.NoError(t, svc.SyncEvent(ctx, id))
	require.Equal(t, model.EventStatusQualsInProgress, store.stored(t, id).Event.Status)

	client.qualResults = qualResults(10)
	require.NoError(t, svc.SyncEvent(ctx, id))
	got := store.stored(t, id)
	require.Equal(t, model.EventStatusAwaitingAlliances, got.Event.Status)
	for _, m := range got.Matches {
		require.NotNil(t, m.Winner)
		assert.Equal(t, model.WinnerRed, *m.Winner)
	}

	client.alliances = twoAlliances()
	require.NoError(t, svc.SyncEvent(ctx, id))
	got = store.stored(t, id)
	require.Equal(t, model.EventStatusAwaitingPlayoffs, got.Event.Status)
	require.Len(t, got.Alliances, 2)

	client.playoffResults = []*model.SourceMatch{
		finalsPlay(14, "Final 1", model.WinnerRed),
		finalsPlay(15, "Final 2", model.WinnerRed),
	}
	require.NoError(t, svc.SyncEvent(ctx, id))
	got = store.stored(t, id)
	require.Equal(t, model.EventStatusWinnerDetermined, got.Event.Status)
	var alliance1, alliance2 uuid.UUID
	for _, a := range got.Alliances {
		switch a.Name {
		case "Alliance 1":
			alliance1 = a.ID
		case "Alliance 2":
			alliance2 = a.ID
		}
	}
	require.NotNil(t, got.Event.WinningAllianceID)
	assert.Equal(t, alliance1, *got.Event.WinningAllianceID)
	for _, m := range got.Matches {
		if m.Level != model.LevelPlayoff {
			continue
		}
		require.NotNil(t, m.RedAllianceID)
		require.NotNil(t, m.BlueAllianceID)
		assert.Equal(t, alliance1, *m.RedAllianceID)
		assert.Equal(t, alliance2, *m.BlueAllianceID)
	}

	client.awards = []*model.SourceAward{{Name: "District Event Winner", TeamNumber: 1}}
	require.NoError(t, svc.SyncEvent(ctx, id))
	got = store.stored(t, id)
	assert.Equal(t, model.EventStatusCompleted, got.Event.Status)
	require.NotNil(t, got.Event.CompletedAt)
	assert.True(t, got.Event.CompletedAt.Equal(testNow))

	commits := store.commitCount()
	require.NoError(t, svc.SyncEvent(ctx, id))
	assert.Equal(t, commits, store.commitCount(), "completed events run no steps")

	assert.Contains(t, notifier.kinds(), model.NoticeEventWinner)
	for _, n := range notifier.notices {
		if n.Kind == model.NoticeEventWinner {
			assert.Contains(t, n.Message, "Alliance 1")
		}
	}
}

func TestSyncEventNeverMovesStatusBackward(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.qualSchedule = qualSchedule(3)
	id := seed(store, "MIDET", model.EventStatusAwaitingPlayoffs)
	svc := newTestService(store, client)

	require.NoError(t, svc.RunStep(context.Background(), id, StepInitialSync))
	require.NoError(t, svc.RunStep(context.Background(), id, StepLoadQualSchedule))

	got := store.stored(t, id)
	assert.Equal(t, model.EventStatusAwaitingPlayoffs, got.Event.Status)
	assert.Len(t, got.Matches, 3, "forced schedule load still reconciles")
}

func TestRunStepIgnoresStatusGate(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.teams = sourceTeams(10, 20)
	id := seed(store, "MIDET", model.EventStatusPlayoffsInProgress)
	svc := newTestService(store, client)

	require.NoError(t, svc.RunStep(context.Background(), id, StepPopulateEventTeams))

	got := store.stored(t, id)
	assert.Len(t, got.Teams, 2)
	assert.Equal(t, model.EventStatusPlayoffsInProgress, got.Event.Status)
	assert.Equal(t, 1, store.commitCount())
	assert.Zero(t, client.callCount("GetPlayoffResultsForEvent"), "only the forced step runs")
}

func TestRunStepUnknownName(t *testing.T) {
	store := newMemStore()
	id := seed(store, "MIDET", model.EventStatusNotStarted)

	err := newTestService(store, newFakeClient()).RunStep(context.Background(), id, "Nope")
	assert.ErrorIs(t, err, ErrUnknownStep)
	assert.Zero(t, store.commitCount())
}

func TestSyncEventNotFound(t *testing.T) {
	err := newTestService(newMemStore(), newFakeClient()).SyncEvent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSyncEventPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *model.Event)
	}{
		{name: "missing season", mutate: func(e *model.Event) { e.Season = nil }},
		{name: "missing sync source", mutate: func(e *model.Event) { e.SyncSource = "" }},
		{name: "unconfigured sync source", mutate: func(e *model.Event) { e.SyncSource = "nowhere" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			client := newFakeClient()
			s := &snapshot{Event: newEvent("MIDET", model.EventStatusNotStarted)}
			tt.mutate(&s.Event)
			store.put(s)

			err := newTestService(store, client).SyncEvent(context.Background(), s.Event.ID)
			assert.ErrorIs(t, err, ErrPrecondition)
			assert.Zero(t, store.commitCount())
			assert.Zero(t, client.callCount("GetTeamsForEvent"))
		})
	}
}

func TestSyncEventStepFailureDiscardsWholePass(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.teams = sourceTeams(1, 2, 3)
	client.qualSchedule = qualSchedule(5)
	client.errs["GetQualResultsForEvent"] = errBoom
	id := seed(store, "MIDET", model.EventStatusNotStarted)

	err := newTestService(store, client).SyncEvent(context.Background(), id)
	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepUpdateQualResults, stepErr.Step)
	assert.Equal(t, id, stepErr.EventID)
	assert.ErrorIs(t, err, errBoom)

	got := store.stored(t, id)
	assert.Equal(t, model.EventStatusNotStarted, got.Event.Status)
	assert.Empty(t, got.Teams)
	assert.Empty(t, got.Matches)
	assert.Zero(t, store.commitCount())
}

func TestSyncEventCommitFailure(t *testing.T) {
	store := newMemStore()
	store.commitErr = errBoom
	client := newFakeClient()
	client.teams = sourceTeams(1)
	id := seed(store, "MIDET", model.EventStatusNotStarted)

	err := newTestService(store, client).SyncEvent(context.Background(), id)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, model.EventStatusNotStarted, store.stored(t, id).Event.Status)
}

func TestSyncEventAmbiguousFinalsAbortsPass(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.playoffResults = []*model.SourceMatch{
		finalsPlay(14, "Final 1", model.WinnerRed),
		finalsPlay(15, "Final 2", model.WinnerBlue),
		finalsPlay(16, "Final 3", model.WinnerRed),
		finalsPlay(17, "Overtime 1", model.WinnerBlue),
	}
	s := &snapshot{Event: newEvent("MIDET", model.EventStatusAwaitingPlayoffs), Alliances: storedAlliances()}
	store.put(s)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	err := newTestService(store, client, WithMetrics(metrics)).SyncEvent(context.Background(), s.Event.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrAmbiguousFinalsWinner)
	var ambiguous *reconcile.AmbiguousFinalsError
	require.ErrorAs(t, err, &ambiguous)
	assert.Contains(t, err.Error(), "Alliance 1=2")
	assert.Contains(t, err.Error(), "Alliance 2=2")

	got := store.stored(t, s.Event.ID)
	assert.Equal(t, model.EventStatusAwaitingPlayoffs, got.Event.Status)
	assert.Empty(t, got.Matches)
	assert.Nil(t, got.Event.WinningAllianceID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.passes.WithLabelValues(passFailed)))
}

func TestSyncEventTiebreakFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	tied := finalsPlay(1, "Match 1", model.WinnerRed)
	tied.RedScore, tied.BlueScore, tied.Winner = intPtr(45), intPtr(45), nil
	client.playoffResults = []*model.SourceMatch{tied}
	tiebreak := &stubTiebreak{err: errBoom}
	client.tiebreak = tiebreak
	s := &snapshot{Event: newEvent("MIDET", model.EventStatusAwaitingPlayoffs), Alliances: storedAlliances()}
	store.put(s)
	metrics := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, newTestService(store, client, WithMetrics(metrics)).SyncEvent(context.Background(), s.Event.ID))

	got := store.stored(t, s.Event.ID)
	assert.Equal(t, model.EventStatusPlayoffsInProgress, got.Event.Status)
	require.Len(t, got.Matches, 1)
	assert.Nil(t, got.Matches[0].Winner)
	assert.Equal(t, 1, tiebreak.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.tiebreakFailures))
}

func TestSyncEventTiebreakDecidesTiedPlayoff(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	tied := finalsPlay(1, "Match 1", model.WinnerRed)
	tied.RedScore, tied.BlueScore, tied.Winner = intPtr(45), intPtr(45), nil
	client.playoffResults = []*model.SourceMatch{tied}
	client.tiebreak = &stubTiebreak{winner: model.WinnerBlue}
	s := &snapshot{Event: newEvent("MIDET", model.EventStatusAwaitingPlayoffs), Alliances: storedAlliances()}
	store.put(s)

	require.NoError(t, newTestService(store, client).SyncEvent(context.Background(), s.Event.ID))

	got := store.stored(t, s.Event.ID)
	require.Len(t, got.Matches, 1)
	require.NotNil(t, got.Matches[0].Winner)
	assert.Equal(t, model.WinnerBlue, *got.Matches[0].Winner)
	assert.Equal(t, 1, client.callCount("GetPlayoffTiebreak"), "one resolver per pass")
}

func TestSyncEventReplayCreatesNextPlay(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	notifier := &recordingNotifier{}
	s := &snapshot{
		Event: newEvent("MIDET", model.EventStatusQualsInProgress),
		Matches: []*model.Match{{
			ID:              uuid.New(),
			Level:           model.LevelQualification,
			MatchNumber:     1,
			PlayNumber:      1,
			Name:            "Qualification 1",
			RedTeams:        []int{1, 2, 3},
			BlueTeams:       []int{4, 5, 6},
			ActualStartTime: at(0),
			PostResultTime:  at(0),
			RedScore:        intPtr(10),
			BlueScore:       intPtr(20),
			Winner:          model.WinnerBlue.Ptr(),
		}},
	}
	store.put(s)
	replay := qualResults(1)[0]
	replay.ActualStartTime = at(20 * time.Minute)
	replay.PostResultTime = at(23 * time.Minute)
	client.qualResults = []*model.SourceMatch{replay}
	metrics := NewMetrics(prometheus.NewRegistry())

	svc := newTestService(store, client, WithNotifier(notifier), WithMetrics(metrics))
	require.NoError(t, svc.SyncEvent(context.Background(), s.Event.ID))

	got := store.stored(t, s.Event.ID)
	require.Len(t, got.Matches, 2)
	byPlay := map[int]*model.Match{}
	for _, m := range got.Matches {
		byPlay[m.PlayNumber] = m
	}
	assert.True(t, byPlay[1].IsDiscarded)
	require.NotNil(t, byPlay[2])
	assert.False(t, byPlay[2].IsDiscarded)
	require.NotNil(t, byPlay[2].Winner)
	assert.Equal(t, model.WinnerRed, *byPlay[2].Winner)
	assert.Equal(t, model.EventStatusAwaitingAlliances, got.Event.Status)

	assert.Contains(t, notifier.kinds(), model.NoticeMatchReplayed)
	assert.Contains(t, notifier.kinds(), model.NoticeStatusChanged)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.replays))

	// same data again: the replay is the latest play now, nothing moves
	require.NoError(t, svc.SyncEvent(context.Background(), s.Event.ID))
	assert.Len(t, store.stored(t, s.Event.ID).Matches, 2)
}

func TestSyncEventNotifierFailureKeepsCommit(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	id := seed(store, "MIDET", model.EventStatusNotStarted)
	notifier := &recordingNotifier{err: errors.New("webhook down")}

	require.NoError(t, newTestService(store, client, WithNotifier(notifier)).SyncEvent(context.Background(), id))
	assert.Equal(t, 1, store.commitCount())
	assert.Equal(t, model.EventStatusAwaitingQuals, store.stored(t, id).Event.Status)
	assert.Equal(t, []model.NoticeKind{model.NoticeStatusChanged}, notifier.kinds())
}

func TestRunSyncReportsResult(t *testing.T) {
	store := newMemStore()
	id := seed(store, "MIDET", model.EventStatusNotStarted)
	svc := newTestService(store, newFakeClient())

	assert.Equal(t, SyncResult{Success: true}, svc.RunSync(context.Background(), id))

	res := svc.RunSync(context.Background(), uuid.New())
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, ErrEventNotFound.Error())
}
