package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"EventSync/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEventsIsolatesFailures(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.teams = sourceTeams(1, 2, 3, 4, 5, 6)
	client.qualSchedule = qualSchedule(6)
	client.failCodes["MIBAD"] = errBoom
	good1 := seed(store, "MIAAA", model.EventStatusNotStarted)
	bad := seed(store, "MIBAD", model.EventStatusNotStarted)
	good2 := seed(store, "MICCC", model.EventStatusNotStarted)

	res := newTestService(store, client).SyncEvents(context.Background(), []uuid.UUID{good1, bad, good2})

	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Synced)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[bad], "boom")
	assert.Equal(t, fmt.Sprintf("%s - %s", bad, res.Failures[bad]), res.Message)

	for _, id := range []uuid.UUID{good1, good2} {
		got := store.stored(t, id)
		assert.Equal(t, model.EventStatusQualsInProgress, got.Event.Status)
		assert.Len(t, got.Matches, 6)
	}
	assert.Equal(t, model.EventStatusNotStarted, store.stored(t, bad).Event.Status)
}

func TestSyncEventsAllSucceed(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	var ids []uuid.UUID
	for i := 0; i < 7; i++ {
		ids = append(ids, seed(store, fmt.Sprintf("EV%02d", i), model.EventStatusNotStarted))
	}

	res := newTestService(store, client).SyncEvents(context.Background(), ids)

	assert.True(t, res.Success)
	assert.Empty(t, res.Message)
	assert.Equal(t, 7, res.Synced)
	assert.Equal(t, 7, store.commitCount())
}

// inFlight tracks how many team fetches overlap
type inFlight struct {
	mu        sync.Mutex
	cur, peak int
}

func (f *inFlight) hook(hold time.Duration) func(string, *model.Event) {
	return func(name string, _ *model.Event) {
		if name != "GetTeamsForEvent" {
			return
		}
		f.mu.Lock()
		f.cur++
		if f.cur > f.peak {
			f.peak = f.cur
		}
		f.mu.Unlock()

		time.Sleep(hold)

		f.mu.Lock()
		f.cur--
		f.mu.Unlock()
	}
}

func TestSyncEventsRespectsConcurrency(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	tracker := &inFlight{}
	client.hook = tracker.hook(10 * time.Millisecond)
	var ids []uuid.UUID
	for i := 0; i < 12; i++ {
		ids = append(ids, seed(store, fmt.Sprintf("EV%02d", i), model.EventStatusNotStarted))
	}
	svc := newTestService(store, client)

	res := svc.SyncEvents(context.Background(), ids)

	assert.True(t, res.Success)
	assert.Equal(t, 12, res.Synced)
	assert.Equal(t, 12, client.callCount("GetTeamsForEvent"))
	assert.Positive(t, tracker.peak)
	assert.LessOrEqual(t, tracker.peak, testSyncConfig().Concurrency)
}

func TestSyncEventsSerializesPassesForOneEvent(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	tracker := &inFlight{}
	client.hook = tracker.hook(20 * time.Millisecond)
	id := seed(store, "MIDET", model.EventStatusNotStarted)

	res := newTestService(store, client).SyncEvents(context.Background(), []uuid.UUID{id, id})

	assert.True(t, res.Success)
	assert.Equal(t, 1, tracker.peak)
	// the second pass loads what the first committed, so teams are fetched once
	assert.Equal(t, 1, client.callCount("GetTeamsForEvent"))
	assert.Equal(t, model.EventStatusAwaitingQuals, store.stored(t, id).Event.Status)
}

func TestSyncEventsRecoversPanickingPass(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	client.hook = func(name string, e *model.Event) {
		if name == "GetTeamsForEvent" && e.Code == "MIPNC" {
			panic("nil breakdown")
		}
	}
	good := seed(store, "MIAAA", model.EventStatusNotStarted)
	bad := seed(store, "MIPNC", model.EventStatusNotStarted)
	svc := newTestService(store, client)

	res := svc.SyncEvents(context.Background(), []uuid.UUID{good, bad})

	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Synced)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[bad], "nil breakdown")
	assert.Equal(t, model.EventStatusAwaitingQuals, store.stored(t, good).Event.Status)
	assert.Equal(t, model.EventStatusNotStarted, store.stored(t, bad).Event.Status)

	// the event is not left locked
	client.hook = nil
	require.NoError(t, svc.SyncEvent(context.Background(), bad))
	assert.Equal(t, model.EventStatusAwaitingQuals, store.stored(t, bad).Event.Status)
}

func TestSyncAllUsesActiveWindow(t *testing.T) {
	store := newMemStore()
	client := newFakeClient()
	active := seed(store, "ACTIVE", model.EventStatusNotStarted)

	future := &snapshot{Event: newEvent("FUTURE", model.EventStatusNotStarted)}
	future.Event.StartTime = testNow.Add(10 * 24 * time.Hour)
	future.Event.EndTime = future.Event.StartTime.Add(48 * time.Hour)
	store.put(future)

	past := &snapshot{Event: newEvent("PAST", model.EventStatusPlayoffsInProgress)}
	past.Event.StartTime = testNow.Add(-10 * 24 * time.Hour)
	past.Event.EndTime = past.Event.StartTime.Add(48 * time.Hour)
	store.put(past)

	done := &snapshot{Event: newEvent("DONE", model.EventStatusCompleted)}
	store.put(done)

	res, err := newTestService(store, client).SyncAll(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, model.EventStatusAwaitingQuals, store.stored(t, active).Event.Status)
	assert.Equal(t, model.EventStatusNotStarted, store.stored(t, future.Event.ID).Event.Status)
}

func TestSyncAllWithNothingActive(t *testing.T) {
	res, err := newTestService(newMemStore(), newFakeClient()).SyncAll(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.Synced)
}

func TestJoinFailuresOrdersByEventID(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	msg := joinFailures(map[uuid.UUID]string{b: "second", a: "first"})

	assert.Equal(t, a.String()+" - first; "+b.String()+" - second", msg)
}
