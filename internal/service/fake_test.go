package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const fakeSource = "fake_events"

var testNow = time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func intPtr(v int) *int { return &v }

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

// ---------- store ----------

// snapshot durable rows of one event
type snapshot struct {
	Event     model.Event
	Teams     []*model.EventTeam
	Matches   []*model.Match
	Alliances []*model.Alliance
	Rankings  []*model.EventRanking
}

func (s *snapshot) clone() *snapshot {
	raw, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	var out snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

// memStore EventStore that keeps deep copies, so only Commit makes a pass durable
type memStore struct {
	mu          sync.Mutex
	events      map[uuid.UUID]*snapshot
	commits     int
	lastChanges model.ChangeSet
	commitErr   error
}

func newMemStore() *memStore {
	return &memStore{events: make(map[uuid.UUID]*snapshot)}
}

func (m *memStore) put(s *snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range s.Alliances {
		a.EventID = s.Event.ID
	}
	for _, p := range s.Matches {
		p.EventID = s.Event.ID
	}
	m.events[s.Event.ID] = s.clone()
}

func (m *memStore) stored(t *testing.T, id uuid.UUID) *snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.events[id]
	require.True(t, ok, "event %s not stored", id)
	return s.clone()
}

func (m *memStore) commitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

func (m *memStore) LoadEventState(_ context.Context, id uuid.UUID) (*model.EventState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	c := s.clone()
	event := c.Event
	state := model.NewEventState(&event)
	state.Teams = c.Teams
	state.Matches = c.Matches
	state.Alliances = c.Alliances
	state.Rankings = c.Rankings
	return state, nil
}

func (m *memStore) Commit(_ context.Context, state *model.EventState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	s := &snapshot{
		Event:     *state.Event,
		Teams:     state.Teams,
		Matches:   state.Matches,
		Alliances: state.Alliances,
		Rankings:  state.Rankings,
	}
	m.events[state.Event.ID] = s.clone()
	m.commits++
	m.lastChanges = state.Changes()
	state.ResetChanges()
	return nil
}

func (m *memStore) ListActiveEventIDs(_ context.Context, now time.Time, lead, lag time.Duration) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, s := range m.events {
		e := s.Event
		if e.Status == model.EventStatusCompleted {
			continue
		}
		if e.StartTime.After(now.Add(lead)) || e.EndTime.Before(now.Add(-lag)) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// ---------- data client ----------

type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	event           *model.SourceEvent
	districtEvents  []*model.SourceEvent
	teams           []*model.SourceTeam
	qualSchedule    []*model.SourceMatch
	qualResults     []*model.SourceMatch
	rankings        []*model.SourceRanking
	alliances       []*model.SourceAlliance
	playoffSchedule []*model.SourceMatch
	playoffResults  []*model.SourceMatch
	awards          []*model.SourceAward
	tiebreak        interfaces.TiebreakResolver
	healthErr       error

	errs      map[string]error // by method name
	failCodes map[string]error // by event code, for every event-scoped call
	hook      func(name string, event *model.Event)
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:     make(map[string]int),
		errs:      make(map[string]error),
		failCodes: make(map[string]error),
	}
}

func (f *fakeClient) call(name string, event *model.Event) error {
	f.mu.Lock()
	f.calls[name]++
	err := f.errs[name]
	if event != nil && f.failCodes[event.Code] != nil {
		err = f.failCodes[event.Code]
	}
	hook := f.hook
	f.mu.Unlock()

	// runs unlocked so concurrent passes can overlap inside it
	if hook != nil {
		hook(name, event)
	}
	return err
}

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) Source() string { return fakeSource }

func (f *fakeClient) GetEvent(_ context.Context, season int, code string) (*model.SourceEvent, error) {
	if err := f.call("GetEvent", nil); err != nil {
		return nil, err
	}
	if f.event == nil || f.event.Code != code {
		return nil, &model.SourceDataError{Source: fakeSource, Field: "events", Detail: code}
	}
	return f.event, nil
}

func (f *fakeClient) GetDistrictEvents(_ context.Context, _ int, _ string) ([]*model.SourceEvent, error) {
	if err := f.call("GetDistrictEvents", nil); err != nil {
		return nil, err
	}
	return f.districtEvents, nil
}

func (f *fakeClient) GetTeamsForEvent(_ context.Context, e *model.Event) ([]*model.SourceTeam, error) {
	if err := f.call("GetTeamsForEvent", e); err != nil {
		return nil, err
	}
	return f.teams, nil
}

func (f *fakeClient) GetQualScheduleForEvent(_ context.Context, e *model.Event) ([]*model.SourceMatch, error) {
	if err := f.call("GetQualScheduleForEvent", e); err != nil {
		return nil, err
	}
	return f.qualSchedule, nil
}

func (f *fakeClient) GetQualResultsForEvent(_ context.Context, e *model.Event) ([]*model.SourceMatch, error) {
	if err := f.call("GetQualResultsForEvent", e); err != nil {
		return nil, err
	}
	return f.qualResults, nil
}

func (f *fakeClient) GetQualRankingsForEvent(_ context.Context, e *model.Event) ([]*model.SourceRanking, error) {
	if err := f.call("GetQualRankingsForEvent", e); err != nil {
		return nil, err
	}
	return f.rankings, nil
}

func (f *fakeClient) GetAlliancesForEvent(_ context.Context, e *model.Event) ([]*model.SourceAlliance, error) {
	if err := f.call("GetAlliancesForEvent", e); err != nil {
		return nil, err
	}
	return f.alliances, nil
}

func (f *fakeClient) GetPlayoffScheduleForEvent(_ context.Context, e *model.Event) ([]*model.SourceMatch, error) {
	if err := f.call("GetPlayoffScheduleForEvent", e); err != nil {
		return nil, err
	}
	return f.playoffSchedule, nil
}

func (f *fakeClient) GetPlayoffResultsForEvent(_ context.Context, e *model.Event) ([]*model.SourceMatch, error) {
	if err := f.call("GetPlayoffResultsForEvent", e); err != nil {
		return nil, err
	}
	return f.playoffResults, nil
}

func (f *fakeClient) GetPlayoffTiebreak(e *model.Event) interfaces.TiebreakResolver {
	_ = f.call("GetPlayoffTiebreak", nil)
	return f.tiebreak
}

func (f *fakeClient) GetAwardsForEvent(_ context.Context, e *model.Event) ([]*model.SourceAward, error) {
	if err := f.call("GetAwardsForEvent", e); err != nil {
		return nil, err
	}
	return f.awards, nil
}

func (f *fakeClient) CheckHealth(_ context.Context) error {
	_ = f.call("CheckHealth", nil)
	return f.healthErr
}

type fakeProvider map[string]interfaces.DataClient

func (p fakeProvider) Get(source string) (interfaces.DataClient, error) {
	c, ok := p[source]
	if !ok {
		return nil, fmt.Errorf("sync source %q is not configured", source)
	}
	return c, nil
}

func (p fakeProvider) Sources() []string {
	out := make([]string, 0, len(p))
	for name := range p {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ---------- tiebreak / notifier ----------

type stubTiebreak struct {
	winner model.MatchWinner
	err    error
	calls  int
}

func (s *stubTiebreak) Resolve(_ context.Context, _ *model.Match) (model.MatchWinner, error) {
	s.calls++
	return s.winner, s.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []model.SyncNotice
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, notice model.SyncNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) kinds() []model.NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.NoticeKind, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.Kind)
	}
	return out
}

// ---------- builders ----------

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Concurrency:        2,
		ActiveWindowLead:   24 * time.Hour,
		ActiveWindowLag:    48 * time.Hour,
		FinalsRequiredWins: 2,
		ReplayTolerance:    time.Minute,
	}
}

func newTestService(store *memStore, client *fakeClient, opts ...Option) *SyncService {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewSyncService(store, fakeProvider{fakeSource: client}, testSyncConfig(), discardLogger(), opts...)
}

func newEvent(code string, status model.EventStatus) model.Event {
	return model.Event{
		ID:         uuid.New(),
		SeasonID:   uuid.New(),
		Season:     &model.Season{Source: fakeSource, Year: 2024, Name: "2024"},
		Code:       code,
		Name:       code + " District Event",
		TimeZone:   "America/Detroit",
		StartTime:  testNow.Add(-6 * time.Hour),
		EndTime:    testNow.Add(30 * time.Hour),
		SyncSource: fakeSource,
		Status:     status,
	}
}

func seed(store *memStore, code string, status model.EventStatus) uuid.UUID {
	s := &snapshot{Event: newEvent(code, status)}
	store.put(s)
	return s.Event.ID
}

func sourceTeams(numbers ...int) []*model.SourceTeam {
	out := make([]*model.SourceTeam, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, &model.SourceTeam{TeamNumber: n, Name: fmt.Sprintf("Team %d", n), Country: "USA"})
	}
	return out
}

func qualSchedule(n int) []*model.SourceMatch {
	out := make([]*model.SourceMatch, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &model.SourceMatch{
			Level:              model.LevelQualification,
			MatchNumber:        i,
			Name:               fmt.Sprintf("Qualification %d", i),
			RedTeams:           []int{1, 2, 3},
			BlueTeams:          []int{4, 5, 6},
			ScheduledStartTime: at(time.Duration(i) * 7 * time.Minute),
		})
	}
	return out
}

func qualResults(n int) []*model.SourceMatch {
	out := qualSchedule(n)
	for _, m := range out {
		m.ActualStartTime = m.ScheduledStartTime
		m.PostResultTime = at(time.Duration(m.MatchNumber)*7*time.Minute + 3*time.Minute)
		m.RedScore = intPtr(40 + m.MatchNumber)
		m.BlueScore = intPtr(30)
		m.Winner = model.WinnerRed.Ptr()
	}
	return out
}

// finalsPlay a decided playoff play between the red {1,2,3} and blue {4,5,6} rosters
func finalsPlay(number int, name string, winner model.MatchWinner) *model.SourceMatch {
	red, blue := 50, 40
	if winner == model.WinnerBlue {
		red, blue = 40, 50
	}
	start := at(time.Duration(number) * 15 * time.Minute)
	return &model.SourceMatch{
		Level:           model.LevelPlayoff,
		MatchNumber:     number,
		Name:            name,
		RedTeams:        []int{1, 2, 3},
		BlueTeams:       []int{4, 5, 6},
		ActualStartTime: start,
		PostResultTime:  at(time.Duration(number)*15*time.Minute + 3*time.Minute),
		RedScore:        intPtr(red),
		BlueScore:       intPtr(blue),
		Winner:          winner.Ptr(),
	}
}

func twoAlliances() []*model.SourceAlliance {
	return []*model.SourceAlliance{
		{Number: 1, Name: "Alliance 1", Teams: []int{1, 2, 3}},
		{Number: 2, Name: "Alliance 2", Teams: []int{4, 5, 6}},
	}
}

// storedAlliances alliance rows matching twoAlliances
func storedAlliances() []*model.Alliance {
	return []*model.Alliance{
		{ID: uuid.New(), Number: 1, Name: "Alliance 1", Teams: []int{1, 2, 3}},
		{ID: uuid.New(), Number: 2, Name: "Alliance 2", Teams: []int{4, 5, 6}},
	}
}

var errBoom = errors.New("boom")
