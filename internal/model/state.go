package model

import (
	"sort"

	"github.com/google/uuid"
)

// EventState in-memory view of one event and its children for a single sync pass.
// Each concurrent sync owns its own EventState; it is never shared across goroutines.
// Mutations go through the tracking methods so the store can persist them in one commit.
type EventState struct {
	Event     *Event
	Teams     []*EventTeam
	Matches   []*Match
	Alliances []*Alliance
	Rankings  []*EventRanking

	baseStatus       EventStatus
	eventChanged     bool
	newMatches       map[*Match]bool
	changedMatches   map[*Match]bool
	newAlliances     map[*Alliance]bool
	changedAlliances map[*Alliance]bool
	deletedAlliances []uuid.UUID
	newTeams         map[*EventTeam]bool
	changedTeams     map[*EventTeam]bool
	deletedTeams     []uuid.UUID
	rankingsReplaced bool
}

// ChangeSet everything a pass mutated, in deterministic order
type ChangeSet struct {
	EventChanged     bool
	NewMatches       []*Match
	ChangedMatches   []*Match
	NewAlliances     []*Alliance
	ChangedAlliances []*Alliance
	DeletedAlliances []uuid.UUID
	NewTeams         []*EventTeam
	ChangedTeams     []*EventTeam
	DeletedTeams     []uuid.UUID
	RankingsReplaced bool
	Rankings         []*EventRanking
}

// Count number of row-level mutations in the change set
func (c *ChangeSet) Count() int {
	n := len(c.NewMatches) + len(c.ChangedMatches) +
		len(c.NewAlliances) + len(c.ChangedAlliances) + len(c.DeletedAlliances) +
		len(c.NewTeams) + len(c.ChangedTeams) + len(c.DeletedTeams)
	if c.EventChanged {
		n++
	}
	if c.RankingsReplaced {
		n += len(c.Rankings) + 1
	}
	return n
}

func NewEventState(event *Event) *EventState {
	s := &EventState{Event: event}
	s.ResetChanges()
	return s
}

// ResetChanges clears change tracking, called once the changes are durable
func (s *EventState) ResetChanges() {
	s.baseStatus = s.Event.Status
	s.eventChanged = false
	s.newMatches = make(map[*Match]bool)
	s.changedMatches = make(map[*Match]bool)
	s.newAlliances = make(map[*Alliance]bool)
	s.changedAlliances = make(map[*Alliance]bool)
	s.deletedAlliances = nil
	s.newTeams = make(map[*EventTeam]bool)
	s.changedTeams = make(map[*EventTeam]bool)
	s.deletedTeams = nil
	s.rankingsReplaced = false
}

// AdvanceStatus forward-only status move, tracked for commit
func (s *EventState) AdvanceStatus(next EventStatus) bool {
	if s.Event.AdvanceStatus(next) {
		s.eventChanged = true
		return true
	}
	return false
}

func (s *EventState) MarkEventChanged() { s.eventChanged = true }

// BaseStatus event status as last loaded or committed; the store commits against it
func (s *EventState) BaseStatus() EventStatus { return s.baseStatus }

// ---------- matches ----------

func (s *EventState) AddMatch(m *Match) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.EventID = s.Event.ID
	s.Matches = append(s.Matches, m)
	s.newMatches[m] = true
}

func (s *EventState) MarkMatchChanged(m *Match) {
	if s.newMatches[m] {
		return
	}
	s.changedMatches[m] = true
}

// LatestPlay highest play number stored for (level, matchNumber), discarded or not
func (s *EventState) LatestPlay(level TournamentLevel, matchNumber int) *Match {
	var latest *Match
	for _, m := range s.Matches {
		if m.Level != level || m.MatchNumber != matchNumber {
			continue
		}
		if latest == nil || m.PlayNumber > latest.PlayNumber {
			latest = m
		}
	}
	return latest
}

// ActivePlays non-discarded plays of a level ordered by match number
func (s *EventState) ActivePlays(level TournamentLevel) []*Match {
	var out []*Match
	for _, m := range s.Matches {
		if m.Level == level && !m.IsDiscarded {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchNumber < out[j].MatchNumber })
	return out
}

// ---------- alliances ----------

func (s *EventState) AddAlliance(a *Alliance) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.EventID = s.Event.ID
	s.Alliances = append(s.Alliances, a)
	s.newAlliances[a] = true
}

func (s *EventState) MarkAllianceChanged(a *Alliance) {
	if s.newAlliances[a] {
		return
	}
	s.changedAlliances[a] = true
}

func (s *EventState) RemoveAlliance(a *Alliance) {
	for i, cur := range s.Alliances {
		if cur != a {
			continue
		}
		s.Alliances = append(s.Alliances[:i], s.Alliances[i+1:]...)
		if s.newAlliances[a] {
			delete(s.newAlliances, a)
		} else {
			delete(s.changedAlliances, a)
			s.deletedAlliances = append(s.deletedAlliances, a.ID)
		}
		return
	}
}

func (s *EventState) AllianceByName(name string) *Alliance {
	for _, a := range s.Alliances {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (s *EventState) AllianceByID(id uuid.UUID) *Alliance {
	for _, a := range s.Alliances {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// ---------- teams ----------

func (s *EventState) AddTeam(t *EventTeam) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.EventID = s.Event.ID
	s.Teams = append(s.Teams, t)
	s.newTeams[t] = true
}

func (s *EventState) MarkTeamChanged(t *EventTeam) {
	if s.newTeams[t] {
		return
	}
	s.changedTeams[t] = true
}

func (s *EventState) RemoveTeam(t *EventTeam) {
	for i, cur := range s.Teams {
		if cur != t {
			continue
		}
		s.Teams = append(s.Teams[:i], s.Teams[i+1:]...)
		if s.newTeams[t] {
			delete(s.newTeams, t)
		} else {
			delete(s.changedTeams, t)
			s.deletedTeams = append(s.deletedTeams, t.ID)
		}
		return
	}
}

// ---------- rankings ----------

// ReplaceRankings swaps the full ranking table; persisted as delete+insert
func (s *EventState) ReplaceRankings(rows []*EventRanking) {
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		r.EventID = s.Event.ID
	}
	s.Rankings = rows
	s.rankingsReplaced = true
}

// ---------- change set ----------

func (s *EventState) HasChanges() bool {
	return s.eventChanged || s.rankingsReplaced ||
		len(s.newMatches) > 0 || len(s.changedMatches) > 0 ||
		len(s.newAlliances) > 0 || len(s.changedAlliances) > 0 || len(s.deletedAlliances) > 0 ||
		len(s.newTeams) > 0 || len(s.changedTeams) > 0 || len(s.deletedTeams) > 0
}

// Changes snapshot of pending mutations, ordered as the rows appear in the state
func (s *EventState) Changes() ChangeSet {
	cs := ChangeSet{
		EventChanged:     s.eventChanged,
		DeletedAlliances: append([]uuid.UUID(nil), s.deletedAlliances...),
		DeletedTeams:     append([]uuid.UUID(nil), s.deletedTeams...),
		RankingsReplaced: s.rankingsReplaced,
	}
	for _, m := range s.Matches {
		if s.newMatches[m] {
			cs.NewMatches = append(cs.NewMatches, m)
		} else if s.changedMatches[m] {
			cs.ChangedMatches = append(cs.ChangedMatches, m)
		}
	}
	for _, a := range s.Alliances {
		if s.newAlliances[a] {
			cs.NewAlliances = append(cs.NewAlliances, a)
		} else if s.changedAlliances[a] {
			cs.ChangedAlliances = append(cs.ChangedAlliances, a)
		}
	}
	for _, t := range s.Teams {
		if s.newTeams[t] {
			cs.NewTeams = append(cs.NewTeams, t)
		} else if s.changedTeams[t] {
			cs.ChangedTeams = append(cs.ChangedTeams, t)
		}
	}
	if s.rankingsReplaced {
		cs.Rankings = s.Rankings
	}
	return cs
}
