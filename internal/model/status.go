package model

// EventStatus lifecycle phase of an event. Values only ever move forward in eventStatusOrder.
type EventStatus string

const (
	EventStatusNotStarted         EventStatus = "NotStarted"
	EventStatusAwaitingQuals      EventStatus = "AwaitingQuals"
	EventStatusQualsInProgress    EventStatus = "QualsInProgress"
	EventStatusAwaitingAlliances  EventStatus = "AwaitingAlliances"
	EventStatusAwaitingPlayoffs   EventStatus = "AwaitingPlayoffs"
	EventStatusPlayoffsInProgress EventStatus = "PlayoffsInProgress"
	EventStatusWinnerDetermined   EventStatus = "WinnerDetermined"
	EventStatusCompleted          EventStatus = "Completed"
)

var eventStatusOrder = []EventStatus{
	EventStatusNotStarted,
	EventStatusAwaitingQuals,
	EventStatusQualsInProgress,
	EventStatusAwaitingAlliances,
	EventStatusAwaitingPlayoffs,
	EventStatusPlayoffsInProgress,
	EventStatusWinnerDetermined,
	EventStatusCompleted,
}

// EventStatuses returns all statuses in lifecycle order
func EventStatuses() []EventStatus {
	out := make([]EventStatus, len(eventStatusOrder))
	copy(out, eventStatusOrder)
	return out
}

// Rank position of the status in the lifecycle; -1 for unknown values
func (s EventStatus) Rank() int {
	for i, v := range eventStatusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

func (s EventStatus) Valid() bool { return s.Rank() >= 0 }

// Before reports whether s comes strictly earlier in the lifecycle than other
func (s EventStatus) Before(other EventStatus) bool {
	return s.Rank() < other.Rank()
}

// TournamentLevel qualification or playoff
type TournamentLevel string

const (
	LevelQualification TournamentLevel = "Qualification"
	LevelPlayoff       TournamentLevel = "Playoff"
)

// MatchWinner result of a single play
type MatchWinner string

const (
	WinnerRed     MatchWinner = "Red"
	WinnerBlue    MatchWinner = "Blue"
	WinnerTrueTie MatchWinner = "TrueTie"
)

func (w MatchWinner) Ptr() *MatchWinner { return &w }

// WinnerFromScores red/blue by score, TrueTie when equal
func WinnerFromScores(red, blue int) MatchWinner {
	switch {
	case red > blue:
		return WinnerRed
	case blue > red:
		return WinnerBlue
	default:
		return WinnerTrueTie
	}
}
