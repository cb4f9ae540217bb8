package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ========== Normalized data-source shapes (every source adapter converts into these) ==========

// SourceEvent event as reported by an external source
type SourceEvent struct {
	Code         string
	Name         string
	DistrictCode string
	Venue        string
	City         string
	TimeZone     string    // IANA zone
	StartTime    time.Time // UTC
	EndTime      time.Time // UTC
}

type SourceTeam struct {
	TeamNumber int
	Name       string
	City       string
	StateProv  string
	Country    string
	RookieYear int
}

// SourceMatch a schedule or result row. All instants are absolute (UTC) already.
type SourceMatch struct {
	Level              TournamentLevel
	MatchNumber        int
	Name               string
	RedTeams           []int
	BlueTeams          []int
	ScheduledStartTime *time.Time
	ActualStartTime    *time.Time
	PostResultTime     *time.Time
	RedScore           *int
	BlueScore          *int
	Winner             *MatchWinner // set only when the source reports an unambiguous winner
}

type SourceRanking struct {
	TeamNumber        int
	Rank              int
	Wins              int
	Losses            int
	Ties              int
	SortOrders        []float64
	QualAverage       float64
	Disqualifications int
	MatchesPlayed     int
}

// SourceAlliance roster flattened from the source's 4-6 named slots, in slot order
type SourceAlliance struct {
	Number int
	Name   string
	Teams  []int
}

type SourceAward struct {
	Name       string
	TeamNumber int
	Person     string
}

// IsEventWinnerAward award that marks the event as over
func (a *SourceAward) IsEventWinnerAward() bool {
	if a.TeamNumber <= 0 {
		return false
	}
	return strings.Contains(a.Name, "Winner") || strings.Contains(a.Name, "Winning")
}

// ========== Source errors ==========

// ErrMissingField the source payload lacks a field the adapter requires
var ErrMissingField = errors.New("expected field missing")

// SourceDataError malformed or incomplete data returned by a source
type SourceDataError struct {
	Source string
	Field  string
	Detail string
}

func (e *SourceDataError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s %q: %s", e.Source, ErrMissingField, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s %q", e.Source, ErrMissingField, e.Field)
}

func (e *SourceDataError) Unwrap() error { return ErrMissingField }

// TransportError network failure or non-2xx response
type TransportError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request %s failed with status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: request %s failed: %v", e.Source, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ========== Time helpers ==========

const localLayout = "2006-01-02T15:04:05"

// ParseLocalTime converts a source wall-clock value into an absolute UTC instant.
// Values carrying an explicit offset are honored as-is; everything else is read in loc.
func ParseLocalTime(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		u := t.UTC()
		return &u, nil
	}
	t, err := time.ParseInLocation(localLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", value, err)
	}
	u := t.UTC()
	return &u, nil
}
