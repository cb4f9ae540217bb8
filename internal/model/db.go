package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Season struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Source    string    `gorm:"column:source;type:varchar(32);not null;uniqueIndex:uq_season_source_year;comment:sync source id"`
	Year      int       `gorm:"column:year;type:int;not null;uniqueIndex:uq_season_source_year"`
	Name      string    `gorm:"column:name;type:varchar(128)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type Event struct {
	ID                uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	SeasonID          uuid.UUID   `gorm:"column:season_id;type:uuid;not null;uniqueIndex:uq_event_season_code"`
	Season            *Season     `gorm:"foreignKey:SeasonID"`
	Code              string      `gorm:"column:code;type:varchar(32);not null;uniqueIndex:uq_event_season_code;comment:external event code"`
	Name              string      `gorm:"column:name;type:varchar(256);not null"`
	DistrictCode      string      `gorm:"column:district_code;type:varchar(16)"`
	Venue             string      `gorm:"column:venue;type:varchar(256)"`
	City              string      `gorm:"column:city;type:varchar(128)"`
	TimeZone          string      `gorm:"column:time_zone;type:varchar(64);not null;comment:IANA zone"`
	StartTime         time.Time   `gorm:"column:start_time;type:timestamp;not null"`
	EndTime           time.Time   `gorm:"column:end_time;type:timestamp;not null"`
	SyncSource        string      `gorm:"column:sync_source;type:varchar(32);not null"`
	Status            EventStatus `gorm:"column:status;type:varchar(32);not null;index"`
	WinningAllianceID *uuid.UUID  `gorm:"column:winning_alliance_id;type:uuid"`
	CompletedAt       *time.Time  `gorm:"column:completed_at;type:timestamp"`
	CreatedAt         time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// AdvanceStatus moves the event forward to next. Backward or same-status moves are ignored.
func (e *Event) AdvanceStatus(next EventStatus) bool {
	if !next.Valid() || !e.Status.Before(next) {
		return false
	}
	e.Status = next
	return true
}

// Location resolves the event's declared zone
func (e *Event) Location() (*time.Location, error) {
	return time.LoadLocation(e.TimeZone)
}

type EventTeam struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EventID    uuid.UUID `gorm:"column:event_id;type:uuid;not null;uniqueIndex:uq_event_team"`
	TeamNumber int       `gorm:"column:team_number;type:int;not null;uniqueIndex:uq_event_team"`
	Name       string    `gorm:"column:name;type:varchar(256)"`
	City       string    `gorm:"column:city;type:varchar(128)"`
	StateProv  string    `gorm:"column:state_prov;type:varchar(64)"`
	Country    string    `gorm:"column:country;type:varchar(64)"`
	RookieYear int       `gorm:"column:rookie_year;type:int"`
}

// Match one play of a match number. Replays add plays; older plays are discarded, never removed.
type Match struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	EventID            uuid.UUID                `gorm:"column:event_id;type:uuid;not null;uniqueIndex:uq_match_play"`
	Level              TournamentLevel          `gorm:"column:level;type:varchar(16);not null;uniqueIndex:uq_match_play"`
	MatchNumber        int                      `gorm:"column:match_number;type:int;not null;uniqueIndex:uq_match_play"`
	PlayNumber         int                      `gorm:"column:play_number;type:int;not null;default:1;uniqueIndex:uq_match_play"`
	Name               string                   `gorm:"column:name;type:varchar(64)"`
	RedTeams           datatypes.JSONSlice[int] `gorm:"column:red_teams"`
	BlueTeams          datatypes.JSONSlice[int] `gorm:"column:blue_teams"`
	RedAllianceID      *uuid.UUID               `gorm:"column:red_alliance_id;type:uuid"`
	BlueAllianceID     *uuid.UUID               `gorm:"column:blue_alliance_id;type:uuid"`
	ScheduledStartTime *time.Time               `gorm:"column:scheduled_start_time;type:timestamp"`
	ActualStartTime    *time.Time               `gorm:"column:actual_start_time;type:timestamp"`
	PostResultTime     *time.Time               `gorm:"column:post_result_time;type:timestamp"`
	RedScore           *int                     `gorm:"column:red_score;type:int"`
	BlueScore          *int                     `gorm:"column:blue_score;type:int"`
	Winner             *MatchWinner             `gorm:"column:winner;type:varchar(16)"`
	IsDiscarded        bool                     `gorm:"column:is_discarded;type:boolean;not null;default:false"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Match) HasResult() bool { return m.PostResultTime != nil }

type Alliance struct {
	ID      uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	EventID uuid.UUID                `gorm:"column:event_id;type:uuid;not null;uniqueIndex:uq_alliance_name"`
	Number  int                      `gorm:"column:number;type:int"`
	Name    string                   `gorm:"column:name;type:varchar(64);not null;uniqueIndex:uq_alliance_name"`
	Teams   datatypes.JSONSlice[int] `gorm:"column:teams"`
}

type EventRanking struct {
	ID                uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	EventID           uuid.UUID                    `gorm:"column:event_id;type:uuid;not null;index"`
	TeamNumber        int                          `gorm:"column:team_number;type:int;not null"`
	Rank              int                          `gorm:"column:rank;type:int;not null"`
	Wins              int                          `gorm:"column:wins;type:int"`
	Losses            int                          `gorm:"column:losses;type:int"`
	Ties              int                          `gorm:"column:ties;type:int"`
	SortOrders        datatypes.JSONSlice[float64] `gorm:"column:sort_orders"`
	QualAverage       float64                      `gorm:"column:qual_average;type:numeric(10,4)"`
	Disqualifications int                          `gorm:"column:disqualifications;type:int"`
	MatchesPlayed     int                          `gorm:"column:matches_played;type:int"`
}

func (Season) TableName() string       { return "seasons" }
func (Event) TableName() string        { return "events" }
func (EventTeam) TableName() string    { return "event_teams" }
func (Match) TableName() string        { return "matches" }
func (Alliance) TableName() string     { return "alliances" }
func (EventRanking) TableName() string { return "event_rankings" }

// AllTables in migration order
func AllTables() []interface{} {
	return []interface{}{
		&Season{},
		&Event{},
		&EventTeam{},
		&Match{},
		&Alliance{},
		&EventRanking{},
	}
}
