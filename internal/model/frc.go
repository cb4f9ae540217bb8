package model

import "encoding/json"

// ========== FRC Events API v3.0 response shapes ==========

// FRCEventsResponse GET /{season}/events
type FRCEventsResponse struct {
	Events     []FRCEvent `json:"Events"`
	EventCount int        `json:"eventCount"`
}

type FRCEvent struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	DistrictCode string `json:"districtCode"`
	Venue        string `json:"venue"`
	City         string `json:"city"`
	StateProv    string `json:"stateprov"`
	Country      string `json:"country"`
	DateStart    string `json:"dateStart"`
	DateEnd      string `json:"dateEnd"`
	Timezone     string `json:"timezone"` // Windows zone name, e.g. "Eastern Standard Time"
}

// FRCTeamsResponse GET /{season}/teams?eventCode= (paged)
type FRCTeamsResponse struct {
	Teams          []FRCTeam `json:"teams"`
	TeamCountTotal int       `json:"teamCountTotal"`
	PageCurrent    int       `json:"pageCurrent"`
	PageTotal      int       `json:"pageTotal"`
}

type FRCTeam struct {
	TeamNumber int    `json:"teamNumber"`
	NameShort  string `json:"nameShort"`
	NameFull   string `json:"nameFull"`
	City       string `json:"city"`
	StateProv  string `json:"stateProv"`
	Country    string `json:"country"`
	RookieYear int    `json:"rookieYear"`
}

// FRCScheduleResponse GET /{season}/schedule/{eventCode}?tournamentLevel=
type FRCScheduleResponse struct {
	Schedule []FRCScheduleMatch `json:"Schedule"`
}

type FRCScheduleMatch struct {
	Description     string         `json:"description"`
	StartTime       string         `json:"startTime"`
	MatchNumber     int            `json:"matchNumber"`
	Field           string         `json:"field"`
	TournamentLevel string         `json:"tournamentLevel"`
	Teams           []FRCMatchTeam `json:"teams"`
}

type FRCMatchTeam struct {
	TeamNumber *int   `json:"teamNumber"`
	Station    string `json:"station"` // Red1..Red3, Blue1..Blue3
	Surrogate  bool   `json:"surrogate"`
	DQ         bool   `json:"dq"`
}

// FRCMatchesResponse GET /{season}/matches/{eventCode}?tournamentLevel=
type FRCMatchesResponse struct {
	Matches []FRCMatchResult `json:"Matches"`
}

type FRCMatchResult struct {
	IsReplay        bool           `json:"isReplay"`
	Description     string         `json:"description"`
	MatchNumber     int            `json:"matchNumber"`
	TournamentLevel string         `json:"tournamentLevel"`
	ActualStartTime string         `json:"actualStartTime"`
	PostResultTime  string         `json:"postResultTime"`
	ScoreRedFinal   *int           `json:"scoreRedFinal"`
	ScoreRedFoul    *int           `json:"scoreRedFoul"`
	ScoreRedAuto    *int           `json:"scoreRedAuto"`
	ScoreBlueFinal  *int           `json:"scoreBlueFinal"`
	ScoreBlueFoul   *int           `json:"scoreBlueFoul"`
	ScoreBlueAuto   *int           `json:"scoreBlueAuto"`
	Teams           []FRCMatchTeam `json:"teams"`
}

// FRCRankingsResponse GET /{season}/rankings/{eventCode}
type FRCRankingsResponse struct {
	Rankings []FRCRanking `json:"Rankings"`
}

type FRCRanking struct {
	Rank          int     `json:"rank"`
	TeamNumber    int     `json:"teamNumber"`
	SortOrder1    float64 `json:"sortOrder1"`
	SortOrder2    float64 `json:"sortOrder2"`
	SortOrder3    float64 `json:"sortOrder3"`
	SortOrder4    float64 `json:"sortOrder4"`
	SortOrder5    float64 `json:"sortOrder5"`
	SortOrder6    float64 `json:"sortOrder6"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	QualAverage   float64 `json:"qualAverage"`
	DQ            int     `json:"dq"`
	MatchesPlayed int     `json:"matchesPlayed"`
}

// FRCAlliancesResponse GET /{season}/alliances/{eventCode}
type FRCAlliancesResponse struct {
	Alliances []FRCAlliance `json:"Alliances"`
	Count     int           `json:"count"`
}

// FRCAlliance six roster slots; any of them may be null
type FRCAlliance struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`
	Captain        *int   `json:"captain"`
	Round1         *int   `json:"round1"`
	Round2         *int   `json:"round2"`
	Round3         *int   `json:"round3"`
	Backup         *int   `json:"backup"`
	BackupReplaced *int   `json:"backupReplaced"`
}

// FRCAwardsResponse GET /{season}/awards/event/{eventCode}
type FRCAwardsResponse struct {
	Awards []FRCAward `json:"Awards"`
}

type FRCAward struct {
	AwardID    int    `json:"awardId"`
	Name       string `json:"name"`
	TeamNumber *int   `json:"teamNumber"`
	Person     string `json:"person"`
	Series     int    `json:"series"`
}

// FRCScoresResponse GET /{season}/scores/{eventCode}/Playoff
type FRCScoresResponse struct {
	MatchScores []FRCMatchScore `json:"MatchScores"`
}

// FRCMatchScore alliance breakdowns are season specific, kept as raw objects
type FRCMatchScore struct {
	MatchLevel  string                       `json:"matchLevel"`
	MatchNumber int                          `json:"matchNumber"`
	Alliances   []map[string]json.RawMessage `json:"alliances"`
}

// FRCStatusResponse GET /
type FRCStatusResponse struct {
	Name          string `json:"name"`
	APIVersion    string `json:"apiVersion"`
	Status        string `json:"status"`
	CurrentSeason int    `json:"currentSeason"`
}
