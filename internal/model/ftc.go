package model

import "encoding/json"

// ========== FTC Events API v2.0 response shapes ==========

type FTCEventsResponse struct {
	Events     []FTCEvent `json:"events"`
	EventCount int        `json:"eventCount"`
}

type FTCEvent struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	DistrictCode string `json:"districtCode"`
	Venue        string `json:"venue"`
	City         string `json:"city"`
	StateProv    string `json:"stateprov"`
	Country      string `json:"country"`
	DateStart    string `json:"dateStart"`
	DateEnd      string `json:"dateEnd"`
	Timezone     string `json:"timezone"` // IANA
}

type FTCTeamsResponse struct {
	Teams          []FTCTeam `json:"teams"`
	TeamCountTotal int       `json:"teamCountTotal"`
	PageCurrent    int       `json:"pageCurrent"`
	PageTotal      int       `json:"pageTotal"`
}

type FTCTeam struct {
	TeamNumber int    `json:"teamNumber"`
	NameShort  string `json:"nameShort"`
	NameFull   string `json:"nameFull"`
	City       string `json:"city"`
	StateProv  string `json:"stateProv"`
	Country    string `json:"country"`
	RookieYear int    `json:"rookieYear"`
}

type FTCScheduleResponse struct {
	Schedule []FTCScheduleMatch `json:"schedule"`
}

// FTCScheduleMatch playoff rows are identified by series + matchNumber
type FTCScheduleMatch struct {
	Description     string         `json:"description"`
	Field           string         `json:"field"`
	TournamentLevel string         `json:"tournamentLevel"`
	StartTime       string         `json:"startTime"`
	Series          int            `json:"series"`
	MatchNumber     int            `json:"matchNumber"`
	Teams           []FTCMatchTeam `json:"teams"`
}

type FTCMatchTeam struct {
	TeamNumber *int   `json:"teamNumber"`
	Station    string `json:"station"`
	Surrogate  bool   `json:"surrogate"`
	NoShow     bool   `json:"noShow"`
	DQ         bool   `json:"dq"`
}

type FTCMatchesResponse struct {
	Matches []FTCMatchResult `json:"matches"`
}

type FTCMatchResult struct {
	ActualStartTime string         `json:"actualStartTime"`
	Description     string         `json:"description"`
	TournamentLevel string         `json:"tournamentLevel"`
	Series          int            `json:"series"`
	MatchNumber     int            `json:"matchNumber"`
	ScoreRedFinal   *int           `json:"scoreRedFinal"`
	ScoreRedFoul    *int           `json:"scoreRedFoul"`
	ScoreRedAuto    *int           `json:"scoreRedAuto"`
	ScoreBlueFinal  *int           `json:"scoreBlueFinal"`
	ScoreBlueFoul   *int           `json:"scoreBlueFoul"`
	ScoreBlueAuto   *int           `json:"scoreBlueAuto"`
	PostResultTime  string         `json:"postResultTime"`
	Teams           []FTCMatchTeam `json:"teams"`
}

type FTCRankingsResponse struct {
	Rankings []FTCRanking `json:"rankings"`
}

type FTCRanking struct {
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

type FTCAlliancesResponse struct {
	Alliances []FTCAlliance `json:"alliances"`
	Count     int           `json:"count"`
}

// FTCAlliance captain + up to three picks + backup
type FTCAlliance struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`
	Captain        *int   `json:"captain"`
	Round1         *int   `json:"round1"`
	Round2         *int   `json:"round2"`
	Round3         *int   `json:"round3"`
	Backup         *int   `json:"backup"`
	BackupReplaced *int   `json:"backupReplaced"`
}

type FTCAwardsResponse struct {
	Awards []FTCAward `json:"awards"`
}

type FTCAward struct {
	AwardID    int    `json:"awardId"`
	Name       string `json:"name"`
	TeamNumber *int   `json:"teamNumber"`
	Person     string `json:"person"`
	Series     int    `json:"series"`
}

type FTCScoresResponse struct {
	MatchScores []FTCMatchScore `json:"matchScores"`
}

type FTCMatchScore struct {
	MatchLevel  string                       `json:"matchLevel"`
	MatchSeries int                          `json:"matchSeries"`
	MatchNumber int                          `json:"matchNumber"`
	Alliances   []map[string]json.RawMessage `json:"alliances"`
}

// FTCStatusResponse GET /
type FTCStatusResponse struct {
	Name          string `json:"name"`
	APIVersion    string `json:"apiVersion"`
	Status        string `json:"status"`
	CurrentSeason int    `json:"currentSeason"`
}
