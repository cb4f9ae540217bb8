package frc

import (
	"fmt"
	"time"

	"EventSync/internal/adapter"
	"EventSync/internal/model"
)

// windowsZones the FRC API reports Windows zone names; the store keeps IANA names
var windowsZones = map[string]string{
	"Eastern Standard Time":          "America/New_York",
	"Central Standard Time":          "America/Chicago",
	"Mountain Standard Time":         "America/Denver",
	"US Mountain Standard Time":      "America/Phoenix",
	"Pacific Standard Time":          "America/Los_Angeles",
	"Alaskan Standard Time":          "America/Anchorage",
	"Hawaiian Standard Time":         "Pacific/Honolulu",
	"Atlantic Standard Time":         "America/Halifax",
	"Newfoundland Standard Time":     "America/St_Johns",
	"Canada Central Standard Time":   "America/Regina",
	"Mexico Standard Time":           "America/Mexico_City",
	"Central Standard Time (Mexico)": "America/Mexico_City",
	"Israel Standard Time":           "Asia/Jerusalem",
	"Turkey Standard Time":           "Europe/Istanbul",
	"China Standard Time":            "Asia/Shanghai",
	"AUS Eastern Standard Time":      "Australia/Sydney",
	"E. Australia Standard Time":     "Australia/Brisbane",
	"SA Pacific Standard Time":       "America/Bogota",
	"E. South America Standard Time": "America/Sao_Paulo",
	"W. Europe Standard Time":        "Europe/Berlin",
	"GMT Standard Time":              "Europe/London",
	"UTC":                            "UTC",
}

// ianaZone maps a reported zone to a loadable IANA name
func ianaZone(reported string) (string, error) {
	if reported == "" {
		return "", &model.SourceDataError{Source: SourceName, Field: "timezone"}
	}
	if iana, ok := windowsZones[reported]; ok {
		return iana, nil
	}
	if _, err := time.LoadLocation(reported); err == nil {
		return reported, nil
	}
	return "", &model.SourceDataError{Source: SourceName, Field: "timezone", Detail: fmt.Sprintf("unknown zone %q", reported)}
}

func eventLocation(event *model.Event) (*time.Location, error) {
	loc, err := event.Location()
	if err != nil {
		return nil, &model.SourceDataError{Source: SourceName, Field: "timezone", Detail: err.Error()}
	}
	return loc, nil
}

func convertEvent(e *model.FRCEvent) (*model.SourceEvent, error) {
	if e.Code == "" {
		return nil, &model.SourceDataError{Source: SourceName, Field: "code"}
	}
	zone, err := ianaZone(e.Timezone)
	if err != nil {
		return nil, err
	}
	loc, _ := time.LoadLocation(zone)
	start, err := model.ParseLocalTime(e.DateStart, loc)
	if err != nil || start == nil {
		return nil, &model.SourceDataError{Source: SourceName, Field: "dateStart", Detail: e.Code}
	}
	end, err := model.ParseLocalTime(e.DateEnd, loc)
	if err != nil || end == nil {
		return nil, &model.SourceDataError{Source: SourceName, Field: "dateEnd", Detail: e.Code}
	}
	return &model.SourceEvent{
		Code:         e.Code,
		Name:         e.Name,
		DistrictCode: e.DistrictCode,
		Venue:        e.Venue,
		City:         e.City,
		TimeZone:     zone,
		StartTime:    *start,
		EndTime:      *end,
	}, nil
}

func stationTeams(teams []model.FRCMatchTeam) []adapter.StationTeam {
	out := make([]adapter.StationTeam, 0, len(teams))
	for _, t := range teams {
		if t.TeamNumber == nil {
			continue
		}
		out = append(out, adapter.StationTeam{Number: *t.TeamNumber, Station: t.Station})
	}
	return out
}

func convertScheduleMatch(m *model.FRCScheduleMatch, level model.TournamentLevel, loc *time.Location) (*model.SourceMatch, error) {
	if m.MatchNumber <= 0 {
		return nil, &model.SourceDataError{Source: SourceName, Field: "matchNumber", Detail: m.Description}
	}
	scheduled, err := model.ParseLocalTime(m.StartTime, loc)
	if err != nil {
		return nil, &model.SourceDataError{Source: SourceName, Field: "startTime", Detail: err.Error()}
	}
	red, blue := adapter.SplitByStation(stationTeams(m.Teams))
	return &model.SourceMatch{
		Level:              level,
		MatchNumber:        m.MatchNumber,
		Name:               m.Description,
		RedTeams:           red,
		BlueTeams:          blue,
		ScheduledStartTime: scheduled,
	}, nil
}

func convertMatchResult(m *model.FRCMatchResult, level model.TournamentLevel, loc *time.Location) (*model.SourceMatch, error) {
	if m.MatchNumber <= 0 {
		return nil, &model.SourceDataError{Source: SourceName, Field: "matchNumber", Detail: m.Description}
	}
	actual, err := model.ParseLocalTime(m.ActualStartTime, loc)
	if err != nil {
		return nil, &model.SourceDataError{Source: SourceName, Field: "actualStartTime", Detail: err.Error()}
	}
	posted, err := model.ParseLocalTime(m.PostResultTime, loc)
	if err != nil {
		return nil, &model.SourceDataError{Source: SourceName, Field: "postResultTime", Detail: err.Error()}
	}
	red, blue := adapter.SplitByStation(stationTeams(m.Teams))
	out := &model.SourceMatch{
		Level:           level,
		MatchNumber:     m.MatchNumber,
		Name:            m.Description,
		RedTeams:        red,
		BlueTeams:       blue,
		ActualStartTime: actual,
		PostResultTime:  posted,
		RedScore:        m.ScoreRedFinal,
		BlueScore:       m.ScoreBlueFinal,
	}
	if posted != nil {
		out.Winner = adapter.ReportedWinner(level, m.ScoreRedFinal, m.ScoreBlueFinal)
	}
	return out, nil
}

// convertAlliance flattens captain, picks and backup slots. backupReplaced stays on the roster
// so plays from before the substitution still correlate.
func convertAlliance(a *model.FRCAlliance) (*model.SourceAlliance, error) {
	name := a.Name
	if name == "" {
		if a.Number <= 0 {
			return nil, &model.SourceDataError{Source: SourceName, Field: "name"}
		}
		name = fmt.Sprintf("Alliance %d", a.Number)
	}
	return &model.SourceAlliance{
		Number: a.Number,
		Name:   name,
		Teams:  adapter.FlattenRoster(a.Captain, a.Round1, a.Round2, a.Round3, a.Backup, a.BackupReplaced),
	}, nil
}
