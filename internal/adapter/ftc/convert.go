package ftc

import (
	"fmt"
	"time"

	"EventSync/internal/adapter"
	"EventSync/internal/model"
)

// playoffKey playoff rows are numbered within a bracket series; fold both into one stable match number
func playoffKey(series, matchNumber int) int {
	if series <= 0 {
		return matchNumber
	}
	return series*100 + matchNumber
}

func convertEvent(e *model.FTCEvent) (*model.SourceEvent, error) {
	if e.Code == "" {
		return nil, &model.SourceDataError{Source: SourceName, Field: "code"}
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil || e.Timezone == "" {
		return nil, &model.SourceDataError{Source: SourceName, Field: "timezone", Detail: e.Code}
	}
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
		TimeZone:     e.Timezone,
		StartTime:    *start,
		EndTime:      *end,
	}, nil
}

func stationTeams(teams []model.FTCMatchTeam) []adapter.StationTeam {
	out := make([]adapter.StationTeam, 0, len(teams))
	for _, t := range teams {
		if t.TeamNumber == nil {
			continue
		}
		out = append(out, adapter.StationTeam{Number: *t.TeamNumber, Station: t.Station})
	}
	return out
}

func matchNumber(level model.TournamentLevel, series, number int, description string) (int, error) {
	if number <= 0 {
		return 0, &model.SourceDataError{Source: SourceName, Field: "matchNumber", Detail: description}
	}
	if level == model.LevelPlayoff {
		return playoffKey(series, number), nil
	}
	return number, nil
}

func convertScheduleMatch(m *model.FTCScheduleMatch, level model.TournamentLevel, loc *time.Location) (*model.SourceMatch, error) {
	number, err := matchNumber(level, m.Series, m.MatchNumber, m.Description)
	if err != nil {
		return nil, err
	}
	scheduled, err := model.ParseLocalTime(m.StartTime, loc)
	if err != nil {
		return nil, &model.SourceDataError{Source: SourceName, Field: "startTime", Detail: err.Error()}
	}
	red, blue := adapter.SplitByStation(stationTeams(m.Teams))
	return &model.SourceMatch{
		Level:              level,
		MatchNumber:        number,
		Name:               displayName(m.Description, number),
		RedTeams:           red,
		BlueTeams:          blue,
		ScheduledStartTime: scheduled,
	}, nil
}

func convertMatchResult(m *model.FTCMatchResult, level model.TournamentLevel, loc *time.Location) (*model.SourceMatch, error) {
	number, err := matchNumber(level, m.Series, m.MatchNumber, m.Description)
	if err != nil {
		return nil, err
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
		MatchNumber:     number,
		Name:            displayName(m.Description, number),
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

func displayName(description string, number int) string {
	if description != "" {
		return description
	}
	return fmt.Sprintf("Match %d", number)
}
