package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"EventSync/internal/model"
)

// StationTeam one team slot of a schedule/result row
type StationTeam struct {
	Number  int
	Station string // Red1, Blue2, ...
}

// SplitByStation red and blue team lists ordered by station
func SplitByStation(teams []StationTeam) (red, blue []int) {
	sorted := make([]StationTeam, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Station < sorted[j].Station })
	for _, t := range sorted {
		if t.Number <= 0 {
			continue
		}
		switch {
		case strings.HasPrefix(strings.ToLower(t.Station), "red"):
			red = append(red, t.Number)
		case strings.HasPrefix(strings.ToLower(t.Station), "blue"):
			blue = append(blue, t.Number)
		}
	}
	return red, blue
}

// FlattenRoster roster slots in order, skipping empty and duplicate slots
func FlattenRoster(slots ...*int) []int {
	seen := make(map[int]bool, len(slots))
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		if s == nil || *s <= 0 || seen[*s] {
			continue
		}
		seen[*s] = true
		out = append(out, *s)
	}
	return out
}

// ReportedWinner winner derivable from final scores. Playoff ties are left for the tiebreak resolver.
func ReportedWinner(level model.TournamentLevel, red, blue *int) *model.MatchWinner {
	if red == nil || blue == nil {
		return nil
	}
	w := model.WinnerFromScores(*red, *blue)
	if w == model.WinnerTrueTie && level == model.LevelPlayoff {
		return nil
	}
	return &w
}

// SeasonOf season year of a loaded event
func SeasonOf(source string, event *model.Event) (int, error) {
	if event.Season == nil || event.Season.Year == 0 {
		return 0, &model.SourceDataError{Source: source, Field: "season"}
	}
	return event.Season.Year, nil
}

// ========== criteria-based playoff tiebreak ==========

// Criterion one tiebreak comparison on an alliance score-breakdown field
type Criterion struct {
	Field     string
	LowerWins bool
}

// AllianceBreakdown raw red/blue score breakdown for one match
type AllianceBreakdown struct {
	Red  map[string]json.RawMessage
	Blue map[string]json.RawMessage
}

// BreakdownLoader fetches breakdowns for all playoff matches of an event, keyed by match number
type BreakdownLoader func(ctx context.Context) (map[int]AllianceBreakdown, error)

// CriteriaTiebreak compares breakdown fields in order; the first difference decides.
// Breakdowns are fetched once per resolver instance, i.e. once per sync pass.
type CriteriaTiebreak struct {
	source   string
	criteria []Criterion
	load     BreakdownLoader

	once    sync.Once
	scores  map[int]AllianceBreakdown
	loadErr error
}

func NewCriteriaTiebreak(source string, criteria []Criterion, load BreakdownLoader) *CriteriaTiebreak {
	return &CriteriaTiebreak{source: source, criteria: criteria, load: load}
}

func (t *CriteriaTiebreak) Resolve(ctx context.Context, match *model.Match) (model.MatchWinner, error) {
	t.once.Do(func() {
		t.scores, t.loadErr = t.load(ctx)
	})
	if t.loadErr != nil {
		return "", fmt.Errorf("load playoff score breakdowns: %w", t.loadErr)
	}
	breakdown, ok := t.scores[match.MatchNumber]
	if !ok {
		return "", &model.SourceDataError{
			Source: t.source,
			Field:  "matchScores",
			Detail: fmt.Sprintf("no breakdown for playoff match %d", match.MatchNumber),
		}
	}
	for _, c := range t.criteria {
		red, err := breakdownValue(t.source, breakdown.Red, c.Field)
		if err != nil {
			return "", err
		}
		blue, err := breakdownValue(t.source, breakdown.Blue, c.Field)
		if err != nil {
			return "", err
		}
		if red == blue {
			continue
		}
		redAhead := red > blue
		if c.LowerWins {
			redAhead = !redAhead
		}
		if redAhead {
			return model.WinnerRed, nil
		}
		return model.WinnerBlue, nil
	}
	return model.WinnerTrueTie, nil
}

func breakdownValue(source string, breakdown map[string]json.RawMessage, field string) (float64, error) {
	raw, ok := breakdown[field]
	if !ok {
		return 0, &model.SourceDataError{Source: source, Field: field}
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, &model.SourceDataError{Source: source, Field: field, Detail: err.Error()}
	}
	return v, nil
}

// UnsupportedTiebreak resolver for seasons without a known rule set
type UnsupportedTiebreak struct {
	Source string
	Season int
}

func (u UnsupportedTiebreak) Resolve(_ context.Context, _ *model.Match) (model.MatchWinner, error) {
	return "", fmt.Errorf("%s: no playoff tiebreak rules for season %d", u.Source, u.Season)
}

// SplitBreakdowns picks the red and blue objects out of an "alliances" array
func SplitBreakdowns(alliances []map[string]json.RawMessage) (AllianceBreakdown, bool) {
	var out AllianceBreakdown
	for _, a := range alliances {
		var side string
		if raw, ok := a["alliance"]; ok {
			_ = json.Unmarshal(raw, &side)
		}
		switch strings.ToLower(side) {
		case "red":
			out.Red = a
		case "blue":
			out.Blue = a
		}
	}
	return out, out.Red != nil && out.Blue != nil
}
