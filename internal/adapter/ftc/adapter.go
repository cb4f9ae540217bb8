package ftc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"EventSync/internal/adapter"
	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// SourceName sync source id of the FTC Events API
const SourceName = "ftc_events"

const (
	levelQual    = "qual"
	levelPlayoff = "playoff"
)

func init() {
	adapter.Register(SourceName, NewFTCClient)
}

type Client struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewFTCClient(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.DataClient {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (c *Client) Source() string {
	return SourceName
}

func (c *Client) endpoint(format string, args ...interface{}) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + fmt.Sprintf(format, args...)
}

func (c *Client) get(ctx context.Context, out interface{}, format string, args ...interface{}) error {
	return httpclient.GetJSON(ctx, c.httpClient, SourceName, c.endpoint(format, args...), out)
}

// prepare season and zone every event-scoped call needs
func (c *Client) prepare(event *model.Event) (int, *time.Location, error) {
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return 0, nil, err
	}
	loc, err := event.Location()
	if err != nil {
		return 0, nil, &model.SourceDataError{Source: SourceName, Field: "timezone", Detail: err.Error()}
	}
	return season, loc, nil
}

func (c *Client) GetEvent(ctx context.Context, season int, code string) (*model.SourceEvent, error) {
	var resp model.FTCEventsResponse
	if err := c.get(ctx, &resp, "/%d/events?eventCode=%s", season, url.QueryEscape(code)); err != nil {
		return nil, fmt.Errorf("get event %s: %w", code, err)
	}
	for i := range resp.Events {
		if strings.EqualFold(resp.Events[i].Code, code) {
			return convertEvent(&resp.Events[i])
		}
	}
	return nil, &model.SourceDataError{Source: SourceName, Field: "events", Detail: fmt.Sprintf("event %s not listed", code)}
}

func (c *Client) GetDistrictEvents(ctx context.Context, season int, district string) ([]*model.SourceEvent, error) {
	var resp model.FTCEventsResponse
	if err := c.get(ctx, &resp, "/%d/events?districtCode=%s", season, url.QueryEscape(district)); err != nil {
		return nil, fmt.Errorf("get district %s events: %w", district, err)
	}
	out := make([]*model.SourceEvent, 0, len(resp.Events))
	for i := range resp.Events {
		ev, err := convertEvent(&resp.Events[i])
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (c *Client) GetTeamsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceTeam, error) {
	season, _, err := c.prepare(event)
	if err != nil {
		return nil, err
	}
	var out []*model.SourceTeam
	for page := 1; ; page++ {
		var resp model.FTCTeamsResponse
		if err := c.get(ctx, &resp, "/%d/teams?eventCode=%s&page=%d", season, url.QueryEscape(event.Code), page); err != nil {
			return nil, fmt.Errorf("get teams page %d: %w", page, err)
		}
		for _, t := range resp.Teams {
			if t.TeamNumber <= 0 {
				return nil, &model.SourceDataError{Source: SourceName, Field: "teamNumber"}
			}
			out = append(out, &model.SourceTeam{
				TeamNumber: t.TeamNumber,
				Name:       t.NameShort,
				City:       t.City,
				StateProv:  t.StateProv,
				Country:    t.Country,
				RookieYear: t.RookieYear,
			})
		}
		if resp.PageTotal <= page {
			break
		}
	}
	return out, nil
}

func (c *Client) GetQualScheduleForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error) {
	return c.schedule(ctx, event, model.LevelQualification)
}

func (c *Client) GetPlayoffScheduleForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error) {
	return c.schedule(ctx, event, model.LevelPlayoff)
}

func (c *Client) GetQualResultsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error) {
	return c.results(ctx, event, model.LevelQualification)
}

func (c *Client) GetPlayoffResultsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error) {
	return c.results(ctx, event, model.LevelPlayoff)
}

func wireLevel(level model.TournamentLevel) string {
	if level == model.LevelPlayoff {
		return levelPlayoff
	}
	return levelQual
}

func (c *Client) schedule(ctx context.Context, event *model.Event, level model.TournamentLevel) ([]*model.SourceMatch, error) {
	season, loc, err := c.prepare(event)
	if err != nil {
		return nil, err
	}
	var resp model.FTCScheduleResponse
	if err := c.get(ctx, &resp, "/%d/schedule/%s?tournamentLevel=%s", season, url.PathEscape(event.Code), wireLevel(level)); err != nil {
		return nil, fmt.Errorf("get %s schedule: %w", level, err)
	}
	out := make([]*model.SourceMatch, 0, len(resp.Schedule))
	for i := range resp.Schedule {
		m, err := convertScheduleMatch(&resp.Schedule[i], level, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) results(ctx context.Context, event *model.Event, level model.TournamentLevel) ([]*model.SourceMatch, error) {
	season, loc, err := c.prepare(event)
	if err != nil {
		return nil, err
	}
	var resp model.FTCMatchesResponse
	if err := c.get(ctx, &resp, "/%d/matches/%s?tournamentLevel=%s", season, url.PathEscape(event.Code), wireLevel(level)); err != nil {
		return nil, fmt.Errorf("get %s results: %w", level, err)
	}
	out := make([]*model.SourceMatch, 0, len(resp.Matches))
	for i := range resp.Matches {
		m, err := convertMatchResult(&resp.Matches[i], level, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) GetQualRankingsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceRanking, error) {
	season, _, err := c.prepare(event)
	if err != nil {
		return nil, err
	}
	var resp model.FTCRankingsResponse
	if err := c.get(ctx, &resp, "/%d/rankings/%s", season, url.PathEscape(event.Code)); err != nil {
		return nil, fmt.Errorf("get rankings: %w", err)
	}
	out := make([]*model.SourceRanking, 0, len(resp.Rankings))
	for _, r := range resp.Rankings {
		if r.TeamNumber <= 0 {
			return nil, &model.SourceDataError{Source: SourceName, Field: "teamNumber"}
		}
		out = append(out, &model.SourceRanking{
			TeamNumber:        r.TeamNumber,
			Rank:              r.Rank,
			Wins:              r.Wins,
			Losses:            r.Losses,
			Ties:              r.Ties,
			SortOrders:        []float64{r.SortOrder1, r.SortOrder2, r.SortOrder3, r.SortOrder4, r.SortOrder5, r.SortOrder6},
			QualAverage:       r.QualAverage,
			Disqualifications: r.DQ,
			MatchesPlayed:     r.MatchesPlayed,
		})
	}
	return out, nil
}

func (c *Client) GetAlliancesForEvent(ctx context.Context, event *model.Event) ([]*model.SourceAlliance, error) {
	season, _, err := c.prepare(event)
	if err != nil {
		return nil, err
	}
	var resp model.FTCAlliancesResponse
	if err := c.get(ctx, &resp, "/%d/alliances/%s", season, url.PathEscape(event.Code)); err != nil {
		return nil, fmt.Errorf("get alliances: %w", err)
	}
	out := make([]*model.SourceAlliance, 0, len(resp.Alliances))
	for _, a := range resp.Alliances {
		if a.Number <= 0 && a.Name == "" {
			return nil, &model.SourceDataError{Source: SourceName, Field: "name"}
		}
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("Alliance %d", a.Number)
		}
		out = append(out, &model.SourceAlliance{
			Number: a.Number,
			Name:   name,
			Teams:  adapter.FlattenRoster(a.Captain, a.Round1, a.Round2, a.Round3, a.Backup, a.BackupReplaced),
		})
	}
	return out, nil
}

func (c *Client) GetAwardsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceAward, error) {
	season, _, err := c.prepare(event)
	if err != nil {
		return nil, err
	}
	var resp model.FTCAwardsResponse
	if err := c.get(ctx, &resp, "/%d/awards/%s", season, url.PathEscape(event.Code)); err != nil {
		return nil, fmt.Errorf("get awards: %w", err)
	}
	out := make([]*model.SourceAward, 0, len(resp.Awards))
	for _, a := range resp.Awards {
		award := &model.SourceAward{Name: a.Name, Person: a.Person}
		if a.TeamNumber != nil {
			award.TeamNumber = *a.TeamNumber
		}
		out = append(out, award)
	}
	return out, nil
}

// GetPlayoffTiebreak FTC uses one rule set across seasons: fewer penalty points committed, then auto points
func (c *Client) GetPlayoffTiebreak(event *model.Event) interfaces.TiebreakResolver {
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return adapter.UnsupportedTiebreak{Source: SourceName}
	}
	code := event.Code
	return adapter.NewCriteriaTiebreak(SourceName, tiebreakCriteria, func(ctx context.Context) (map[int]adapter.AllianceBreakdown, error) {
		var resp model.FTCScoresResponse
		if err := c.get(ctx, &resp, "/%d/scores/%s/playoff", season, url.PathEscape(code)); err != nil {
			return nil, err
		}
		out := make(map[int]adapter.AllianceBreakdown, len(resp.MatchScores))
		for _, s := range resp.MatchScores {
			if b, ok := adapter.SplitBreakdowns(s.Alliances); ok {
				out[playoffKey(s.MatchSeries, s.MatchNumber)] = b
			}
		}
		return out, nil
	})
}

var tiebreakCriteria = []adapter.Criterion{
	{Field: "penaltyPointsCommitted", LowerWins: true},
	{Field: "autoPoints"},
}

func (c *Client) CheckHealth(ctx context.Context) error {
	var resp model.FTCStatusResponse
	if err := c.get(ctx, &resp, "/"); err != nil {
		return err
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "normal") {
		return fmt.Errorf("%s reports status %q", SourceName, resp.Status)
	}
	return nil
}
