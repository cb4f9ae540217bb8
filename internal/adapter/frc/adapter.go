package frc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"EventSync/internal/adapter"
	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// SourceName sync source id of the FRC Events API
const SourceName = "frc_events"

func init() {
	adapter.Register(SourceName, NewFRCClient)
}

type Client struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewFRCClient(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.DataClient {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// Source ========== DataClient ==========
func (c *Client) Source() string {
	return SourceName
}

func (c *Client) endpoint(format string, args ...interface{}) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + fmt.Sprintf(format, args...)
}

func (c *Client) GetEvent(ctx context.Context, season int, code string) (*model.SourceEvent, error) {
	var resp model.FRCEventsResponse
	u := c.endpoint("/%d/events?eventCode=%s", season, url.QueryEscape(code))
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
		return nil, fmt.Errorf("get event %s: %w", code, err)
	}
	for i := range resp.Events {
		if strings.EqualFold(resp.Events[i].Code, code) {
			return convertEvent(&resp.Events[i])
		}
	}
	return nil, &model.SourceDataError{Source: SourceName, Field: "Events", Detail: fmt.Sprintf("event %s not listed", code)}
}

func (c *Client) GetDistrictEvents(ctx context.Context, season int, district string) ([]*model.SourceEvent, error) {
	var resp model.FRCEventsResponse
	u := c.endpoint("/%d/events?districtCode=%s", season, url.QueryEscape(district))
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
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
	c.logger.WithFields(logrus.Fields{"district": district, "count": len(out)}).Info("fetched FRC district events")
	return out, nil
}

func (c *Client) GetTeamsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceTeam, error) {
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return nil, err
	}
	var out []*model.SourceTeam
	for page := 1; ; page++ {
		var resp model.FRCTeamsResponse
		u := c.endpoint("/%d/teams?eventCode=%s&page=%d", season, url.QueryEscape(event.Code), page)
		if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
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

func (c *Client) schedule(ctx context.Context, event *model.Event, level model.TournamentLevel) ([]*model.SourceMatch, error) {
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return nil, err
	}
	loc, err := eventLocation(event)
	if err != nil {
		return nil, err
	}
	var resp model.FRCScheduleResponse
	u := c.endpoint("/%d/schedule/%s?tournamentLevel=%s", season, url.PathEscape(event.Code), level)
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
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
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return nil, err
	}
	loc, err := eventLocation(event)
	if err != nil {
		return nil, err
	}
	var resp model.FRCMatchesResponse
	u := c.endpoint("/%d/matches/%s?tournamentLevel=%s", season, url.PathEscape(event.Code), level)
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
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
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return nil, err
	}
	var resp model.FRCRankingsResponse
	u := c.endpoint("/%d/rankings/%s", season, url.PathEscape(event.Code))
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
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
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return nil, err
	}
	var resp model.FRCAlliancesResponse
	u := c.endpoint("/%d/alliances/%s", season, url.PathEscape(event.Code))
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
		return nil, fmt.Errorf("get alliances: %w", err)
	}
	out := make([]*model.SourceAlliance, 0, len(resp.Alliances))
	for i := range resp.Alliances {
		a, err := convertAlliance(&resp.Alliances[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Client) GetAwardsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceAward, error) {
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return nil, err
	}
	var resp model.FRCAwardsResponse
	u := c.endpoint("/%d/awards/event/%s", season, url.PathEscape(event.Code))
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
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

func (c *Client) GetPlayoffTiebreak(event *model.Event) interfaces.TiebreakResolver {
	season, err := adapter.SeasonOf(SourceName, event)
	if err != nil {
		return adapter.UnsupportedTiebreak{Source: SourceName}
	}
	criteria, ok := seasonTiebreakCriteria[season]
	if !ok {
		return adapter.UnsupportedTiebreak{Source: SourceName, Season: season}
	}
	code := event.Code
	return adapter.NewCriteriaTiebreak(SourceName, criteria, func(ctx context.Context) (map[int]adapter.AllianceBreakdown, error) {
		return c.playoffBreakdowns(ctx, season, code)
	})
}

func (c *Client) playoffBreakdowns(ctx context.Context, season int, code string) (map[int]adapter.AllianceBreakdown, error) {
	var resp model.FRCScoresResponse
	u := c.endpoint("/%d/scores/%s/Playoff", season, url.PathEscape(code))
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, u, &resp); err != nil {
		return nil, err
	}
	out := make(map[int]adapter.AllianceBreakdown, len(resp.MatchScores))
	for _, s := range resp.MatchScores {
		if b, ok := adapter.SplitBreakdowns(s.Alliances); ok {
			out[s.MatchNumber] = b
		}
	}
	return out, nil
}

func (c *Client) CheckHealth(ctx context.Context) error {
	var resp model.FRCStatusResponse
	if err := httpclient.GetJSON(ctx, c.httpClient, SourceName, c.endpoint("/"), &resp); err != nil {
		return err
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "normal") {
		return fmt.Errorf("%s reports status %q", SourceName, resp.Status)
	}
	return nil
}
