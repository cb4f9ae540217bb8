package interfaces

import (
	"context"

	"EventSync/internal/config"
	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

// DataClient normalized fetch surface every external event source implements.
// Adapters flatten alliance rosters, convert wall-clock times with the event's zone,
// and return *model.SourceDataError / *model.TransportError on failure.
type DataClient interface {
	Source() string
	GetEvent(ctx context.Context, season int, code string) (*model.SourceEvent, error)
	GetDistrictEvents(ctx context.Context, season int, district string) ([]*model.SourceEvent, error)
	GetTeamsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceTeam, error)
	GetQualScheduleForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error)
	GetQualResultsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error)
	GetQualRankingsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceRanking, error)
	GetAlliancesForEvent(ctx context.Context, event *model.Event) ([]*model.SourceAlliance, error)
	GetPlayoffScheduleForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error)
	GetPlayoffResultsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceMatch, error)
	// GetPlayoffTiebreak resolver bound to one event; callers keep it for one pass only
	GetPlayoffTiebreak(event *model.Event) TiebreakResolver
	GetAwardsForEvent(ctx context.Context, event *model.Event) ([]*model.SourceAward, error)
	CheckHealth(ctx context.Context) error
}

// TiebreakResolver decides a playoff play whose raw result is ambiguous
type TiebreakResolver interface {
	Resolve(ctx context.Context, match *model.Match) (model.MatchWinner, error)
}

// Factory builds a data client from its source configuration
type Factory func(cfg *config.SourceConfig, logger *logrus.Logger) DataClient

// ClientProvider resolves the data client of a sync source
type ClientProvider interface {
	Get(source string) (DataClient, error)
	Sources() []string
}
