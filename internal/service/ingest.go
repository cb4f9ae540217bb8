package service

import (
	"context"
	"fmt"
	"strings"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ImportResult events created or refreshed by an import
type ImportResult struct {
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Events  []*model.Event `json:"events"`
}

// IngestService registers events from an external source so the sync engine can pick them up
type IngestService struct {
	repo    repository.EventRepository
	clients interfaces.ClientProvider
	logger  *logrus.Logger
}

func NewIngestService(repo repository.EventRepository, clients interfaces.ClientProvider, logger *logrus.Logger) *IngestService {
	return &IngestService{repo: repo, clients: clients, logger: logger}
}

// ImportEvent creates (or refreshes) one event in NotStarted; idempotent on (season, code)
func (s *IngestService) ImportEvent(ctx context.Context, source string, season int, code string) (*ImportResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, preconditionf("event code is required")
	}
	client, err := s.client(source, season)
	if err != nil {
		return nil, err
	}
	src, err := client.GetEvent(ctx, season, code)
	if err != nil {
		return nil, fmt.Errorf("fetch event %s/%d/%s: %w", source, season, code, err)
	}
	return s.store(ctx, source, season, []*model.SourceEvent{src})
}

// ImportDistrictEvents imports every event of a district in one season
func (s *IngestService) ImportDistrictEvents(ctx context.Context, source string, season int, district string) (*ImportResult, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return nil, preconditionf("district code is required")
	}
	client, err := s.client(source, season)
	if err != nil {
		return nil, err
	}
	events, err := client.GetDistrictEvents(ctx, season, district)
	if err != nil {
		return nil, fmt.Errorf("fetch district %s/%d/%s: %w", source, season, district, err)
	}
	return s.store(ctx, source, season, events)
}

func (s *IngestService) client(source string, season int) (interfaces.DataClient, error) {
	if season <= 0 {
		return nil, preconditionf("season must be a positive year, got %d", season)
	}
	client, err := s.clients.Get(source)
	if err != nil {
		return nil, preconditionf("%v", err)
	}
	return client, nil
}

func (s *IngestService) store(ctx context.Context, source string, year int, events []*model.SourceEvent) (*ImportResult, error) {
	season, err := s.repo.EnsureSeason(ctx, source, year)
	if err != nil {
		return nil, err
	}
	res := &ImportResult{Events: make([]*model.Event, 0, len(events))}
	for _, src := range events {
		event, created, err := s.repo.UpsertEvent(ctx, season, src)
		if err != nil {
			return nil, err
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
		res.Events = append(res.Events, event)
	}
	s.logger.WithFields(logrus.Fields{
		"source":  source,
		"season":  year,
		"created": res.Created,
		"updated": res.Updated,
	}).Info("events imported")
	return res, nil
}
