package service

import (
	"context"
	"errors"
	"fmt"

	"EventSync/internal/model"
	"EventSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventQueryService read-side views of synced events
type EventQueryService struct {
	repo   repository.EventRepository
	logger *logrus.Logger
}

func NewEventQueryService(repo repository.EventRepository, logger *logrus.Logger) *EventQueryService {
	return &EventQueryService{repo: repo, logger: logger}
}

// EventSummary list item
type EventSummary struct {
	ID         uuid.UUID         `json:"id"`
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Season     int               `json:"season"`
	Source     string            `json:"source"`
	District   string            `json:"district,omitempty"`
	City       string            `json:"city,omitempty"`
	TimeZone   string            `json:"time_zone"`
	Status     model.EventStatus `json:"status"`
	StartTime  int64             `json:"start_time"` // unix millis
	EndTime    int64             `json:"end_time"`
	Completed  bool              `json:"completed"`
	WinnerID   *uuid.UUID        `json:"winning_alliance_id,omitempty"`
	WinnerName string            `json:"winning_alliance,omitempty"`
}

type EventListResult struct {
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int64           `json:"total"`
	List     []*EventSummary `json:"list"`
}

// EventDetail summary plus per-level play counts
type EventDetail struct {
	Event             *EventSummary     `json:"event"`
	Teams             int               `json:"teams"`
	QualPlays         int               `json:"qual_plays"`
	PlayoffPlays      int               `json:"playoff_plays"`
	DiscardedPlays    int               `json:"discarded_plays"`
	Alliances         []*model.Alliance `json:"alliances"`
	CompletedAtMillis int64             `json:"completed_at,omitempty"`
}

func (s *EventQueryService) ListEvents(ctx context.Context, filter repository.EventFilter, page, pageSize int) (*EventListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	events, total, err := s.repo.ListEvents(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	list := make([]*EventSummary, 0, len(events))
	for _, e := range events {
		list = append(list, summarize(e, nil))
	}
	return &EventListResult{Page: page, PageSize: pageSize, Total: total, List: list}, nil
}

func (s *EventQueryService) GetEventDetail(ctx context.Context, id uuid.UUID) (*EventDetail, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	alliances, err := s.repo.ListAlliances(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, err := s.repo.ListMatches(ctx, id, true)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.ListTeams(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &EventDetail{
		Event:     summarize(event, alliances),
		Teams:     len(teams),
		Alliances: alliances,
	}
	for _, m := range matches {
		switch {
		case m.IsDiscarded:
			detail.DiscardedPlays++
		case m.Level == model.LevelQualification:
			detail.QualPlays++
		case m.Level == model.LevelPlayoff:
			detail.PlayoffPlays++
		}
	}
	if event.CompletedAt != nil {
		detail.CompletedAtMillis = event.CompletedAt.UnixMilli()
	}
	return detail, nil
}

func (s *EventQueryService) ListMatches(ctx context.Context, id uuid.UUID, includeDiscarded bool) ([]*model.Match, error) {
	if _, err := s.getEvent(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListMatches(ctx, id, includeDiscarded)
}

func (s *EventQueryService) ListAlliances(ctx context.Context, id uuid.UUID) ([]*model.Alliance, error) {
	if _, err := s.getEvent(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListAlliances(ctx, id)
}

func (s *EventQueryService) ListRankings(ctx context.Context, id uuid.UUID) ([]*model.EventRanking, error) {
	if _, err := s.getEvent(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListRankings(ctx, id)
}

func (s *EventQueryService) ListTeams(ctx context.Context, id uuid.UUID) ([]*model.EventTeam, error) {
	if _, err := s.getEvent(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListTeams(ctx, id)
}

func (s *EventQueryService) getEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return event, err
}

func summarize(e *model.Event, alliances []*model.Alliance) *EventSummary {
	out := &EventSummary{
		ID:        e.ID,
		Code:      e.Code,
		Name:      e.Name,
		Source:    e.SyncSource,
		District:  e.DistrictCode,
		City:      e.City,
		TimeZone:  e.TimeZone,
		Status:    e.Status,
		StartTime: e.StartTime.UnixMilli(),
		EndTime:   e.EndTime.UnixMilli(),
		Completed: e.Status == model.EventStatusCompleted,
		WinnerID:  e.WinningAllianceID,
	}
	if e.Season != nil {
		out.Season = e.Season.Year
	}
	if e.WinningAllianceID != nil {
		for _, a := range alliances {
			if a.ID == *e.WinningAllianceID {
				out.WinnerName = a.Name
			}
		}
	}
	return out
}
