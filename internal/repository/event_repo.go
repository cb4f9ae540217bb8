package repository

import (
	"context"
	"errors"
	"fmt"

	"EventSync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFilter list filter for events
type EventFilter struct {
	Status string // lifecycle status name
	Source string // sync source id
	Season int    // season year
}

// EventRepository read queries and event ingestion (not used by sync passes)
type EventRepository interface {
	// ListEvents paged events matching the filter, ordered by start time
	ListEvents(ctx context.Context, filter EventFilter, page, pageSize int) ([]*model.Event, int64, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error)
	// ListMatches plays ordered by level, match and play number; discarded plays only on request
	ListMatches(ctx context.Context, eventID uuid.UUID, includeDiscarded bool) ([]*model.Match, error)
	ListAlliances(ctx context.Context, eventID uuid.UUID) ([]*model.Alliance, error)
	ListRankings(ctx context.Context, eventID uuid.UUID) ([]*model.EventRanking, error)
	ListTeams(ctx context.Context, eventID uuid.UUID) ([]*model.EventTeam, error)
	// EnsureSeason returns the (source, year) season, creating it when absent
	EnsureSeason(ctx context.Context, source string, year int) (*model.Season, error)
	// UpsertEvent creates a NotStarted event or refreshes the descriptive fields of an existing one
	UpsertEvent(ctx context.Context, season *model.Season, src *model.SourceEvent) (*model.Event, bool, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) ListEvents(ctx context.Context, filter EventFilter, page, pageSize int) ([]*model.Event, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	db := r.db.WithContext(ctx).Model(&model.Event{})
	if filter.Status != "" {
		db = db.Where("events.status = ?", filter.Status)
	}
	if filter.Source != "" {
		db = db.Where("events.sync_source = ?", filter.Source)
	}
	if filter.Season > 0 {
		db = db.Joins("JOIN seasons ON seasons.id = events.season_id").
			Where("seasons.year = ?", filter.Season)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []*model.Event
	if err := db.
		Preload("Season").
		Order("events.start_time ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).Preload("Season").Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) ListMatches(ctx context.Context, eventID uuid.UUID, includeDiscarded bool) ([]*model.Match, error) {
	db := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if !includeDiscarded {
		db = db.Where("is_discarded = ?", false)
	}
	var matches []*model.Match
	if err := db.Order("level DESC, match_number ASC, play_number ASC").Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *eventRepository) ListAlliances(ctx context.Context, eventID uuid.UUID) ([]*model.Alliance, error) {
	var alliances []*model.Alliance
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("number ASC").Find(&alliances).Error; err != nil {
		return nil, err
	}
	return alliances, nil
}

func (r *eventRepository) ListRankings(ctx context.Context, eventID uuid.UUID) ([]*model.EventRanking, error) {
	var rankings []*model.EventRanking
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("rank ASC").Find(&rankings).Error; err != nil {
		return nil, err
	}
	return rankings, nil
}

func (r *eventRepository) ListTeams(ctx context.Context, eventID uuid.UUID) ([]*model.EventTeam, error) {
	var teams []*model.EventTeam
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("team_number ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *eventRepository) EnsureSeason(ctx context.Context, source string, year int) (*model.Season, error) {
	season := &model.Season{
		ID:     uuid.New(),
		Source: source,
		Year:   year,
		Name:   fmt.Sprintf("%s %d", source, year),
	}
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "year"}},
		DoNothing: true,
	}).Create(season).Error; err != nil {
		return nil, fmt.Errorf("create season: %w", err)
	}
	// the insert is a no-op when the season already exists; read back the stored row
	var stored model.Season
	if err := db.Where("source = ? AND year = ?", source, year).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load season: %w", err)
	}
	return &stored, nil
}

func (r *eventRepository) UpsertEvent(ctx context.Context, season *model.Season, src *model.SourceEvent) (*model.Event, bool, error) {
	db := r.db.WithContext(ctx)

	var existing model.Event
	err := db.Where("season_id = ? AND code = ?", season.ID, src.Code).First(&existing).Error
	switch {
	case err == nil:
		existing.Name = src.Name
		existing.DistrictCode = src.DistrictCode
		existing.Venue = src.Venue
		existing.City = src.City
		existing.TimeZone = src.TimeZone
		existing.StartTime = src.StartTime
		existing.EndTime = src.EndTime
		if err := db.Model(&existing).Select("name", "district_code", "venue", "city", "time_zone", "start_time", "end_time").
			Updates(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("update event %s: %w", src.Code, err)
		}
		existing.Season = season
		return &existing, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		event := &model.Event{
			ID:           uuid.New(),
			SeasonID:     season.ID,
			Code:         src.Code,
			Name:         src.Name,
			DistrictCode: src.DistrictCode,
			Venue:        src.Venue,
			City:         src.City,
			TimeZone:     src.TimeZone,
			StartTime:    src.StartTime,
			EndTime:      src.EndTime,
			SyncSource:   season.Source,
			Status:       model.EventStatusNotStarted,
		}
		if err := db.Create(event).Error; err != nil {
			return nil, false, fmt.Errorf("create event %s: %w", src.Code, err)
		}
		event.Season = season
		return event, true, nil

	default:
		return nil, false, fmt.Errorf("find event %s: %w", src.Code, err)
	}
}
