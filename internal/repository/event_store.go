package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict the event changed underneath a pass since it was loaded
	ErrConflict = errors.New("event modified concurrently")
)

// EventStore gorm persistence for sync passes. Every call opens its own session from the pool,
// so concurrent event syncs never share a transaction.
type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) interfaces.EventStore {
	return &EventStore{db: db}
}

// LoadEventState reads an event with its season and all children into a fresh arena
func (s *EventStore) LoadEventState(ctx context.Context, eventID uuid.UUID) (*model.EventState, error) {
	db := s.db.WithContext(ctx)

	var event model.Event
	if err := db.Preload("Season").Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	state := model.NewEventState(&event)

	if err := db.Where("event_id = ?", eventID).Order("team_number ASC").Find(&state.Teams).Error; err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	if err := db.Where("event_id = ?", eventID).
		Order("level ASC, match_number ASC, play_number ASC").
		Find(&state.Matches).Error; err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if err := db.Where("event_id = ?", eventID).Order("number ASC, name ASC").Find(&state.Alliances).Error; err != nil {
		return nil, fmt.Errorf("load alliances: %w", err)
	}
	if err := db.Where("event_id = ?", eventID).Order("rank ASC").Find(&state.Rankings).Error; err != nil {
		return nil, fmt.Errorf("load rankings: %w", err)
	}
	return state, nil
}

// Commit persists the arena's change set in one transaction and clears it on success
func (s *EventStore) Commit(ctx context.Context, state *model.EventState) error {
	if !state.HasChanges() {
		return nil
	}
	cs := state.Changes()
	eventID := state.Event.ID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. event row: only the sync-owned columns, and only if no other pass moved it meanwhile
		if cs.EventChanged {
			res := tx.Model(&model.Event{}).
				Where("id = ? AND status = ?", eventID, state.BaseStatus()).
				Updates(map[string]interface{}{
					"status":              state.Event.Status,
					"winning_alliance_id": state.Event.WinningAllianceID,
					"completed_at":        state.Event.CompletedAt,
					"updated_at":          time.Now().UTC(),
				})
			if res.Error != nil {
				return fmt.Errorf("save event: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: event %s is no longer %s", ErrConflict, eventID, state.BaseStatus())
			}
		}

		// 2. teams
		if len(cs.DeletedTeams) > 0 {
			if err := tx.Where("id IN ?", cs.DeletedTeams).Delete(&model.EventTeam{}).Error; err != nil {
				return fmt.Errorf("delete teams: %w", err)
			}
		}
		if len(cs.NewTeams) > 0 {
			if err := tx.Create(&cs.NewTeams).Error; err != nil {
				return fmt.Errorf("create teams: %w", err)
			}
		}
		for _, t := range cs.ChangedTeams {
			if err := tx.Save(t).Error; err != nil {
				return fmt.Errorf("update team %d: %w", t.TeamNumber, err)
			}
		}

		// 3. alliances: deletions first so a renamed roster can reuse its name
		if len(cs.DeletedAlliances) > 0 {
			if err := tx.Where("id IN ?", cs.DeletedAlliances).Delete(&model.Alliance{}).Error; err != nil {
				return fmt.Errorf("delete alliances: %w", err)
			}
		}
		if len(cs.NewAlliances) > 0 {
			if err := tx.Create(&cs.NewAlliances).Error; err != nil {
				return fmt.Errorf("create alliances: %w", err)
			}
		}
		for _, a := range cs.ChangedAlliances {
			if err := tx.Save(a).Error; err != nil {
				return fmt.Errorf("update alliance %s: %w", a.Name, err)
			}
		}

		// 4. match plays; discarded plays are updated, never deleted
		if len(cs.NewMatches) > 0 {
			if err := tx.Create(&cs.NewMatches).Error; err != nil {
				return fmt.Errorf("create matches: %w", err)
			}
		}
		for _, m := range cs.ChangedMatches {
			if err := tx.Save(m).Error; err != nil {
				return fmt.Errorf("update match %s %d play %d: %w", m.Level, m.MatchNumber, m.PlayNumber, err)
			}
		}

		// 5. rankings are replaced wholesale
		if cs.RankingsReplaced {
			if err := tx.Where("event_id = ?", eventID).Delete(&model.EventRanking{}).Error; err != nil {
				return fmt.Errorf("delete rankings: %w", err)
			}
			if len(cs.Rankings) > 0 {
				if err := tx.Create(&cs.Rankings).Error; err != nil {
					return fmt.Errorf("create rankings: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit event %s: %w", eventID, err)
	}
	state.ResetChanges()
	return nil
}

// ListActiveEventIDs events inside [start-lead, end+lag] that still have lifecycle left
func (s *EventStore) ListActiveEventIDs(ctx context.Context, now time.Time, lead, lag time.Duration) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&model.Event{}).
		Where("start_time <= ? AND end_time >= ?", now.Add(lead).UTC(), now.Add(-lag).UTC()).
		Where("status <> ?", model.EventStatusCompleted).
		Order("start_time ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	return ids, nil
}
