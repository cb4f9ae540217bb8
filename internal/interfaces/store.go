package interfaces

import (
	"context"
	"time"

	"EventSync/internal/model"

	"github.com/google/uuid"
)

// EventStore persistence used by the sync engine.
// LoadEventState returns a fresh, unshared arena; Commit persists its ChangeSet atomically.
type EventStore interface {
	LoadEventState(ctx context.Context, eventID uuid.UUID) (*model.EventState, error)
	Commit(ctx context.Context, state *model.EventState) error
	ListActiveEventIDs(ctx context.Context, now time.Time, lead, lag time.Duration) ([]uuid.UUID, error)
}

// Notifier receives milestones from committed passes
type Notifier interface {
	Notify(ctx context.Context, notice model.SyncNotice) error
}
