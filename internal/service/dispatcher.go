package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BatchResult outcome of syncing many events; one failure never stops the others
type BatchResult struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Synced   int                  `json:"synced"`
	Failures map[uuid.UUID]string `json:"failures,omitempty"`
}

// SyncAll syncs every event inside the active window
func (s *SyncService) SyncAll(ctx context.Context) (BatchResult, error) {
	ids, err := s.store.ListActiveEventIDs(ctx, s.now(), s.cfg.ActiveWindowLead, s.cfg.ActiveWindowLag)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list active events: %w", err)
	}
	if len(ids) == 0 {
		s.logger.Debug("no active events to sync")
		return BatchResult{Success: true}, nil
	}
	return s.SyncEvents(ctx, ids), nil
}

// SyncEvents syncs the given events with bounded parallelism, each in its own arena
func (s *SyncService) SyncEvents(ctx context.Context, ids []uuid.UUID) BatchResult {
	var (
		mu       sync.Mutex
		failures = make(map[uuid.UUID]string)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			// per-event errors are collected, never returned, so siblings keep running
			if err := s.syncIsolated(gctx, id); err != nil {
				mu.Lock()
				failures[id] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	res := BatchResult{Success: len(failures) == 0, Synced: len(ids) - len(failures)}
	if len(failures) > 0 {
		res.Failures = failures
		res.Message = joinFailures(failures)
	}
	s.logger.WithFields(logrus.Fields{
		"events": len(ids),
		"failed": len(failures),
	}).Info("batch sync finished")
	return res
}

// syncIsolated turns a panic in one event's pass into that event's failure
func (s *SyncService) syncIsolated(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"event_id": id,
				"panic":    r,
				"stack":    string(debug.Stack()),
			}).Error("sync pass panicked")
			err = fmt.Errorf("sync panicked: %v", r)
		}
	}()
	return s.SyncEvent(ctx, id)
}

// joinFailures "eventId - message" pairs joined by "; ", ordered by event id
func joinFailures(failures map[uuid.UUID]string) string {
	ids := make([]uuid.UUID, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s - %s", id, failures[id]))
	}
	return strings.Join(parts, "; ")
}
