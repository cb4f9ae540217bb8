package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BatchSyncer what the scheduler drives on every tick
type BatchSyncer interface {
	SyncAll(ctx context.Context) (BatchResult, error)
}

// SyncScheduler periodic SyncAll; ticks never overlap
type SyncScheduler struct {
	syncer     BatchSyncer
	interval   time.Duration
	runOnStart bool
	logger     *logrus.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewSyncScheduler(syncer BatchSyncer, interval time.Duration, runOnStart bool, logger *logrus.Logger) *SyncScheduler {
	return &SyncScheduler{
		syncer:     syncer,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Start launches the loop in the background. A zero interval disables scheduling.
func (s *SyncScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn("sync scheduler already running")
		return
	}
	if s.interval <= 0 {
		s.logger.Info("sync scheduler disabled (interval is zero)")
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.logger.WithField("interval", s.interval).Info("sync scheduler started")

	go s.loop(ctx, s.done)
}

func (s *SyncScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	if s.runOnStart {
		s.tick(ctx, "startup")
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tick(ctx, "scheduled")
		case <-ctx.Done():
			s.logger.Info("sync scheduler stopped")
			return
		}
	}
}

func (s *SyncScheduler) tick(ctx context.Context, trigger string) {
	log := s.logger.WithField("trigger", trigger)
	res, err := s.syncer.SyncAll(ctx)
	if err != nil {
		log.WithError(err).Error("scheduled sync failed")
		return
	}
	if !res.Success {
		log.WithFields(logrus.Fields{"synced": res.Synced, "failed": len(res.Failures)}).Warn("scheduled sync finished with failures")
		return
	}
	log.WithField("synced", res.Synced).Debug("scheduled sync finished")
}

// Stop cancels the loop and waits for an in-flight tick to return
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
