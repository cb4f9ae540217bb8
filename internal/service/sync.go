package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/reconcile"
	"EventSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SyncResult outcome of a sync trigger
type SyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SyncService drives step passes over events and persists each pass once
type SyncService struct {
	store      interfaces.EventStore
	clients    interfaces.ClientProvider
	steps      *StepRegistry
	notifier   interfaces.Notifier
	metrics    *Metrics
	logger     *logrus.Logger
	cfg        config.SyncConfig
	reconciler *reconcile.MatchReconciler
	locks      *eventLocks
	now        func() time.Time
}

// Option tunes a SyncService
type Option func(*SyncService)

func WithNotifier(n interfaces.Notifier) Option { return func(s *SyncService) { s.notifier = n } }

func WithMetrics(m *Metrics) Option { return func(s *SyncService) { s.metrics = m } }

func WithSteps(r *StepRegistry) Option { return func(s *SyncService) { s.steps = r } }

func WithClock(now func() time.Time) Option { return func(s *SyncService) { s.now = now } }

func NewSyncService(store interfaces.EventStore, clients interfaces.ClientProvider, cfg config.SyncConfig, logger *logrus.Logger, opts ...Option) *SyncService {
	s := &SyncService{
		store:      store,
		clients:    clients,
		steps:      DefaultStepRegistry(),
		logger:     logger,
		cfg:        cfg,
		reconciler: reconcile.NewMatchReconciler(cfg.ReplayTolerance),
		locks:      newEventLocks(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.FinalsRequiredWins <= 0 {
		s.cfg.FinalsRequiredWins = reconcile.DefaultFinalsRequiredWins
	}
	if s.cfg.Concurrency <= 0 {
		s.cfg.Concurrency = config.DefaultConcurrency
	}
	return s
}

// Steps registry in use (read-only)
func (s *SyncService) Steps() []Step {
	return s.steps.Steps()
}

// ResultOf maps a sync error to the reported result
func ResultOf(err error) SyncResult {
	if err != nil {
		return SyncResult{Success: false, Message: err.Error()}
	}
	return SyncResult{Success: true}
}

// RunSync syncs one event and reports the outcome as a result value
func (s *SyncService) RunSync(ctx context.Context, eventID uuid.UUID) SyncResult {
	return ResultOf(s.SyncEvent(ctx, eventID))
}

// SyncEvent runs one pass over every applicable step until nothing else applies, then commits once
func (s *SyncService) SyncEvent(ctx context.Context, eventID uuid.UUID) error {
	return s.pass(ctx, eventID, nil)
}

// RunStep force-runs one named step regardless of the event's status, with the same commit discipline
func (s *SyncService) RunStep(ctx context.Context, eventID uuid.UUID, name string) error {
	step, ok := s.steps.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, name)
	}
	return s.pass(ctx, eventID, &step)
}

func (s *SyncService) pass(ctx context.Context, eventID uuid.UUID, forced *Step) error {
	// overlapping triggers for one event run back to back, each on a fresh load
	unlock := s.locks.lock(eventID)
	defer unlock()
	started := s.now()

	// 1. load an isolated arena for this event
	state, err := s.store.LoadEventState(ctx, eventID)
	if err != nil {
		s.metrics.observePass(passFailed, s.now().Sub(started))
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return fmt.Errorf("load event %s: %w", eventID, err)
	}
	event := state.Event
	log := s.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_code": event.Code,
		"source":     event.SyncSource,
	})

	// 2. preconditions; nothing has run yet
	client, err := s.clientFor(event)
	if err != nil {
		s.metrics.observePass(passFailed, s.now().Sub(started))
		log.WithError(err).Warn("sync precondition failed")
		return err
	}

	sc := &StepContext{
		State:              state,
		Client:             client,
		Reconciler:         s.reconciler,
		FinalsRequiredWins: s.cfg.FinalsRequiredWins,
		Metrics:            s.metrics,
		Now:                s.now,
	}
	startStatus := event.Status

	// 3. run steps
	if forced != nil {
		if err := s.runStep(ctx, sc, *forced, log); err != nil {
			s.metrics.observePass(passFailed, s.now().Sub(started))
			return err
		}
	} else {
		executed := make(map[string]bool)
		for {
			progressed := false
			for _, step := range s.steps.Steps() {
				if executed[step.Name] || !step.AppliesTo(event.Status) {
					continue
				}
				executed[step.Name] = true
				progressed = true
				if err := s.runStep(ctx, sc, step, log); err != nil {
					s.metrics.observePass(passFailed, s.now().Sub(started))
					return err
				}
			}
			if !progressed {
				break
			}
		}
	}

	// 4. commit once
	if !state.HasChanges() {
		s.metrics.observePass(passUnchanged, s.now().Sub(started))
		log.WithField("status", event.Status).Debug("sync pass made no changes")
		return nil
	}
	changes := state.Changes()
	if err := s.store.Commit(ctx, state); err != nil {
		s.metrics.observePass(passFailed, s.now().Sub(started))
		log.WithError(err).Error("sync commit failed")
		return fmt.Errorf("commit event %s: %w", event.ID, err)
	}
	s.metrics.observePass(passCommitted, s.now().Sub(started))
	s.metrics.addReplays(len(sc.Replays()))
	log.WithFields(logrus.Fields{
		"from":      startStatus,
		"status":    event.Status,
		"mutations": changes.Count(),
		"replays":   len(sc.Replays()),
	}).Info("sync pass committed")

	// 5. milestones, only once durable
	s.notify(ctx, state, startStatus, sc.Replays(), log)
	return nil
}

func (s *SyncService) clientFor(event *model.Event) (interfaces.DataClient, error) {
	if event.Season == nil || event.Season.Year <= 0 {
		return nil, preconditionf("event %s has no season data", event.ID)
	}
	if event.SyncSource == "" {
		return nil, preconditionf("event %s has no sync source", event.ID)
	}
	client, err := s.clients.Get(event.SyncSource)
	if err != nil {
		return nil, preconditionf("%v", err)
	}
	return client, nil
}

func (s *SyncService) runStep(ctx context.Context, sc *StepContext, step Step, log *logrus.Entry) error {
	stepLog := log.WithField("step", step.Name)
	sc.Logger = stepLog
	before := sc.State.Event.Status

	err := step.Run(ctx, sc)
	s.metrics.observeStep(step.Name, err)
	if err != nil {
		entry := stepLog.WithError(err).WithField("status", sc.State.Event.Status)
		if errors.Is(err, reconcile.ErrAmbiguousFinalsWinner) {
			entry = entry.WithField("ambiguous_finals", true)
		}
		entry.Error("sync step failed, pass abandoned")
		return &StepError{Step: step.Name, EventID: sc.State.Event.ID, Err: err}
	}
	if after := sc.State.Event.Status; after != before {
		stepLog.WithFields(logrus.Fields{"from": before, "to": after}).Info("event status advanced")
	} else {
		stepLog.Debug("step ran")
	}
	return nil
}

func (s *SyncService) notify(ctx context.Context, state *model.EventState, from model.EventStatus, replays []*model.Match, log *logrus.Entry) {
	if s.notifier == nil {
		return
	}
	event := state.Event
	var notices []model.SyncNotice
	if event.Status != from {
		notices = append(notices, model.SyncNotice{
			Kind:      model.NoticeStatusChanged,
			EventID:   event.ID,
			EventCode: event.Code,
			Message:   fmt.Sprintf("%s: %s -> %s", event.Code, from, event.Status),
		})
		if event.Status == model.EventStatusWinnerDetermined && event.WinningAllianceID != nil {
			name := event.WinningAllianceID.String()
			if a := state.AllianceByID(*event.WinningAllianceID); a != nil {
				name = a.Name
			}
			notices = append(notices, model.SyncNotice{
				Kind:      model.NoticeEventWinner,
				EventID:   event.ID,
				EventCode: event.Code,
				Message:   fmt.Sprintf("%s: %s won the event", event.Code, name),
			})
		}
	}
	for _, p := range replays {
		notices = append(notices, model.SyncNotice{
			Kind:      model.NoticeMatchReplayed,
			EventID:   event.ID,
			EventCode: event.Code,
			Message:   fmt.Sprintf("%s: %s match %d replayed (play %d)", event.Code, p.Level, p.MatchNumber, p.PlayNumber),
		})
	}
	for _, n := range notices {
		if err := s.notifier.Notify(ctx, n); err != nil {
			log.WithError(err).WithField("notice", n.Kind).Warn("notification failed")
		}
	}
}
