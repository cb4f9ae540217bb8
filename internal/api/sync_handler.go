package api

import (
	"context"
	"errors"
	"net/http"

	"EventSync/internal/model"
	"EventSync/internal/repository"
	"EventSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventSyncer sync operations exposed over HTTP
type EventSyncer interface {
	SyncEvent(ctx context.Context, eventID uuid.UUID) error
	SyncAll(ctx context.Context) (service.BatchResult, error)
	RunStep(ctx context.Context, eventID uuid.UUID, name string) error
	Steps() []service.Step
}

type SyncHandler struct {
	syncer EventSyncer
	logger *logrus.Logger
}

func NewSyncHandler(syncer EventSyncer, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{syncer: syncer, logger: logger}
}

// SyncEventHandler runs one sync pass for an event
// @Summary Sync one event
// @Param event_id path string true "event id (uuid)"
// @Success 200 {object} service.SyncResult
// @Failure 400,404,500,502 {object} service.SyncResult
// @Router /sync/events/{event_id} [post]
func (h *SyncHandler) SyncEventHandler(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	err := h.syncer.SyncEvent(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("event_id", id).Warn("event sync failed")
		c.JSON(statusFor(err), service.ResultOf(err))
		return
	}
	c.JSON(http.StatusOK, service.ResultOf(nil))
}

// SyncAllHandler syncs every active event; per-event failures are listed in message
// @Router /sync/events [post]
func (h *SyncHandler) SyncAllHandler(c *gin.Context) {
	res, err := h.syncer.SyncAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("batch sync failed")
		c.JSON(http.StatusInternalServerError, service.ResultOf(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// RunStepHandler force-runs one step regardless of the event's status
// @Router /sync/events/{event_id}/steps/{step} [post]
func (h *SyncHandler) RunStepHandler(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	step := c.Param("step")
	err := h.syncer.RunStep(c.Request.Context(), id, step)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"event_id": id, "step": step}).Warn("forced step failed")
		c.JSON(statusFor(err), service.ResultOf(err))
		return
	}
	c.JSON(http.StatusOK, service.ResultOf(nil))
}

type stepInfo struct {
	Name     string              `json:"name"`
	Statuses []model.EventStatus `json:"statuses"`
}

// ListStepsHandler registered steps in execution order
// @Router /sync/steps [get]
func (h *SyncHandler) ListStepsHandler(c *gin.Context) {
	steps := h.syncer.Steps()
	out := make([]stepInfo, 0, len(steps))
	for _, s := range steps {
		out = append(out, stepInfo{Name: s.Name, Statuses: s.Statuses})
	}
	c.JSON(http.StatusOK, gin.H{"steps": out})
}

func eventIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id must be a uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// statusFor HTTP status of a service error
func statusFor(err error) int {
	var transport *model.TransportError
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPrecondition), errors.Is(err, service.ErrUnknownStep):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
