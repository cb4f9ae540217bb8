package api

import (
	"net/http"
	"strconv"

	"EventSync/internal/repository"
	"EventSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EventHandler read endpoints over synced events
type EventHandler struct {
	queries *service.EventQueryService
	logger  *logrus.Logger
}

func NewEventHandler(queries *service.EventQueryService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{queries: queries, logger: logger}
}

// ListEvents event list
// GET /api/events?status=QualsInProgress&source=frc_events&season=2024&page=1&page_size=20
func (h *EventHandler) ListEvents(c *gin.Context) {
	season, _ := strconv.Atoi(c.Query("season"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.EventFilter{
		Status: c.Query("status"),
		Source: c.Query("source"),
		Season: season,
	}
	result, err := h.queries.ListEvents(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListEvents failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetEventDetail GET /api/events/:event_id
func (h *EventHandler) GetEventDetail(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	detail, err := h.queries.GetEventDetail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "GetEventDetail", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListMatches GET /api/events/:event_id/matches?include_discarded=true
func (h *EventHandler) ListMatches(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	includeDiscarded, _ := strconv.ParseBool(c.DefaultQuery("include_discarded", "false"))
	matches, err := h.queries.ListMatches(c.Request.Context(), id, includeDiscarded)
	if err != nil {
		h.fail(c, "ListMatches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": matches, "total": len(matches)})
}

// ListAlliances GET /api/events/:event_id/alliances
func (h *EventHandler) ListAlliances(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	alliances, err := h.queries.ListAlliances(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "ListAlliances", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": alliances, "total": len(alliances)})
}

// ListRankings GET /api/events/:event_id/rankings
func (h *EventHandler) ListRankings(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	rankings, err := h.queries.ListRankings(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "ListRankings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": rankings, "total": len(rankings)})
}

// ListTeams GET /api/events/:event_id/teams
func (h *EventHandler) ListTeams(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	teams, err := h.queries.ListTeams(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "ListTeams", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": teams, "total": len(teams)})
}

func (h *EventHandler) fail(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Errorf("%s failed", op)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
