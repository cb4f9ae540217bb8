package api

import (
	"context"
	"net/http"

	"EventSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EventImporter registers events from a source
type EventImporter interface {
	ImportEvent(ctx context.Context, source string, season int, code string) (*service.ImportResult, error)
	ImportDistrictEvents(ctx context.Context, source string, season int, district string) (*service.ImportResult, error)
}

type ImportHandler struct {
	importer EventImporter
	logger   *logrus.Logger
}

func NewImportHandler(importer EventImporter, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{importer: importer, logger: logger}
}

type importEventRequest struct {
	Source string `json:"source" binding:"required"`
	Season int    `json:"season" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

type importDistrictRequest struct {
	Source   string `json:"source" binding:"required"`
	Season   int    `json:"season" binding:"required"`
	District string `json:"district" binding:"required"`
}

// ImportEvent POST /api/events/import
func (h *ImportHandler) ImportEvent(c *gin.Context) {
	var req importEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.importer.ImportEvent(c.Request.Context(), req.Source, req.Season, req.Code)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"source": req.Source, "code": req.Code}).Warn("event import failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ImportDistrict POST /api/events/import/district
func (h *ImportHandler) ImportDistrict(c *gin.Context) {
	var req importDistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.importer.ImportDistrictEvents(c.Request.Context(), req.Source, req.Season, req.District)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"source": req.Source, "district": req.District}).Warn("district import failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
