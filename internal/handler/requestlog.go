package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reqtrail/reqtrail/internal/model"
	"github.com/reqtrail/reqtrail/internal/pkg/apperrors"
	"github.com/reqtrail/reqtrail/internal/service"
)

type RequestLogHandler struct {
	logs    *service.RequestLogService
	cleanup *service.CleanupService
}

func NewRequestLogHandler(logs *service.RequestLogService, cleanup *service.CleanupService) *RequestLogHandler {
	return &RequestLogHandler{logs: logs, cleanup: cleanup}
}

// List returns a page of log records, newest first.
// GET /admin/request-logs?page=&limit=
func (h *RequestLogHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.logs.GetRequestLogs(c.Request.Context(), page, limit)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, "failed to list request logs", err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListByUser returns one user's records.
// GET /admin/request-logs/user?userId=&page=&limit=
func (h *RequestLogHandler) ListByUser(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.Error(apperrors.NewInvalidRequest("userId is required"))
		return
	}
	page, limit := pageParams(c)
	result, err := h.logs.GetUserRequestLogs(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, "failed to list user request logs", err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Statistics returns aggregate counts over all stored records.
// GET /admin/request-logs/statistics
func (h *RequestLogHandler) Statistics(c *gin.Context) {
	stats, err := h.logs.GetStatistics(c.Request.Context())
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, "failed to compute statistics", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CleanupStats reports retention configuration and the next scheduled run.
// GET /admin/request-logs/cleanup/stats
func (h *RequestLogHandler) CleanupStats(c *gin.Context) {
	stats, err := h.cleanup.Stats(c.Request.Context())
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, "failed to compute cleanup stats", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TriggerCleanup runs a cleanup immediately. Always reports success with a
// count; a failed run shows up as zero deletions, never as an error.
// POST /admin/request-logs/cleanup/trigger
func (h *RequestLogHandler) TriggerCleanup(c *gin.Context) {
	var req model.CleanupTriggerRequest
	// Empty body is fine, the retention default applies.
	_ = c.ShouldBindJSON(&req)

	hours := req.Hours
	if hours <= 0 {
		hours = h.cleanup.RetentionHours()
	}

	deleted := h.cleanup.RunNow(c.Request.Context(), hours)
	c.JSON(http.StatusOK, model.CleanupTriggerResponse{
		DeletedCount: deleted,
		Message:      service.TriggerMessage(deleted, hours),
	})
}

func pageParams(c *gin.Context) (int, int) {
	page := 1
	limit := 50
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return page, limit
}
