package handlers

import (
	"net/http"
	"time"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AnalyticsHandler struct {
	db        *gorm.DB
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(db *gorm.DB, analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{db: db, analytics: analytics}
}

func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_field", "message": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

func (h *AnalyticsHandler) StatusBreakdown(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	dateFrom, ok := queryDate(c, "date_from")
	if !ok {
		return
	}
	dateTo, ok := queryDate(c, "date_to")
	if !ok {
		return
	}

	breakdown, err := h.analytics.StatusBreakdown(h.db, caller, dateFrom, dateTo)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *AnalyticsHandler) TopicBreakdown(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	breakdown, err := h.analytics.TopicBreakdown(h.db, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *AnalyticsHandler) AssigneeBreakdown(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	includeUnassigned := c.DefaultQuery("include_unassigned", "true") != "false"

	breakdown, err := h.analytics.AssigneeBreakdown(h.db, caller, includeUnassigned)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	summary, err := h.analytics.Summary(h.db, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) Burndown(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	dateFrom, ok := queryDate(c, "date_from")
	if !ok {
		return
	}
	dateTo, ok := queryDate(c, "date_to")
	if !ok {
		return
	}

	points, err := h.analytics.Burndown(h.db, caller, dateFrom, dateTo)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": points})
}

func (h *AnalyticsHandler) LeadTime(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	report, err := h.analytics.LeadTime(h.db, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
