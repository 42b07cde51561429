package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"venue-pulse-backend/internal/model"
	"venue-pulse-backend/internal/schedule"
	"venue-pulse-backend/internal/store"
)

type createScheduleRequest struct {
	DayOfWeek int            `json:"dayOfWeek"`
	StartTime string         `json:"startTime" binding:"required"`
	EndTime   string         `json:"endTime" binding:"required"`
	Vibe      model.VibeType `json:"vibe" binding:"required"`
	Priority  int            `json:"priority"`
	IsActive  *bool          `json:"isActive"`
}

// CreateSchedule handles POST /api/venues/{venue_id}/schedules.
func (h *Handler) CreateSchedule(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := &model.VibeScheduleRule{
		VenueID:   venueID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Vibe:      req.Vibe,
		Priority:  req.Priority,
		IsActive:  true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	created, err := h.schedules.CreateRule(c.Request.Context(), rule)
	if errors.Is(err, schedule.ErrInvalidRule) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule rule"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetSchedules handles GET /api/venues/{venue_id}/schedules.
func (h *Handler) GetSchedules(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	rules, err := h.schedules.ListRules(c.Request.Context(), venueID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule rules"})
		return
	}
	c.JSON(http.StatusOK, rules)
}

// DeleteSchedule handles DELETE /api/schedules/{schedule_id}.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	ruleID, ok := parseID(c, "schedule_id")
	if !ok {
		return
	}

	err := h.schedules.DeleteRule(c.Request.Context(), ruleID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule rule not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule rule"})
		return
	}
	c.Status(http.StatusNoContent)
}
