package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAutomationStatus handles GET /api/automation/status.
func (h *Handler) GetAutomationStatus(c *gin.Context) {
	status, err := h.automation.Status(c.Request.Context(), time.Now().UTC())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch automation status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// TriggerVibeTick handles POST /api/automation/vibe-tick: a manual run
// of the vibe re-evaluation outside the fixed interval.
func (h *Handler) TriggerVibeTick(c *gin.Context) {
	updated, err := h.automation.RunVibeTick(c.Request.Context(), time.Now().UTC())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Vibe tick failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vibe update triggered", "updated": updated})
}

// TriggerBusynessTick handles POST /api/automation/busyness-tick.
func (h *Handler) TriggerBusynessTick(c *gin.Context) {
	updated, err := h.automation.RunBusynessTick(c.Request.Context(), time.Now().UTC())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Busyness tick failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Busyness simulation triggered", "updated": updated})
}

type scenarioRequest struct {
	Scenario string `json:"scenario" binding:"required"`
}

// TriggerScenario handles POST /api/automation/scenario: one-shot bulk
// live-state presets for demos, bypassing the schedule.
func (h *Handler) TriggerScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affected, err := h.automation.ApplyScenarioPreset(c.Request.Context(), req.Scenario, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scenario applied", "affected": affected})
}
