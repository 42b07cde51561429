package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"venue-pulse-backend/internal/model"
	"venue-pulse-backend/internal/store"
)

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return 0, false
	}
	return id, true
}

// GetCities handles GET /api/cities.
func (h *Handler) GetCities(c *gin.Context) {
	var cities []model.City
	if err := h.store.DB().Find(&cities).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cities"})
		return
	}
	c.JSON(http.StatusOK, cities)
}

// GetVenues handles GET /api/venues: all venues with live state embedded.
func (h *Handler) GetVenues(c *gin.Context) {
	venues, err := h.store.ListVenues(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve venues"})
		return
	}
	c.JSON(http.StatusOK, venues)
}

// GetVenue handles GET /api/venues/{venue_id}.
func (h *Handler) GetVenue(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	venue, err := h.store.GetVenue(c.Request.Context(), venueID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve venue"})
		return
	}
	c.JSON(http.StatusOK, venue)
}

// GetLiveState handles GET /api/venues/{venue_id}/live.
func (h *Handler) GetLiveState(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	state, err := h.store.GetLiveState(c.Request.Context(), venueID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Live state not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve live state"})
		return
	}
	c.JSON(http.StatusOK, state)
}

type overrideLiveStateRequest struct {
	Busyness *model.BusynessLevel `json:"busyness"`
	Vibe     *model.VibeType      `json:"vibe"`
}

// OverrideLiveState handles PATCH /api/venues/{venue_id}/live: the
// manual override path that bypasses automation. Each provided field is
// written together with its timestamp.
func (h *Handler) OverrideLiveState(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	var req overrideLiveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Busyness == nil && req.Vibe == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide busyness and/or vibe"})
		return
	}
	if req.Busyness != nil && !req.Busyness.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown busyness level"})
		return
	}
	if req.Vibe != nil && !req.Vibe.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown vibe"})
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()
	var err error
	switch {
	case req.Busyness != nil && req.Vibe != nil:
		err = h.store.OverrideLiveState(ctx, venueID, *req.Busyness, *req.Vibe, now)
	case req.Busyness != nil:
		err = h.store.SetBusyness(ctx, venueID, *req.Busyness, now)
	default:
		err = h.store.SetVibe(ctx, venueID, *req.Vibe, now)
	}

	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Live state not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update live state"})
		return
	}

	state, err := h.store.GetLiveState(ctx, venueID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload live state"})
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetCurrentVibe handles GET /api/venues/{venue_id}/vibe: the resolved
// vibe for right now plus the next scheduled change.
func (h *Handler) GetCurrentVibe(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	vibe, matched, err := h.schedules.ResolveCurrentVibe(ctx, venueID, now)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve vibe"})
		return
	}

	next, err := h.schedules.NextVibeChange(ctx, venueID, now)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve next change"})
		return
	}

	resp := gin.H{"nextChange": next}
	if matched {
		resp["vibe"] = vibe
	} else {
		resp["vibe"] = nil
	}
	c.JSON(http.StatusOK, resp)
}

// GetBusynessStats handles GET /api/stats/busyness.
func (h *Handler) GetBusynessStats(c *gin.Context) {
	stats, err := h.store.BusynessStats(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate busyness stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
