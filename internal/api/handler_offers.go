package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venue-pulse-backend/internal/model"
	"venue-pulse-backend/internal/offers"
	"venue-pulse-backend/internal/store"
)

type createOfferRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	OfferType   model.OfferType     `json:"offerType" binding:"required"`
	MinBusyness model.BusynessLevel `json:"minBusyness"`
	StartsAt    time.Time           `json:"startsAt" binding:"required"`
	EndsAt      time.Time           `json:"endsAt" binding:"required"`
	IsActive    *bool               `json:"isActive"`
}

// CreateOffer handles POST /api/venues/{venue_id}/offers.
func (h *Handler) CreateOffer(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer := &model.Offer{
		VenueID:     venueID,
		Title:       req.Title,
		Description: req.Description,
		OfferType:   req.OfferType,
		MinBusyness: req.MinBusyness,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsActive:    true,
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	created, err := h.offers.Create(c.Request.Context(), offer)
	if errors.Is(err, offers.ErrInvalidWindow) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offer"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetEligibleOffers handles GET /api/venues/{venue_id}/offers. By
// default it returns the offers eligible right now (window and busyness
// gate both applied); ?all=true lists every offer for the venue.
func (h *Handler) GetEligibleOffers(c *gin.Context) {
	venueID, ok := parseID(c, "venue_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if c.Query("all") == "true" {
		list, err := h.store.ListOffersByVenue(ctx, venueID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve offers"})
			return
		}
		c.JSON(http.StatusOK, list)
		return
	}

	eligible, err := h.offers.ListEligible(ctx, venueID, time.Now().UTC())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve offers"})
		return
	}
	c.JSON(http.StatusOK, eligible)
}

type redeemOfferRequest struct {
	UserID string `json:"userId"`
	Source string `json:"source"`
}

// RedeemOffer handles POST /api/offers/{offer_id}/redeem. Eligibility
// is re-checked at this instant, not trusted from a prior listing.
func (h *Handler) RedeemOffer(c *gin.Context) {
	offerID, ok := parseID(c, "offer_id")
	if !ok {
		return
	}

	var req redeemOfferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	redemption, err := h.offers.Redeem(c.Request.Context(), offerID, req.UserID, req.Source, time.Now().UTC())
	var eligErr *offers.EligibilityError
	if errors.As(err, &eligErr) {
		status := http.StatusConflict
		if eligErr.Reason == offers.ReasonOfferNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "reason": eligErr.Reason})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem offer, please retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "redemption": redemption})
}

// RecordOfferView handles POST /api/offers/{offer_id}/view.
func (h *Handler) RecordOfferView(c *gin.Context) {
	h.recordEngagement(c, h.offers.RecordView)
}

// RecordOfferClick handles POST /api/offers/{offer_id}/click.
func (h *Handler) RecordOfferClick(c *gin.Context) {
	h.recordEngagement(c, h.offers.RecordClick)
}

func (h *Handler) recordEngagement(c *gin.Context, record func(ctx context.Context, offerID int64) error) {
	offerID, ok := parseID(c, "offer_id")
	if !ok {
		return
	}

	err := record(c.Request.Context(), offerID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to record engagement"})
		return
	}
	c.Status(http.StatusNoContent)
}

type setOfferStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetOfferStatus handles PATCH /api/offers/{offer_id}/status.
func (h *Handler) SetOfferStatus(c *gin.Context) {
	offerID, ok := parseID(c, "offer_id")
	if !ok {
		return
	}

	var req setOfferStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.SetOfferStatus(c.Request.Context(), offerID, *req.IsActive)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update offer status"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetOfferStats handles GET /api/offers/{offer_id}/stats.
func (h *Handler) GetOfferStats(c *gin.Context) {
	offerID, ok := parseID(c, "offer_id")
	if !ok {
		return
	}

	stats, err := h.offers.GetStats(c.Request.Context(), offerID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve offer stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
