package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"venue-pulse-backend/config"
	"venue-pulse-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/cities", caching, h.GetCities)

		api.GET("/venues", caching, h.GetVenues)
		api.GET("/venues/:venue_id", h.GetVenue)
		api.GET("/venues/:venue_id/live", h.GetLiveState)
		api.PATCH("/venues/:venue_id/live", h.OverrideLiveState)
		api.GET("/venues/:venue_id/vibe", h.GetCurrentVibe)

		api.GET("/venues/:venue_id/schedules", h.GetSchedules)
		api.POST("/venues/:venue_id/schedules", h.CreateSchedule)
		api.DELETE("/schedules/:schedule_id", h.DeleteSchedule)

		api.GET("/venues/:venue_id/offers", h.GetEligibleOffers)
		api.POST("/venues/:venue_id/offers", h.CreateOffer)
		api.POST("/offers/:offer_id/redeem", h.RedeemOffer)
		api.POST("/offers/:offer_id/view", h.RecordOfferView)
		api.POST("/offers/:offer_id/click", h.RecordOfferClick)
		api.PATCH("/offers/:offer_id/status", h.SetOfferStatus)
		api.GET("/offers/:offer_id/stats", h.GetOfferStats)

		api.GET("/stats/busyness", caching, h.GetBusynessStats)

		api.GET("/automation/status", h.GetAutomationStatus)
		api.POST("/automation/vibe-tick", h.TriggerVibeTick)
		api.POST("/automation/busyness-tick", h.TriggerBusynessTick)
		api.POST("/automation/scenario", h.TriggerScenario)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
