package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"venue-pulse-backend/internal/automation"
	"venue-pulse-backend/internal/offers"
	"venue-pulse-backend/internal/schedule"
	"venue-pulse-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	schedules  *schedule.Service
	offers     *offers.Service
	automation *automation.Service
	webpush    *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, schedules *schedule.Service, offerSvc *offers.Service, automationSvc *automation.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:      s,
		schedules:  schedules,
		offers:     offerSvc,
		automation: automationSvc,
		webpush:    webpushOptions,
	}
}
