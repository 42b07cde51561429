package store

import (
	"errors"
	"time"

	"venue-pulse-backend/internal/model"
)

// ErrNotFound is returned when a venue, offer, schedule rule or live
// state row does not resolve to an existing record.
var ErrNotFound = errors.New("record not found")

// AutomationStatus is the read-only aggregation exposed for observability.
type AutomationStatus struct {
	ScheduledVibes int64      `json:"scheduledVibes"`
	ActiveVenues   int64      `json:"activeVenues"`
	LastUpdate     *time.Time `json:"lastUpdate"`
}

// BusynessStat is one bucket of the busyness distribution across venues.
type BusynessStat struct {
	Level model.BusynessLevel `json:"level"`
	Count int64               `json:"count"`
}
