package automation

import "venue-pulse-backend/internal/model"

// SimulateBusyness computes a synthetic busyness level for a venue
// category at a local hour of day (0-23). It is a deterministic step
// function: each category follows its own diurnal curve, and any
// category without an explicit curve sits at MODERATE.
func SimulateBusyness(hour int, category model.VenueCategory) model.BusynessLevel {
	switch category {
	case model.CategoryClub:
		switch {
		case hour < 6:
			return model.BusynessBusy // late night
		case hour < 17:
			return model.BusynessQuiet
		case hour < 21:
			return model.BusynessModerate // early evening
		default:
			return model.BusynessBusy // peak time
		}

	case model.CategoryBar:
		switch {
		case hour < 3:
			return model.BusynessBusy // late night
		case hour < 16:
			return model.BusynessQuiet
		case hour < 19:
			return model.BusynessModerate // happy hour
		case hour < 23:
			return model.BusynessBusy // peak time
		default:
			return model.BusynessModerate // winding down
		}

	case model.CategoryRestaurant:
		switch {
		case hour < 11:
			return model.BusynessQuiet
		case hour < 14:
			return model.BusynessBusy // lunch rush
		case hour < 17:
			return model.BusynessQuiet // afternoon lull
		case hour < 21:
			return model.BusynessBusy // dinner rush
		default:
			return model.BusynessModerate // late dining
		}
	}

	return model.BusynessModerate
}
