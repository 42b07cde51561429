package automation

import (
	"context"
	"fmt"
	"log"
	"time"

	"venue-pulse-backend/config"
	"venue-pulse-backend/internal/model"
	"venue-pulse-backend/internal/notification"
	"venue-pulse-backend/internal/schedule"
	"venue-pulse-backend/internal/store"
)

// Scenario names accepted by ApplyScenarioPreset.
const (
	ScenarioQuietToBusy = "quiet_to_busy"
	ScenarioBusyToQuiet = "busy_to_quiet"
	ScenarioVibeShift   = "vibe_shift"
)

// Service drives the periodic re-evaluation of venue live state. The
// tick methods are plain functions of an injected "now" so they can be
// exercised directly; Run only supplies the clock and the intervals.
type Service struct {
	cfg        *config.Config
	store      store.Store
	schedules  *schedule.Service
	workerPool *notification.WorkerPool
}

// NewService creates the automation scheduler. workerPool may be nil
// when push delivery is disabled.
func NewService(cfg *config.Config, s store.Store, schedules *schedule.Service, workerPool *notification.WorkerPool) *Service {
	return &Service{
		cfg:        cfg,
		store:      s,
		schedules:  schedules,
		workerPool: workerPool,
	}
}

// Run executes both ticks once immediately, then on their fixed
// intervals until the context is cancelled. The vibe tick fires more
// often than the busyness tick.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Automation.Enabled {
		log.Println("Automation scheduler is disabled. Not starting.")
		return
	}
	log.Printf("Starting automation scheduler (vibe every %s, busyness every %s)...",
		s.cfg.Automation.VibeInterval, s.cfg.Automation.BusynessInterval)

	if s.workerPool != nil {
		s.workerPool.Start(ctx)
	}

	if _, err := s.RunVibeTick(ctx, time.Now().UTC()); err != nil {
		log.Printf("Error in initial vibe tick: %v", err)
	}
	if _, err := s.RunBusynessTick(ctx, time.Now().UTC()); err != nil {
		log.Printf("Error in initial busyness tick: %v", err)
	}

	vibeTicker := time.NewTicker(s.cfg.Automation.VibeInterval)
	defer vibeTicker.Stop()
	busynessTicker := time.NewTicker(s.cfg.Automation.BusynessInterval)
	defer busynessTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Automation scheduler shutting down.")
			return
		case <-vibeTicker.C:
			if _, err := s.RunVibeTick(ctx, time.Now().UTC()); err != nil {
				log.Printf("Error in vibe tick: %v", err)
			}
		case <-busynessTicker.C:
			if _, err := s.RunBusynessTick(ctx, time.Now().UTC()); err != nil {
				log.Printf("Error in busyness tick: %v", err)
			}
		}
	}
}

// RunVibeTick resolves the scheduled vibe for every venue and writes it
// back where it differs from the stored value. Venues with no matching
// rule keep their last known vibe. A failure on one venue is logged and
// the tick continues with the rest; it returns the number of venues
// updated.
func (s *Service) RunVibeTick(ctx context.Context, now time.Time) (int, error) {
	venues, err := s.store.ListVenues(ctx)
	if err != nil {
		return 0, fmt.Errorf("vibe tick: %w", err)
	}

	updated := 0
	for i := range venues {
		venue := &venues[i]
		if venue.LiveState == nil {
			log.Printf("Warning: venue %d has no live state, skipping vibe update", venue.ID)
			continue
		}

		rules, err := s.store.ListActiveRules(ctx, venue.ID)
		if err != nil {
			log.Printf("Error loading rules for venue %d: %v", venue.ID, err)
			continue
		}

		resolved, ok := schedule.ResolveCurrent(rules, now, s.schedules.Location(venue))
		if !ok {
			continue
		}
		if resolved == venue.LiveState.Vibe {
			continue
		}

		if err := s.store.SetVibe(ctx, venue.ID, resolved, now); err != nil {
			log.Printf("Error updating vibe for venue %d: %v", venue.ID, err)
			continue
		}
		log.Printf("Updated venue %d (%s) vibe to %s", venue.ID, venue.Name, resolved)
		s.notify(venue.ID)
		updated++
	}

	if updated > 0 {
		log.Printf("Vibe tick updated %d venues", updated)
	}
	return updated, nil
}

// RunBusynessTick recomputes simulated busyness for every venue from its
// category and local hour, writing back only actual changes so the tick
// is idempotent for an unchanged clock.
func (s *Service) RunBusynessTick(ctx context.Context, now time.Time) (int, error) {
	venues, err := s.store.ListVenues(ctx)
	if err != nil {
		return 0, fmt.Errorf("busyness tick: %w", err)
	}

	updated := 0
	for i := range venues {
		venue := &venues[i]
		if venue.LiveState == nil {
			log.Printf("Warning: venue %d has no live state, skipping busyness update", venue.ID)
			continue
		}

		hour := now.In(s.schedules.Location(venue)).Hour()
		level := SimulateBusyness(hour, venue.Category)
		if level == venue.LiveState.Busyness {
			continue
		}

		if err := s.store.SetBusyness(ctx, venue.ID, level, now); err != nil {
			log.Printf("Error updating busyness for venue %d: %v", venue.ID, err)
			continue
		}
		s.notify(venue.ID)
		updated++
	}

	if updated > 0 {
		log.Printf("Busyness tick updated %d venues", updated)
	}
	return updated, nil
}

// ApplyScenarioPreset force-writes a named live-state preset across all
// venues, bypassing the schedule entirely. Both value pairs and both
// timestamps are refreshed on every affected venue. Returns the number
// of venues written.
func (s *Service) ApplyScenarioPreset(ctx context.Context, scenario string, now time.Time) (int, error) {
	switch scenario {
	case ScenarioQuietToBusy, ScenarioBusyToQuiet, ScenarioVibeShift:
	default:
		return 0, fmt.Errorf("unknown scenario %q", scenario)
	}
	log.Printf("Applying scenario preset: %s", scenario)

	venues, err := s.store.ListVenues(ctx)
	if err != nil {
		return 0, fmt.Errorf("scenario %s: %w", scenario, err)
	}

	affected := 0
	for i := range venues {
		venue := &venues[i]
		if venue.LiveState == nil {
			continue
		}

		var level model.BusynessLevel
		var vibe model.VibeType
		switch scenario {
		case ScenarioQuietToBusy:
			level, vibe = model.BusynessBusy, model.VibeParty
		case ScenarioBusyToQuiet:
			level, vibe = model.BusynessQuiet, model.VibeChill
		case ScenarioVibeShift:
			level = venue.LiveState.Busyness
			if venue.LiveState.Vibe == model.VibeChill {
				vibe = model.VibeParty
			} else {
				vibe = model.VibeChill
			}
		}

		if err := s.store.OverrideLiveState(ctx, venue.ID, level, vibe, now); err != nil {
			log.Printf("Error applying scenario to venue %d: %v", venue.ID, err)
			continue
		}
		s.notify(venue.ID)
		affected++
	}

	return affected, nil
}

// Status reports the read-only automation aggregates: active rule count
// for the current local day, total venues, and the most recent
// live-state write.
func (s *Service) Status(ctx context.Context, now time.Time) (*store.AutomationStatus, error) {
	day := int(now.In(s.schedules.Location(nil)).Weekday())

	scheduled, err := s.store.CountActiveRulesForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	venueCount, err := s.store.CountVenues(ctx)
	if err != nil {
		return nil, err
	}
	lastUpdate, err := s.store.LatestLiveStateUpdate(ctx)
	if err != nil {
		return nil, err
	}

	return &store.AutomationStatus{
		ScheduledVibes: scheduled,
		ActiveVenues:   venueCount,
		LastUpdate:     lastUpdate,
	}, nil
}

// notify dispatches a fire-and-forget push job for a venue whose live
// state just changed. Delivery failures never reach the tick path.
func (s *Service) notify(venueID int64) {
	if s.workerPool == nil {
		return
	}
	s.workerPool.Dispatch(venueID)
}
