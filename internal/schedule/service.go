package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"venue-pulse-backend/internal/model"
	"venue-pulse-backend/internal/store"
)

// ErrInvalidRule marks a malformed schedule rule rejected at write time.
var ErrInvalidRule = errors.New("invalid schedule rule")

// Service resolves vibes for venues against their stored schedule rules
// and owns rule validation. Resolution itself never mutates anything.
type Service struct {
	store    store.Store
	fallback *time.Location
}

// NewService creates a schedule service. defaultTimezone is used for
// venues whose city carries no loadable zone.
func NewService(s store.Store, defaultTimezone string) *Service {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		log.Printf("Warning: invalid default timezone %q, falling back to UTC: %v", defaultTimezone, err)
		loc = time.UTC
	}
	return &Service{store: s, fallback: loc}
}

// Location returns the venue's local zone: its city's timezone when it
// loads, the configured fallback otherwise.
func (s *Service) Location(venue *model.Venue) *time.Location {
	if venue == nil || venue.City.Timezone == "" {
		return s.fallback
	}
	loc, err := time.LoadLocation(venue.City.Timezone)
	if err != nil {
		log.Printf("Warning: venue %d has unloadable timezone %q, using fallback: %v", venue.ID, venue.City.Timezone, err)
		return s.fallback
	}
	return loc
}

// ResolveCurrentVibe computes the venue's active vibe at now, or false
// when no rule matches.
func (s *Service) ResolveCurrentVibe(ctx context.Context, venueID int64, now time.Time) (model.VibeType, bool, error) {
	venue, err := s.store.GetVenue(ctx, venueID)
	if err != nil {
		return "", false, err
	}
	rules, err := s.store.ListActiveRules(ctx, venueID)
	if err != nil {
		return "", false, err
	}
	vibe, ok := ResolveCurrent(rules, now, s.Location(venue))
	return vibe, ok, nil
}

// NextVibeChange returns the venue's next scheduled vibe change, or nil
// when the venue has no active rules.
func (s *Service) NextVibeChange(ctx context.Context, venueID int64, now time.Time) (*Change, error) {
	venue, err := s.store.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	rules, err := s.store.ListActiveRules(ctx, venueID)
	if err != nil {
		return nil, err
	}
	return NextChange(rules, now, s.Location(venue)), nil
}

// CreateRule validates and persists a new schedule rule for the venue.
// Malformed rules are rejected here and never reach the store.
func (s *Service) CreateRule(ctx context.Context, rule *model.VibeScheduleRule) (*model.VibeScheduleRule, error) {
	if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: dayOfWeek %d not in [0..6]", ErrInvalidRule, rule.DayOfWeek)
	}
	if _, err := parseClock(rule.StartTime); err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", ErrInvalidRule, err)
	}
	if _, err := parseClock(rule.EndTime); err != nil {
		return nil, fmt.Errorf("%w: endTime: %v", ErrInvalidRule, err)
	}
	if !rule.Vibe.Valid() {
		return nil, fmt.Errorf("%w: unknown vibe %q", ErrInvalidRule, rule.Vibe)
	}

	// The venue must exist; a dangling rule would silently never match.
	if _, err := s.store.GetVenue(ctx, rule.VenueID); err != nil {
		return nil, err
	}

	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules returns every rule for the venue, active or not.
func (s *Service) ListRules(ctx context.Context, venueID int64) ([]model.VibeScheduleRule, error) {
	if _, err := s.store.GetVenue(ctx, venueID); err != nil {
		return nil, err
	}
	return s.store.ListRules(ctx, venueID)
}

// DeleteRule removes a rule by ID.
func (s *Service) DeleteRule(ctx context.Context, id int64) error {
	return s.store.DeleteRule(ctx, id)
}
