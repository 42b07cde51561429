package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"venue-pulse-backend/internal/model"
)

// Store defines the interface for all database operations the engines
// depend on. Plain CRUD handlers reach the database through DB().
type Store interface {
	DB() *gorm.DB

	// Venues and live state
	ListVenues(ctx context.Context) ([]model.Venue, error)
	GetVenue(ctx context.Context, id int64) (*model.Venue, error)
	GetLiveState(ctx context.Context, venueID int64) (*model.VenueLiveState, error)
	SetVibe(ctx context.Context, venueID int64, vibe model.VibeType, at time.Time) error
	SetBusyness(ctx context.Context, venueID int64, level model.BusynessLevel, at time.Time) error
	OverrideLiveState(ctx context.Context, venueID int64, level model.BusynessLevel, vibe model.VibeType, at time.Time) error
	BusynessStats(ctx context.Context) ([]BusynessStat, error)

	// Schedule rules
	CreateRule(ctx context.Context, rule *model.VibeScheduleRule) error
	ListRules(ctx context.Context, venueID int64) ([]model.VibeScheduleRule, error)
	ListActiveRules(ctx context.Context, venueID int64) ([]model.VibeScheduleRule, error)
	DeleteRule(ctx context.Context, id int64) error
	CountActiveRulesForDay(ctx context.Context, dayOfWeek int) (int64, error)
	CountVenues(ctx context.Context) (int64, error)
	LatestLiveStateUpdate(ctx context.Context) (*time.Time, error)

	// Offers
	CreateOffer(ctx context.Context, offer *model.Offer) error
	GetOffer(ctx context.Context, id int64) (*model.Offer, error)
	ListOffersByVenue(ctx context.Context, venueID int64) ([]model.Offer, error)
	ListWindowOffers(ctx context.Context, venueID int64, now time.Time) ([]model.Offer, error)
	CountWindowOffers(ctx context.Context, venueID int64, now time.Time) (int64, error)
	SetOfferStatus(ctx context.Context, id int64, isActive bool) error
	IncrementOfferViews(ctx context.Context, id int64) error
	IncrementOfferClicks(ctx context.Context, id int64) error
	RecordRedemption(ctx context.Context, redemption *model.OfferRedemption) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListVenues returns every venue with its city and live state preloaded.
// Scheduler ticks scan this list once per cycle.
func (s *gormStore) ListVenues(ctx context.Context) ([]model.Venue, error) {
	var venues []model.Venue
	if err := s.db.WithContext(ctx).Preload("City").Preload("LiveState").Find(&venues).Error; err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}

func (s *gormStore) GetVenue(ctx context.Context, id int64) (*model.Venue, error) {
	var venue model.Venue
	err := s.db.WithContext(ctx).Preload("City").Preload("LiveState").First(&venue, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue %d: %w", id, err)
	}
	return &venue, nil
}

func (s *gormStore) GetLiveState(ctx context.Context, venueID int64) (*model.VenueLiveState, error) {
	var state model.VenueLiveState
	err := s.db.WithContext(ctx).First(&state, "venue_id = ?", venueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get live state for venue %d: %w", venueID, err)
	}
	return &state, nil
}

// SetVibe updates the vibe pair (value + timestamp) in a single UPDATE so
// a concurrent busyness write can never observe a half-written pair.
func (s *gormStore) SetVibe(ctx context.Context, venueID int64, vibe model.VibeType, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.VenueLiveState{}).
		Where("venue_id = ?", venueID).
		UpdateColumns(map[string]any{
			"vibe":            vibe,
			"vibe_updated_at": at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set vibe for venue %d: %w", venueID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBusyness updates the busyness pair the same way SetVibe updates the
// vibe pair.
func (s *gormStore) SetBusyness(ctx context.Context, venueID int64, level model.BusynessLevel, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.VenueLiveState{}).
		Where("venue_id = ?", venueID).
		UpdateColumns(map[string]any{
			"busyness":            level,
			"busyness_updated_at": at,
			"updated_at":          at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set busyness for venue %d: %w", venueID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// OverrideLiveState force-writes both pairs at once. Used by scenario
// presets and the manual override endpoint; refreshes both timestamps.
func (s *gormStore) OverrideLiveState(ctx context.Context, venueID int64, level model.BusynessLevel, vibe model.VibeType, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.VenueLiveState{}).
		Where("venue_id = ?", venueID).
		UpdateColumns(map[string]any{
			"busyness":            level,
			"vibe":                vibe,
			"busyness_updated_at": at,
			"vibe_updated_at":     at,
			"updated_at":          at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to override live state for venue %d: %w", venueID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) BusynessStats(ctx context.Context) ([]BusynessStat, error) {
	var stats []BusynessStat
	err := s.db.WithContext(ctx).
		Model(&model.VenueLiveState{}).
		Select("busyness as level, COUNT(*) as count").
		Group("busyness").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate busyness stats: %w", err)
	}
	return stats, nil
}

func (s *gormStore) CreateRule(ctx context.Context, rule *model.VibeScheduleRule) error {
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create schedule rule: %w", err)
	}
	return nil
}

func (s *gormStore) ListRules(ctx context.Context, venueID int64) ([]model.VibeScheduleRule, error) {
	var rules []model.VibeScheduleRule
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("day_of_week ASC, start_time ASC, priority DESC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule rules for venue %d: %w", venueID, err)
	}
	return rules, nil
}

func (s *gormStore) ListActiveRules(ctx context.Context, venueID int64) ([]model.VibeScheduleRule, error) {
	var rules []model.VibeScheduleRule
	err := s.db.WithContext(ctx).
		Where("venue_id = ? AND is_active = ?", venueID, true).
		Order("priority DESC, start_time ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules for venue %d: %w", venueID, err)
	}
	return rules, nil
}

func (s *gormStore) DeleteRule(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.VibeScheduleRule{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete schedule rule %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) CountActiveRulesForDay(ctx context.Context, dayOfWeek int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.VibeScheduleRule{}).
		Where("day_of_week = ? AND is_active = ?", dayOfWeek, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active rules for day %d: %w", dayOfWeek, err)
	}
	return count, nil
}

func (s *gormStore) CountVenues(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Venue{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return count, nil
}

// LatestLiveStateUpdate returns the timestamp of the most recent
// live-state write, or nil when no live state exists yet.
func (s *gormStore) LatestLiveStateUpdate(ctx context.Context) (*time.Time, error) {
	var state model.VenueLiveState
	err := s.db.WithContext(ctx).Order("updated_at DESC").First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest live-state update: %w", err)
	}
	return &state.UpdatedAt, nil
}

func (s *gormStore) CreateOffer(ctx context.Context, offer *model.Offer) error {
	if err := s.db.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (s *gormStore) GetOffer(ctx context.Context, id int64) (*model.Offer, error) {
	var offer model.Offer
	err := s.db.WithContext(ctx).First(&offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer %d: %w", id, err)
	}
	return &offer, nil
}

func (s *gormStore) ListOffersByVenue(ctx context.Context, venueID int64) ([]model.Offer, error) {
	var offers []model.Offer
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("starts_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers for venue %d: %w", venueID, err)
	}
	return offers, nil
}

// ListWindowOffers returns the active offers whose absolute window
// contains now, oldest window first. Both window boundaries are
// inclusive. The busyness gate is applied by the caller.
func (s *gormStore) ListWindowOffers(ctx context.Context, venueID int64, now time.Time) ([]model.Offer, error) {
	var offers []model.Offer
	err := s.db.WithContext(ctx).
		Where("venue_id = ? AND is_active = ? AND starts_at <= ? AND ends_at >= ?", venueID, true, now, now).
		Order("starts_at ASC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers in window for venue %d: %w", venueID, err)
	}
	return offers, nil
}

func (s *gormStore) CountWindowOffers(ctx context.Context, venueID int64, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Offer{}).
		Where("venue_id = ? AND is_active = ? AND starts_at <= ? AND ends_at >= ?", venueID, true, now, now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active offers for venue %d: %w", venueID, err)
	}
	return count, nil
}

func (s *gormStore) SetOfferStatus(ctx context.Context, id int64, isActive bool) error {
	res := s.db.WithContext(ctx).Model(&model.Offer{}).
		Where("id = ?", id).
		Update("is_active", isActive)
	if res.Error != nil {
		return fmt.Errorf("failed to set status for offer %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) IncrementOfferViews(ctx context.Context, id int64) error {
	return s.incrementOfferCounter(ctx, id, "view_count")
}

func (s *gormStore) IncrementOfferClicks(ctx context.Context, id int64) error {
	return s.incrementOfferCounter(ctx, id, "click_count")
}

// incrementOfferCounter relies on the database to add, never on a
// read-then-write in application code, so concurrent increments cannot
// lose updates.
func (s *gormStore) incrementOfferCounter(ctx context.Context, id int64, column string) error {
	res := s.db.WithContext(ctx).Model(&model.Offer{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment %s for offer %d: %w", column, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordRedemption appends a ledger row and increments redeem_count in
// one transaction.
func (s *gormStore) RecordRedemption(ctx context.Context, redemption *model.OfferRedemption) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(redemption).Error; err != nil {
			return fmt.Errorf("failed to create redemption for offer %d: %w", redemption.OfferID, err)
		}
		res := tx.Model(&model.Offer{}).
			Where("id = ?", redemption.OfferID).
			UpdateColumn("redeem_count", gorm.Expr("redeem_count + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to increment redeem_count for offer %d: %w", redemption.OfferID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
