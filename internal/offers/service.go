package offers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"venue-pulse-backend/internal/model"
	"venue-pulse-backend/internal/store"
)

// EligibilityReason is the typed outcome of a failed eligibility check.
type EligibilityReason string

const (
	ReasonOfferNotFound  EligibilityReason = "OFFER_NOT_FOUND"
	ReasonOfferInactive  EligibilityReason = "OFFER_INACTIVE"
	ReasonOutsideWindow  EligibilityReason = "OUTSIDE_WINDOW"
	ReasonBusynessNotMet EligibilityReason = "BUSYNESS_NOT_MET"
)

// EligibilityError is an expected, recoverable redemption outcome, not
// an infrastructure failure. Callers decide the user-facing messaging.
type EligibilityError struct {
	Reason EligibilityReason
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("offer not eligible: %s", e.Reason)
}

// ErrInvalidWindow marks an offer whose window fails endsAt > startsAt.
var ErrInvalidWindow = errors.New("offer window must end after it starts")

// Service filters offers by time window and busyness threshold and
// governs redemption. It holds no persistent state of its own.
type Service struct {
	store store.Store

	// Redemptions for the same offer are serialized so two concurrent
	// attempts cannot both be judged against a stale busyness snapshot.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates an offer eligibility service.
func NewService(s store.Store) *Service {
	return &Service{store: s, locks: make(map[int64]*sync.Mutex)}
}

func (s *Service) offerLock(offerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[offerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[offerID] = lock
	}
	return lock
}

// Create validates and persists a new offer. The window precondition is
// enforced here, at write time, never during eligibility evaluation.
func (s *Service) Create(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	if !offer.EndsAt.After(offer.StartsAt) {
		return nil, ErrInvalidWindow
	}
	if offer.MinBusyness == "" {
		offer.MinBusyness = model.BusynessQuiet
	}
	if !offer.MinBusyness.Valid() {
		return nil, fmt.Errorf("unknown busyness level %q", offer.MinBusyness)
	}

	if _, err := s.store.GetVenue(ctx, offer.VenueID); err != nil {
		return nil, err
	}
	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// ListEligible returns the venue's offers that are active, whose window
// contains now (both boundaries inclusive), and whose minimum-busyness
// requirement is met by the venue's current level. The comparison is
// monotonic: an offer requiring QUIET shows at any level, one requiring
// BUSY only when the venue is actually BUSY. A venue without a live
// state record yields no offers.
func (s *Service) ListEligible(ctx context.Context, venueID int64, now time.Time) ([]model.Offer, error) {
	state, err := s.store.GetLiveState(ctx, venueID)
	if errors.Is(err, store.ErrNotFound) {
		return []model.Offer{}, nil
	}
	if err != nil {
		return nil, err
	}

	offers, err := s.store.ListWindowOffers(ctx, venueID, now)
	if err != nil {
		return nil, err
	}

	currentRank := state.Busyness.Rank()
	eligible := make([]model.Offer, 0, len(offers))
	for _, offer := range offers {
		if currentRank >= offer.MinBusyness.Rank() {
			eligible = append(eligible, offer)
		}
	}
	return eligible, nil
}

// Redeem re-runs the full eligibility check at the instant of
// redemption and, on success, appends a ledger row and atomically
// increments the offer's redeem count. Failed checks return an
// *EligibilityError and leave state untouched. Attempts for the same
// offer are serialized.
func (s *Service) Redeem(ctx context.Context, offerID int64, userID, source string, now time.Time) (*model.OfferRedemption, error) {
	lock := s.offerLock(offerID)
	lock.Lock()
	defer lock.Unlock()

	offer, err := s.store.GetOffer(ctx, offerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &EligibilityError{Reason: ReasonOfferNotFound}
	}
	if err != nil {
		return nil, err
	}
	if !offer.IsActive {
		return nil, &EligibilityError{Reason: ReasonOfferInactive}
	}
	if now.Before(offer.StartsAt) || now.After(offer.EndsAt) {
		return nil, &EligibilityError{Reason: ReasonOutsideWindow}
	}

	state, err := s.store.GetLiveState(ctx, offer.VenueID)
	if errors.Is(err, store.ErrNotFound) {
		// No live state record: fail closed.
		return nil, &EligibilityError{Reason: ReasonBusynessNotMet}
	}
	if err != nil {
		return nil, err
	}
	if state.Busyness.Rank() < offer.MinBusyness.Rank() {
		return nil, &EligibilityError{Reason: ReasonBusynessNotMet}
	}

	if source == "" {
		source = "DEMO"
	}
	redemption := &model.OfferRedemption{
		OfferID:    offer.ID,
		VenueID:    offer.VenueID,
		UserID:     userID,
		Source:     source,
		RedeemedAt: now,
	}
	if err := s.store.RecordRedemption(ctx, redemption); err != nil {
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}
	return redemption, nil
}

// RecordView bumps an offer's view counter. Engagement counters are
// independent of eligibility.
func (s *Service) RecordView(ctx context.Context, offerID int64) error {
	return s.store.IncrementOfferViews(ctx, offerID)
}

// RecordClick bumps an offer's click counter.
func (s *Service) RecordClick(ctx context.Context, offerID int64) error {
	return s.store.IncrementOfferClicks(ctx, offerID)
}

// Stats summarizes an offer's engagement counters.
type Stats struct {
	Views          int64   `json:"views"`
	Clicks         int64   `json:"clicks"`
	Redemptions    int64   `json:"redemptions"`
	ConversionRate float64 `json:"conversionRate"`
}

// GetStats returns an offer's counters plus its view-to-redemption
// conversion rate in percent, rounded to two decimals.
func (s *Service) GetStats(ctx context.Context, offerID int64) (*Stats, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	var rate float64
	if offer.ViewCount > 0 {
		rate = float64(offer.RedeemCount) / float64(offer.ViewCount) * 100
		rate = float64(int64(rate*100+0.5)) / 100
	}
	return &Stats{
		Views:          offer.ViewCount,
		Clicks:         offer.ClickCount,
		Redemptions:    offer.RedeemCount,
		ConversionRate: rate,
	}, nil
}
