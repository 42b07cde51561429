package model

import "time"

// OfferType classifies the kind of promotion an offer carries.
type OfferType string

const (
	OfferPercentOff OfferType = "PERCENT_OFF"
	OfferBOGO       OfferType = "BOGO"
	OfferFreeItem   OfferType = "FREE_ITEM"
	OfferHappyHour  OfferType = "HAPPY_HOUR"
	OfferEntryDeal  OfferType = "ENTRY_DEAL"
)

// Offer is a promotional offer tied to a venue. It is shown and
// redeemable only while its absolute window contains "now" and the
// venue's busyness is at least MinBusyness. Counters are cumulative and
// only ever incremented atomically at the storage layer.
type Offer struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	VenueID     int64         `gorm:"index;not null" json:"venueId"`
	Title       string        `gorm:"size:160;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	OfferType   OfferType     `gorm:"size:32;not null" json:"offerType"`
	MinBusyness BusynessLevel `gorm:"size:16;not null;default:QUIET" json:"minBusyness"`
	StartsAt    time.Time     `gorm:"index;not null" json:"startsAt"`
	EndsAt      time.Time     `gorm:"index;not null" json:"endsAt"`
	IsActive    bool          `gorm:"index;not null;default:true" json:"isActive"`
	ViewCount   int64         `gorm:"not null;default:0" json:"viewCount"`
	ClickCount  int64         `gorm:"not null;default:0" json:"clickCount"`
	RedeemCount int64         `gorm:"not null;default:0" json:"redeemCount"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Associations
	Venue       Venue             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Redemptions []OfferRedemption `gorm:"foreignKey:OfferID" json:"-"`
}

// OfferRedemption is one row of the append-only redemption ledger.
type OfferRedemption struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	OfferID    int64     `gorm:"index;not null" json:"offerId"`
	VenueID    int64     `gorm:"index;not null" json:"venueId"`
	UserID     string    `gorm:"size:64" json:"userId,omitempty"`
	Source     string    `gorm:"size:32;not null;default:DEMO" json:"source"`
	RedeemedAt time.Time `gorm:"not null" json:"redeemedAt"`

	// Associations
	Offer Offer `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
