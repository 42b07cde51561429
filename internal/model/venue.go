package model

import "time"

// VenueCategory classifies a venue and selects its diurnal busyness curve.
type VenueCategory string

const (
	CategoryBar        VenueCategory = "BAR"
	CategoryClub       VenueCategory = "CLUB"
	CategoryRestaurant VenueCategory = "RESTAURANT"
	CategoryCasino     VenueCategory = "CASINO"
)

// Venue represents a single venue in a city.
type Venue struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	CityID    int64         `gorm:"index;not null" json:"cityId"`
	Name      string        `gorm:"size:160;not null" json:"name"`
	Category  VenueCategory `gorm:"size:32;index;not null" json:"category"`
	IsActive  bool          `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	// Associations
	City      City               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	LiveState *VenueLiveState    `gorm:"foreignKey:VenueID" json:"liveState,omitempty"`
	Schedules []VibeScheduleRule `gorm:"foreignKey:VenueID" json:"-"`
	Offers    []Offer            `gorm:"foreignKey:VenueID" json:"-"`
}
