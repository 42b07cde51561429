package model

import "time"

// City represents a city the platform operates in. Its timezone is the
// local zone used for all schedule resolution of venues in that city.
type City struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Timezone  string    `gorm:"size:64;not null;default:Europe/London" json:"timezone"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Venues []Venue `gorm:"foreignKey:CityID" json:"-"`
}
