package model

import "time"

// VibeScheduleRule is a weekly recurring time window mapping to a vibe.
// DayOfWeek uses 0 = Sunday through 6 = Saturday. StartTime and EndTime
// are local "HH:MM" strings in the venue's city timezone; an EndTime
// earlier than StartTime means the window wraps past midnight.
type VibeScheduleRule struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	VenueID   int64     `gorm:"index:idx_schedule_venue_day;not null" json:"venueId"`
	DayOfWeek int       `gorm:"index:idx_schedule_venue_day;not null" json:"dayOfWeek"`
	StartTime string    `gorm:"size:5;not null" json:"startTime"`
	EndTime   string    `gorm:"size:5;not null" json:"endTime"`
	Vibe      VibeType  `gorm:"size:16;not null" json:"vibe"`
	Priority  int       `gorm:"not null;default:0" json:"priority"`
	IsActive  bool      `gorm:"index;not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Associations
	Venue Venue `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
