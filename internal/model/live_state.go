package model

import "time"

// BusynessLevel is a venue's current crowd-level tier. Levels form a
// strict order QUIET < MODERATE < BUSY; compare them through Rank, not
// by string value.
type BusynessLevel string

const (
	BusynessQuiet    BusynessLevel = "QUIET"
	BusynessModerate BusynessLevel = "MODERATE"
	BusynessBusy     BusynessLevel = "BUSY"
)

var busynessRank = map[BusynessLevel]int{
	BusynessQuiet:    1,
	BusynessModerate: 2,
	BusynessBusy:     3,
}

// Rank returns the ordinal position of the level on the busyness scale.
// Unknown levels rank 0, below QUIET.
func (b BusynessLevel) Rank() int {
	return busynessRank[b]
}

// Valid reports whether b is one of the recognized levels.
func (b BusynessLevel) Valid() bool {
	_, ok := busynessRank[b]
	return ok
}

// VibeType is a venue's current atmosphere label.
type VibeType string

const (
	VibeChill     VibeType = "CHILL"
	VibeSocial    VibeType = "SOCIAL"
	VibeParty     VibeType = "PARTY"
	VibeRomantic  VibeType = "ROMANTIC"
	VibeLateNight VibeType = "LATE_NIGHT"
)

// Valid reports whether v is one of the recognized vibes.
func (v VibeType) Valid() bool {
	switch v {
	case VibeChill, VibeSocial, VibeParty, VibeRomantic, VibeLateNight:
		return true
	}
	return false
}

// VenueLiveState is the single live-state row a venue owns. Busyness and
// vibe are updated as independent pairs (value + its timestamp) so a
// busyness tick never clobbers a concurrent vibe write and vice versa.
type VenueLiveState struct {
	VenueID           int64         `gorm:"primaryKey" json:"venueId"`
	Busyness          BusynessLevel `gorm:"size:16;not null;default:QUIET" json:"busyness"`
	Vibe              VibeType      `gorm:"size:16;not null;default:CHILL" json:"vibe"`
	BusynessUpdatedAt time.Time     `gorm:"not null" json:"busynessUpdatedAt"`
	VibeUpdatedAt     time.Time     `gorm:"not null" json:"vibeUpdatedAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`

	// Associations
	Venue Venue `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
