package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"venue-pulse-backend/internal/model"
)

// SeedDemoData populates an empty database with a demo city, venues,
// schedule rules and offers so the automation and offer engines have
// something to chew on out of the box. A non-empty database is left
// untouched.
func SeedDemoData(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&model.Venue{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for existing venues: %w", err)
	}
	if count > 0 {
		return nil
	}
	log.Println("Seeding demo data...")

	city := model.City{Name: "Manchester", Timezone: "Europe/London"}
	if err := db.Create(&city).Error; err != nil {
		return fmt.Errorf("failed to seed city: %w", err)
	}

	venues := []model.Venue{
		{CityID: city.ID, Name: "The Velvet Room", Category: model.CategoryClub, IsActive: true},
		{CityID: city.ID, Name: "Copper & Oak", Category: model.CategoryBar, IsActive: true},
		{CityID: city.ID, Name: "Trattoria Lume", Category: model.CategoryRestaurant, IsActive: true},
	}
	if err := db.Create(&venues).Error; err != nil {
		return fmt.Errorf("failed to seed venues: %w", err)
	}

	for _, v := range venues {
		state := model.VenueLiveState{
			VenueID:           v.ID,
			Busyness:          model.BusynessQuiet,
			Vibe:              model.VibeChill,
			BusynessUpdatedAt: now,
			VibeUpdatedAt:     now,
		}
		if err := db.Create(&state).Error; err != nil {
			return fmt.Errorf("failed to seed live state for venue %d: %w", v.ID, err)
		}
	}

	rules := []model.VibeScheduleRule{
		// Friday and Saturday nights at the club wrap past midnight.
		{VenueID: venues[0].ID, DayOfWeek: 5, StartTime: "22:00", EndTime: "02:00", Vibe: model.VibeLateNight, Priority: 1, IsActive: true},
		{VenueID: venues[0].ID, DayOfWeek: 6, StartTime: "22:00", EndTime: "02:00", Vibe: model.VibeLateNight, Priority: 1, IsActive: true},
		{VenueID: venues[0].ID, DayOfWeek: 5, StartTime: "18:00", EndTime: "22:00", Vibe: model.VibeParty, IsActive: true},
		{VenueID: venues[1].ID, DayOfWeek: 4, StartTime: "17:00", EndTime: "20:00", Vibe: model.VibeSocial, IsActive: true},
		{VenueID: venues[2].ID, DayOfWeek: 5, StartTime: "19:00", EndTime: "22:30", Vibe: model.VibeRomantic, IsActive: true},
	}
	if err := db.Create(&rules).Error; err != nil {
		return fmt.Errorf("failed to seed schedule rules: %w", err)
	}

	offers := []model.Offer{
		{
			VenueID:     venues[1].ID,
			Title:       "Happy hour: 2-for-1 cocktails",
			OfferType:   model.OfferHappyHour,
			MinBusyness: model.BusynessQuiet,
			StartsAt:    now.AddDate(0, 0, -1),
			EndsAt:      now.AddDate(0, 1, 0),
			IsActive:    true,
		},
		{
			VenueID:     venues[0].ID,
			Title:       "Free entry before midnight",
			OfferType:   model.OfferEntryDeal,
			MinBusyness: model.BusynessModerate,
			StartsAt:    now.AddDate(0, 0, -1),
			EndsAt:      now.AddDate(0, 1, 0),
			IsActive:    true,
		},
	}
	if err := db.Create(&offers).Error; err != nil {
		return fmt.Errorf("failed to seed offers: %w", err)
	}

	log.Printf("Seeded %d venues, %d rules, %d offers", len(venues), len(rules), len(offers))
	return nil
}
