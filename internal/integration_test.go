package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"venue-pulse-backend/config"
	"venue-pulse-backend/internal/api"
	"venue-pulse-backend/internal/automation"
	"venue-pulse-backend/internal/db"
	"venue-pulse-backend/internal/model"
	"venue-pulse-backend/internal/offers"
	"venue-pulse-backend/internal/schedule"
	"venue-pulse-backend/internal/store"
)

type testEnv struct {
	db         *gorm.DB
	store      store.Store
	schedules  *schedule.Service
	offers     *offers.Service
	automation *automation.Service
	venue      model.Venue
}

func setupEnv(t *testing.T, name string) *testEnv {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))

	cfg := &config.Config{}
	cfg.Automation.Enabled = true
	cfg.Automation.DefaultTimezone = "UTC"

	gormStore := store.NewGormStore(testDB)
	schedules := schedule.NewService(gormStore, cfg.Automation.DefaultTimezone)
	offerSvc := offers.NewService(gormStore)
	automationSvc := automation.NewService(cfg, gormStore, schedules, nil)

	city := model.City{Name: "Manchester", Timezone: "UTC"}
	require.NoError(t, testDB.Create(&city).Error)
	venue := model.Venue{CityID: city.ID, Name: "Warehouse 23", Category: model.CategoryClub, IsActive: true}
	require.NoError(t, testDB.Create(&venue).Error)
	require.NoError(t, testDB.Create(&model.VenueLiveState{
		VenueID:           venue.ID,
		Busyness:          model.BusynessQuiet,
		Vibe:              model.VibeChill,
		BusynessUpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		VibeUpdatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	return &testEnv{
		db:         testDB,
		store:      gormStore,
		schedules:  schedules,
		offers:     offerSvc,
		automation: automationSvc,
		venue:      venue,
	}
}

// TestVenueEveningLifecycle walks one venue through a Friday evening:
// the ticks flip its live state, offers become eligible, a redemption
// lands, and a scenario preset winds everything back down.
func TestVenueEveningLifecycle(t *testing.T) {
	env := setupEnv(t, "lifecycle")
	ctx := context.Background()

	// Friday 2024-01-05 23:00 UTC.
	now := time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)

	require.NoError(t, env.db.Create(&model.VibeScheduleRule{
		VenueID: env.venue.ID, DayOfWeek: 5, StartTime: "22:00", EndTime: "02:00",
		Vibe: model.VibeLateNight, IsActive: true,
	}).Error)

	busyOnly := model.Offer{
		VenueID: env.venue.ID, Title: "Half-price entry", OfferType: model.OfferEntryDeal,
		MinBusyness: model.BusynessBusy,
		StartsAt:    now.Add(-2 * time.Hour), EndsAt: now.Add(2 * time.Hour), IsActive: true,
	}
	require.NoError(t, env.db.Create(&busyOnly).Error)
	anyLevel := model.Offer{
		VenueID: env.venue.ID, Title: "Free shot", OfferType: model.OfferFreeItem,
		MinBusyness: model.BusynessQuiet,
		StartsAt:    now.Add(-2 * time.Hour), EndsAt: now.Add(2 * time.Hour), IsActive: true,
	}
	require.NoError(t, env.db.Create(&anyLevel).Error)

	t.Run("ticks bring the venue into its Friday night state", func(t *testing.T) {
		updated, err := env.automation.RunVibeTick(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, updated)

		updated, err = env.automation.RunBusynessTick(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, updated)

		state, err := env.store.GetLiveState(ctx, env.venue.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VibeLateNight, state.Vibe)
		assert.Equal(t, model.BusynessBusy, state.Busyness)
	})

	t.Run("both offers are eligible at BUSY", func(t *testing.T) {
		eligible, err := env.offers.ListEligible(ctx, env.venue.ID, now)
		require.NoError(t, err)
		assert.Len(t, eligible, 2)
	})

	t.Run("redemption lands in the ledger and the counter", func(t *testing.T) {
		redemption, err := env.offers.Redeem(ctx, busyOnly.ID, "user-42", "DEMO", now)
		require.NoError(t, err)
		assert.Equal(t, env.venue.ID, redemption.VenueID)

		stored, err := env.store.GetOffer(ctx, busyOnly.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.RedeemCount)

		var ledger int64
		env.db.Model(&model.OfferRedemption{}).Where("offer_id = ?", busyOnly.ID).Count(&ledger)
		assert.Equal(t, int64(1), ledger)
	})

	t.Run("scenario preset winds the night down", func(t *testing.T) {
		later := now.Add(time.Hour)
		affected, err := env.automation.ApplyScenarioPreset(ctx, automation.ScenarioBusyToQuiet, later)
		require.NoError(t, err)
		assert.Equal(t, 1, affected)

		state, err := env.store.GetLiveState(ctx, env.venue.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BusynessQuiet, state.Busyness)
		assert.Equal(t, model.VibeChill, state.Vibe)

		// The gated offer stops being redeemable the moment the floor empties.
		_, err = env.offers.Redeem(ctx, busyOnly.ID, "user-43", "DEMO", later)
		var eligErr *offers.EligibilityError
		require.ErrorAs(t, err, &eligErr)
		assert.Equal(t, offers.ReasonBusynessNotMet, eligErr.Reason)

		eligible, err := env.offers.ListEligible(ctx, env.venue.ID, later)
		require.NoError(t, err)
		require.Len(t, eligible, 1)
		assert.Equal(t, anyLevel.ID, eligible[0].ID)

		// The failed attempt left no trace.
		stored, err := env.store.GetOffer(ctx, busyOnly.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.RedeemCount)
	})
}

// TestHTTPSurface drives a few endpoints through the full router to
// make sure wiring, status codes and response shapes hold together.
func TestHTTPSurface(t *testing.T) {
	env := setupEnv(t, "http_surface")

	serverCfg := &config.ServerConfig{
		Port:            8080,
		RateLimitPerSec: 100,
		RateLimitBurst:  100,
		CacheTTLSeconds: 1,
	}
	handler := api.NewHandler(env.store, env.schedules, env.offers, env.automation, nil)
	router := api.NewRouter(handler, serverCfg)

	// Windows pinned to the wall clock: HTTP handlers evaluate at time.Now.
	now := time.Now().UTC()
	offer := model.Offer{
		VenueID: env.venue.ID, Title: "Walk-in special", OfferType: model.OfferPercentOff,
		MinBusyness: model.BusynessQuiet,
		StartsAt:    now.Add(-time.Hour), EndsAt: now.Add(time.Hour), IsActive: true,
	}
	require.NoError(t, env.db.Create(&offer).Error)

	t.Run("GET /api/venues", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/venues", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var venues []model.Venue
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &venues))
		require.Len(t, venues, 1)
		assert.Equal(t, "Warehouse 23", venues[0].Name)
		require.NotNil(t, venues[0].LiveState)
		assert.Equal(t, model.BusynessQuiet, venues[0].LiveState.Busyness)
	})

	t.Run("POST /api/offers/{id}/redeem", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/offers/"+strconv.FormatInt(offer.ID, 10)+"/redeem", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success    bool                   `json:"success"`
			Redemption *model.OfferRedemption `json:"redemption"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		require.NotNil(t, body.Redemption)
		assert.Equal(t, "DEMO", body.Redemption.Source)
	})

	t.Run("POST /api/automation/scenario with unknown name", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/automation/scenario",
			strings.NewReader(`{"scenario":"everyone_leaves"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET /api/automation/status", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/automation/status", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var status store.AutomationStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, int64(1), status.ActiveVenues)
		require.NotNil(t, status.LastUpdate)
	})
}
