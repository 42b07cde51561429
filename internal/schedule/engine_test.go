package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-pulse-backend/internal/model"
)

// 2024-01-05 is a Friday, 2024-01-06 a Saturday, 2024-01-07 a Sunday.
func utc(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func rule(id, day int, start, end string, vibe model.VibeType, priority int) model.VibeScheduleRule {
	return model.VibeScheduleRule{
		ID:        int64(id),
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Vibe:      vibe,
		Priority:  priority,
		IsActive:  true,
	}
}

func TestResolveCurrent_BasicWindow(t *testing.T) {
	rules := []model.VibeScheduleRule{
		rule(1, 5, "18:00", "22:00", model.VibeParty, 0), // Friday evening
	}

	testCases := []struct {
		name     string
		now      time.Time
		expected model.VibeType
		matched  bool
	}{
		{"inside window", utc(5, 19, 0), model.VibeParty, true},
		{"start boundary inclusive", utc(5, 18, 0), model.VibeParty, true},
		{"end boundary inclusive", utc(5, 22, 0), model.VibeParty, true},
		{"before window", utc(5, 17, 59), "", false},
		{"after window", utc(5, 22, 1), "", false},
		{"right window, wrong day", utc(6, 19, 0), "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			vibe, ok := ResolveCurrent(rules, tc.now, time.UTC)
			assert.Equal(t, tc.matched, ok)
			if tc.matched {
				assert.Equal(t, tc.expected, vibe)
			}
		})
	}
}

func TestResolveCurrent_OvernightWrap(t *testing.T) {
	// Friday 22:00 through 02:00 the next morning.
	rules := []model.VibeScheduleRule{
		rule(1, 5, "22:00", "02:00", model.VibeLateNight, 0),
	}

	testCases := []struct {
		name    string
		now     time.Time
		matched bool
	}{
		{"friday late evening", utc(5, 23, 30), true},
		{"saturday early morning continuation", utc(6, 1, 0), true},
		{"saturday after the window closed", utc(6, 3, 0), false},
		{"friday early morning same-day tail", utc(5, 1, 0), true},
		{"thursday night", utc(4, 23, 30), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := ResolveCurrent(rules, tc.now, time.UTC)
			assert.Equal(t, tc.matched, ok)
		})
	}
}

func TestResolveCurrent_PriorityWins(t *testing.T) {
	rules := []model.VibeScheduleRule{
		rule(1, 5, "18:00", "23:00", model.VibeSocial, 1),
		rule(2, 5, "18:00", "23:00", model.VibeParty, 2),
	}

	for i := 0; i < 5; i++ {
		vibe, ok := ResolveCurrent(rules, utc(5, 20, 0), time.UTC)
		require.True(t, ok)
		assert.Equal(t, model.VibeParty, vibe)
	}
}

func TestResolveCurrent_EqualPriorityLowestIDWins(t *testing.T) {
	// Equal priorities resolve to the lowest rule ID, regardless of
	// slice order.
	rules := []model.VibeScheduleRule{
		rule(7, 5, "18:00", "23:00", model.VibeRomantic, 1),
		rule(3, 5, "18:00", "23:00", model.VibeSocial, 1),
		rule(5, 5, "18:00", "23:00", model.VibeParty, 1),
	}

	vibe, ok := ResolveCurrent(rules, utc(5, 20, 0), time.UTC)
	require.True(t, ok)
	assert.Equal(t, model.VibeSocial, vibe)
}

func TestResolveCurrent_InactiveRuleIgnored(t *testing.T) {
	inactive := rule(1, 5, "18:00", "23:00", model.VibeParty, 5)
	inactive.IsActive = false
	rules := []model.VibeScheduleRule{
		inactive,
		rule(2, 5, "18:00", "23:00", model.VibeChill, 0),
	}

	vibe, ok := ResolveCurrent(rules, utc(5, 20, 0), time.UTC)
	require.True(t, ok)
	assert.Equal(t, model.VibeChill, vibe)
}

func TestResolveCurrent_LocalDayNotUTCDay(t *testing.T) {
	// Sunday 22:30 UTC is already Monday 00:30 in a UTC+2 zone; the
	// Monday rule must match and the Sunday rule must not.
	loc := time.FixedZone("UTC+2", 2*60*60)
	rules := []model.VibeScheduleRule{
		rule(1, 1, "00:00", "02:00", model.VibeChill, 0),  // Monday
		rule(2, 0, "22:00", "23:00", model.VibeParty, 0),  // Sunday
	}

	vibe, ok := ResolveCurrent(rules, utc(7, 22, 30), loc)
	require.True(t, ok)
	assert.Equal(t, model.VibeChill, vibe)
}

func TestNextChange_LaterToday(t *testing.T) {
	rules := []model.VibeScheduleRule{
		rule(1, 5, "18:00", "20:00", model.VibeSocial, 0),
		rule(2, 5, "22:00", "02:00", model.VibeLateNight, 0),
	}

	change := NextChange(rules, utc(5, 19, 0), time.UTC)
	require.NotNil(t, change)
	assert.Equal(t, model.VibeLateNight, change.Vibe)
	assert.Equal(t, "22:00", change.StartsAt)
	assert.Equal(t, 5, change.DayOfWeek)
}

func TestNextChange_WalksToNextWeekday(t *testing.T) {
	// Rules only Monday through Thursday; querying on Sunday finds the
	// Monday rule.
	rules := []model.VibeScheduleRule{
		rule(1, 1, "18:00", "22:00", model.VibeChill, 0),
		rule(2, 2, "18:00", "22:00", model.VibeSocial, 0),
		rule(3, 3, "18:00", "22:00", model.VibeParty, 0),
		rule(4, 4, "18:00", "22:00", model.VibeRomantic, 0),
	}

	now := utc(7, 12, 0) // Sunday noon

	_, ok := ResolveCurrent(rules, now, time.UTC)
	assert.False(t, ok, "no rule should match on Sunday")

	change := NextChange(rules, now, time.UTC)
	require.NotNil(t, change)
	assert.Equal(t, model.VibeChill, change.Vibe)
	assert.Equal(t, 1, change.DayOfWeek)
	assert.Equal(t, "18:00", change.StartsAt)
}

func TestNextChange_WrapsToSameDayNextWeek(t *testing.T) {
	// The only rule already started today; the next change is the same
	// rule one week out.
	rules := []model.VibeScheduleRule{
		rule(1, 5, "10:00", "12:00", model.VibeSocial, 0),
	}

	change := NextChange(rules, utc(5, 15, 0), time.UTC)
	require.NotNil(t, change)
	assert.Equal(t, 5, change.DayOfWeek)
	assert.Equal(t, "10:00", change.StartsAt)
}

func TestNextChange_NoActiveRules(t *testing.T) {
	assert.Nil(t, NextChange(nil, utc(5, 12, 0), time.UTC))

	inactive := rule(1, 5, "18:00", "22:00", model.VibeParty, 0)
	inactive.IsActive = false
	assert.Nil(t, NextChange([]model.VibeScheduleRule{inactive}, utc(5, 12, 0), time.UTC))
}

func TestParseClock(t *testing.T) {
	testCases := []struct {
		in      string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"garbage", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		got, err := parseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
		} else {
			require.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.minutes, got, "input %q", tc.in)
		}
	}
}
