package schedule

import (
	"fmt"
	"sort"
	"time"

	"venue-pulse-backend/internal/model"
)

// Change describes the next scheduled vibe change for a venue.
type Change struct {
	Vibe      model.VibeType `json:"vibe"`
	StartsAt  string         `json:"startsAt"`
	DayOfWeek int            `json:"dayOfWeek"`
}

// parseClock converts a local "HH:MM" string to minutes since midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("unparsable time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

// localClock converts an instant to (day-of-week, minutes since
// midnight) in the given zone. Day-of-week and time-of-day always come
// from the same zone; mixing UTC days with local times is exactly the
// defect this package exists to avoid.
func localClock(now time.Time, loc *time.Location) (int, int) {
	local := now.In(loc)
	return int(local.Weekday()), local.Hour()*60 + local.Minute()
}

// matches reports whether the rule covers the given local day and
// minute. Overnight rules (end < start) wrap past midnight: they cover
// the late half of their own day and the early half of the following
// day.
func matches(rule model.VibeScheduleRule, day, minute int) bool {
	if !rule.IsActive {
		return false
	}
	start, err := parseClock(rule.StartTime)
	if err != nil {
		return false
	}
	end, err := parseClock(rule.EndTime)
	if err != nil {
		return false
	}

	if end >= start {
		return rule.DayOfWeek == day && minute >= start && minute <= end
	}

	// Overnight window.
	if rule.DayOfWeek == day {
		return minute >= start || minute <= end
	}
	if (rule.DayOfWeek+1)%7 == day {
		// Continuation of the previous night.
		return minute <= end
	}
	return false
}

// ResolveCurrent computes the single active vibe for the given instant,
// or false when no rule matches. When several rules match, the highest
// priority wins; equal priorities fall back to the lowest rule ID so
// resolution is deterministic regardless of insertion order.
func ResolveCurrent(rules []model.VibeScheduleRule, now time.Time, loc *time.Location) (model.VibeType, bool) {
	day, minute := localClock(now, loc)

	var best *model.VibeScheduleRule
	for i := range rules {
		rule := &rules[i]
		if !matches(*rule, day, minute) {
			continue
		}
		if best == nil || rule.Priority > best.Priority ||
			(rule.Priority == best.Priority && rule.ID < best.ID) {
			best = rule
		}
	}

	if best == nil {
		return "", false
	}
	return best.Vibe, true
}

// NextChange returns the next scheduled vibe change at or after now:
// first the earliest rule later today, then the earliest rule on each
// following day, wrapping after seven days. Returns nil when the venue
// has no active rules at all.
func NextChange(rules []model.VibeScheduleRule, now time.Time, loc *time.Location) *Change {
	day, minute := localClock(now, loc)

	active := make([]model.VibeScheduleRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if _, err := parseClock(rule.StartTime); err != nil {
			continue
		}
		active = append(active, rule)
	}
	if len(active) == 0 {
		return nil
	}

	// Earliest start first; ties go to the higher priority, then the
	// lower ID, mirroring ResolveCurrent.
	sort.Slice(active, func(i, j int) bool {
		si, _ := parseClock(active[i].StartTime)
		sj, _ := parseClock(active[j].StartTime)
		if si != sj {
			return si < sj
		}
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].ID < active[j].ID
	})

	// Remaining rules later today.
	for _, rule := range active {
		start, _ := parseClock(rule.StartTime)
		if rule.DayOfWeek == day && start > minute {
			return &Change{Vibe: rule.Vibe, StartsAt: rule.StartTime, DayOfWeek: rule.DayOfWeek}
		}
	}

	// Walk forward day by day, wrapping after a week.
	for i := 1; i <= 7; i++ {
		checkDay := (day + i) % 7
		for _, rule := range active {
			if rule.DayOfWeek == checkDay {
				return &Change{Vibe: rule.Vibe, StartsAt: rule.StartTime, DayOfWeek: rule.DayOfWeek}
			}
		}
	}

	return nil
}
