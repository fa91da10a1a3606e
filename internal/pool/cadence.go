package pool

import "time"

// Movement cadence defaults in days, derived from the functional groups a
// movement belongs to. Heavy compound lifts recover slowest, cardio fastest.
const (
	defaultIntervalHeavyCompound = 7
	defaultIntervalHighIntensity = 2
	defaultIntervalBodyweight    = 3
	defaultIntervalCardio        = 1
)

// normalizeDate truncates a timestamp to the midnight of its own calendar
// day so that cadence math counts whole days instead of 24-hour windows.
func normalizeDate(t time.Time) time.Time {
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		0, 0, 0, 0, time.UTC,
	)
}

// daysBetween returns the number of whole calendar days from an earlier date
// to a later one. Stored timestamps are UTC while callers pass wall-clock
// times, so the earlier moment is moved onto the later one's calendar before
// comparing date fields. A workout logged at 23:59 still counts as one day
// old the next morning, and never ages across a zone's midnight boundary
// within the same local day.
func daysBetween(from, to time.Time) int {
	fromDay := normalizeDate(from.In(to.Location()))
	toDay := normalizeDate(to)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

// isAvailable reports whether an entity with the given cadence may be
// performed on asOf. A nil lastPerformed means the entity has never been done
// and is always available.
func isAvailable(cadenceDays int, lastPerformed *time.Time, asOf time.Time) bool {
	if lastPerformed == nil {
		return true
	}
	return daysBetween(*lastPerformed, asOf) >= cadenceDays
}

// defaultIntervalDays derives the cadence default for a movement from its
// functional groups. When a movement spans several groups the slowest
// recovery wins, except cardio which always allows daily work.
func defaultIntervalDays(m Movement) int {
	if m.InGroup(GroupCardio) {
		return defaultIntervalCardio
	}
	interval := 0
	for _, g := range m.Groups {
		var candidate int
		switch g {
		case GroupDeadlift, GroupSquat, GroupOlympic:
			candidate = defaultIntervalHeavyCompound
		case GroupPress, GroupPull, GroupKettlebell, GroupGymnastic:
			candidate = defaultIntervalHighIntensity
		case GroupBodyweight, GroupAccessory, GroupCore:
			candidate = defaultIntervalBodyweight
		case GroupCardio:
			candidate = defaultIntervalCardio
		}
		if candidate > interval {
			interval = candidate
		}
	}
	return interval
}
