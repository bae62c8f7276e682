package primitive

import "time"

// Epoch is the wall clock instant that TimeInstant zero represents.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// TimeInstant is the number of seconds elapsed since Epoch.
type TimeInstant uint32

// SecondsPerDay is used for deadline and vesting arithmetic.
const SecondsPerDay = 86_400

// Now returns the current wall clock time as a TimeInstant.
func Now() TimeInstant {
	return FromTime(time.Now())
}

// FromTime converts a wall clock time into a TimeInstant. Times before the
// epoch map to zero.
func FromTime(t time.Time) TimeInstant {
	secs := t.Unix() - Epoch.Unix()
	if secs < 0 {
		return 0
	}

	return TimeInstant(secs)
}

// AddSeconds returns the instant shifted forward by the number of seconds.
func (t TimeInstant) AddSeconds(secs uint32) TimeInstant {
	return t + TimeInstant(secs)
}

// AddHours returns the instant shifted forward by the number of hours.
func (t TimeInstant) AddHours(hours uint32) TimeInstant {
	return t + TimeInstant(hours*3600)
}

// Since returns the number of seconds between other and t, which is
// negative when other is later.
func (t TimeInstant) Since(other TimeInstant) int64 {
	return int64(t) - int64(other)
}

// Time returns the wall clock time of the instant.
func (t TimeInstant) Time() time.Time {
	return Epoch.Add(time.Duration(t) * time.Second)
}
