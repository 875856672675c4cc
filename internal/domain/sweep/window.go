package sweep

import "time"

const minutesPerWeek = 7 * 24 * 60

// Window is a weekly UTC interval. A window whose close is earlier in the week
// than its open wraps over Sunday.
type Window struct {
	OpenDay   time.Weekday
	OpenHour  int
	CloseDay  time.Weekday
	CloseHour int
}

func weekMinute(day time.Weekday, hour, minute int) int {
	return (int(day)*24+hour)*60 + minute
}

// Contains reports whether t falls inside the window. Open and close at the
// same instant means the window is disabled.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	open := weekMinute(w.OpenDay, w.OpenHour, 0)
	closing := weekMinute(w.CloseDay, w.CloseHour, 0)
	now := weekMinute(t.Weekday(), t.Hour(), t.Minute())
	switch {
	case open == closing:
		return false
	case open < closing:
		return now >= open && now < closing
	default:
		return now >= open || now < closing
	}
}

// Length is the time between opening and closing.
func (w Window) Length() time.Duration {
	open := weekMinute(w.OpenDay, w.OpenHour, 0)
	closing := weekMinute(w.CloseDay, w.CloseHour, 0)
	return time.Duration((closing-open+minutesPerWeek)%minutesPerWeek) * time.Minute
}

// Days is the window length rounded up to whole days, the lifetime of a
// weekend slot.
func (w Window) Days() int {
	return int((w.Length() + 24*time.Hour - 1) / (24 * time.Hour))
}
