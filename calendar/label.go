package calendar

import "time"

// RelativeLabel describes start relative to now, both taken in now's location:
//
//	same date        "Today 15:04"
//	next date        "Tomorrow 15:04"
//	within 7 days    "Monday 15:04"
//	otherwise        "Jan 2"
//
// All-day events use "All day" in place of the clock time.
func RelativeLabel(start, now time.Time, allDay bool) string {
	start = start.In(now.Location())
	clock := start.Format("15:04")
	if allDay {
		clock = "All day"
	}

	switch days := daysBetween(now, start); {
	case days <= 0:
		return "Today " + clock
	case days == 1:
		return "Tomorrow " + clock
	case days < 7:
		return start.Format("Monday") + " " + clock
	default:
		return start.Format("Jan 2")
	}
}

// daysBetween counts calendar dates from a to b, ignoring clock time and DST.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
