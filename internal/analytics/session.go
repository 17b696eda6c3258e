package analytics

import (
	"math"
	"time"
)

// Congress numbering: the 93rd Congress began 1973-01-03 and each congress
// starts on January 3 two years after the previous one.
const (
	epochCongress = 93
	epochYear     = 1973
)

// CongressNumber returns the congress in session on t's UTC calendar date.
func CongressNumber(t time.Time) int {
	d := utcDate(t)
	start := d.Year()
	if start%2 == 0 {
		start--
	} else if d.Before(time.Date(start, time.January, 3, 0, 0, 0, 0, time.UTC)) {
		start -= 2
	}
	return epochCongress + (start-epochYear)/2
}

// CongressStartDate returns January 3 (00:00 UTC) of congress n's first year.
func CongressStartDate(n int) time.Time {
	return time.Date(epochYear+2*(n-epochCongress), time.January, 3, 0, 0, 0, 0, time.UTC)
}

// SessionDayOffset returns whole UTC calendar days from the start of congress
// n to introduced. It is negative when introduced precedes that start.
func SessionDayOffset(introduced time.Time, n int) int {
	diff := utcDate(introduced).Sub(CongressStartDate(n))
	return int(math.Floor(diff.Hours() / 24))
}

// utcDate drops the time of day from t's UTC calendar date.
func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
