package analytics

import (
	"strconv"
	"strings"
	"time"
)

// MaxWindowDays is the widest window that still has a lower bound. Anything
// wider reaches back past year 1 and is treated as unbounded.
const MaxWindowDays = 3_650_000

// Window is either unbounded or "the last N days". The zero value is unbounded.
type Window struct {
	days int
}

// Unbounded matches every record.
func Unbounded() Window {
	return Window{}
}

// Days matches records dated within the last n days. Non-positive n is unbounded.
func Days(n int) Window {
	if n <= 0 || n > MaxWindowDays {
		return Unbounded()
	}
	return Window{days: n}
}

// ParseWindow reads the raw "days" query value. Anything that is not a
// positive base-10 integer yields an unbounded window instead of an error.
func ParseWindow(raw string) Window {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Unbounded()
	}
	return Days(n)
}

// Bounded reports whether the window has a lower bound.
func (w Window) Bounded() bool {
	return w.days > 0
}

// DayCount returns N for a bounded window and 0 otherwise.
func (w Window) DayCount() int {
	return w.days
}

// Since returns the inclusive lower bound relative to now.
func (w Window) Since(now time.Time) (time.Time, bool) {
	if !w.Bounded() {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -w.days), true
}

func (w Window) String() string {
	if !w.Bounded() {
		return "all"
	}
	return strconv.Itoa(w.days) + "d"
}
