package files

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which files qualify as the folder's answer
type Mode string

const (
	// ModeLatest accepts any file
	ModeLatest Mode = "latest"
	// ModeOnDate accepts files modified on the target calendar day
	ModeOnDate Mode = "on-date"
	// ModeBeforeDate accepts files modified before the target calendar day
	ModeBeforeDate Mode = "before-date"
)

// ParseMode converts a configuration string into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLatest:
		return ModeLatest, nil
	case ModeOnDate, "today", "today-only":
		return ModeOnDate, nil
	case ModeBeforeDate, "previous-day":
		return ModeBeforeDate, nil
	default:
		return "", fmt.Errorf("unknown selection mode %q", s)
	}
}

// Selection is the file qualification policy applied by the Inspector.
// Date comparisons use calendar days in Location (local time when nil).
type Selection struct {
	Mode     Mode
	Date     time.Time
	Location *time.Location
	// Fallback reports the newest file overall when nothing qualifies by date
	Fallback bool
}

// Latest returns the plain newest-file policy
func Latest() Selection {
	return Selection{Mode: ModeLatest}
}

// OnDate returns a policy accepting files from the given day
func OnDate(day time.Time, fallback bool) Selection {
	return Selection{Mode: ModeOnDate, Date: day, Fallback: fallback}
}

// BeforeDate returns a policy accepting files strictly before the given day
func BeforeDate(day time.Time, fallback bool) Selection {
	return Selection{Mode: ModeBeforeDate, Date: day, Fallback: fallback}
}

// Accepts reports whether a modification time qualifies
func (s Selection) Accepts(t time.Time) bool {
	switch s.Mode {
	case ModeOnDate:
		return s.day(t).Equal(s.day(s.Date))
	case ModeBeforeDate:
		return s.day(t).Before(s.day(s.Date))
	default:
		return true
	}
}

// IsDated reports whether the policy restricts by date
func (s Selection) IsDated() bool {
	return s.Mode == ModeOnDate || s.Mode == ModeBeforeDate
}

// Describe renders the date criterion for notes and logs
func (s Selection) Describe() string {
	switch s.Mode {
	case ModeOnDate:
		return "dated " + s.Date.In(s.location()).Format(time.DateOnly)
	case ModeBeforeDate:
		return "before " + s.Date.In(s.location()).Format(time.DateOnly)
	default:
		return "latest"
	}
}

func (s Selection) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s Selection) day(t time.Time) time.Time {
	y, m, d := t.In(s.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
