package main

import (
	"fmt"
	"time"

	apperrors "dropwatch/internal/errors"
)

// maxReportDays bounds a --start-date/--end-date range
const maxReportDays = 366

// parseDay reads a YYYY-MM-DD flag value as midnight in loc
func parseDay(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(
			fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", value))
	}
	return day, nil
}

// reportDays returns the calendar days to report on, oldest first.
//
// --date names a single day. A range needs at least one of --start-date and
// --end-date; the missing end takes the value of the other. Without any date
// flag the only day is today.
func reportDays(date, start, end string, now time.Time) ([]time.Time, error) {
	loc := now.Location()

	if date != "" {
		day, err := parseDay(date, loc)
		if err != nil {
			return nil, err
		}
		return []time.Time{day}, nil
	}

	if start == "" && end == "" {
		y, m, d := now.Date()
		return []time.Time{time.Date(y, m, d, 0, 0, 0, 0, loc)}, nil
	}
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}

	first, err := parseDay(start, loc)
	if err != nil {
		return nil, err
	}
	last, err := parseDay(end, loc)
	if err != nil {
		return nil, err
	}
	if first.After(last) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("start date %s is after end date %s", start, end))
	}

	var days []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if len(days) == maxReportDays {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("date range %s to %s exceeds %d days", start, end, maxReportDays))
		}
		days = append(days, day)
	}
	return days, nil
}
