// Package timeofday handles wall-clock "HH:MM" values with no date or timezone attached.
// The calendar date always travels separately.
package timeofday

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 24 * 60
	EndOfDay      = "24:00"
)

type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time of day %q: expected HH:MM", e.Value)
}

// ToMinutes converts "HH:MM" (00:00..23:59) into minutes since midnight.
func ToMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, &FormatError{Value: hhmm}
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, &FormatError{Value: hhmm}
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, &FormatError{Value: hhmm}
	}

	return h*60 + m, nil
}

// EndToMinutes is ToMinutes for the end of an interval, where "24:00" also
// closes the day.
func EndToMinutes(hhmm string) (int, error) {
	if hhmm == EndOfDay {
		return MinutesPerDay, nil
	}
	return ToMinutes(hhmm)
}

// FromMinutes formats minutes since midnight, wrapping at 24h.
func FromMinutes(total int) string {
	total %= MinutesPerDay
	if total < 0 {
		total += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// AddMinutes wraps past midnight without carrying a day ("23:30"+45 = "00:15").
// Use EndsBeforeMidnight when a window must stay inside one day.
func AddMinutes(hhmm string, n int) (string, error) {
	start, err := ToMinutes(hhmm)
	if err != nil {
		return "", err
	}
	return FromMinutes(start + n), nil
}

// EndsBeforeMidnight reports whether start+n stays within the same day.
// An end of exactly 24:00 is accepted.
func EndsBeforeMidnight(hhmm string, n int) (bool, error) {
	start, err := ToMinutes(hhmm)
	if err != nil {
		return false, err
	}
	return n >= 0 && start+n <= MinutesPerDay, nil
}

// Overlaps tests half-open intervals [startA,endA) and [startB,endB).
func Overlaps(startA, endA, startB, endB string) (bool, error) {
	a0, err := ToMinutes(startA)
	if err != nil {
		return false, err
	}
	a1, err := ToMinutes(endA)
	if err != nil {
		return false, err
	}
	b0, err := ToMinutes(startB)
	if err != nil {
		return false, err
	}
	b1, err := ToMinutes(endB)
	if err != nil {
		return false, err
	}
	return OverlapsMinutes(a0, a1, b0, b1), nil
}

func OverlapsMinutes(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}
