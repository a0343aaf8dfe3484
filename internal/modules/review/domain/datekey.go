package domain

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// DateKey is a calendar day in YYYY-MM-DD form with no timezone attached.
// Keys of the same width compare correctly as strings.
type DateKey string

// KeyOf returns the calendar day of t in t's own location.
func KeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

func ParseDateKey(raw string) (DateKey, error) {
	t, err := time.Parse(dateKeyLayout, raw)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", raw, err)
	}
	return KeyOf(t), nil
}

func (k DateKey) String() string {
	return string(k)
}

func (k DateKey) Valid() bool {
	_, err := time.Parse(dateKeyLayout, string(k))
	return err == nil
}

// midnight anchors the key at UTC midnight so day arithmetic never crosses
// a daylight saving transition.
func (k DateKey) midnight() time.Time {
	t, _ := time.Parse(dateKeyLayout, string(k))
	return t
}

func (k DateKey) AddDays(days int) DateKey {
	return KeyOf(k.midnight().AddDate(0, 0, days))
}

func (k DateKey) Before(other DateKey) bool {
	return k < other
}

func (k DateKey) After(other DateKey) bool {
	return k > other
}

// DaysBetween counts whole calendar days from a to b; negative when b is
// earlier than a.
func DaysBetween(a, b DateKey) int {
	return int(b.midnight().Sub(a.midnight()).Hours() / 24)
}
