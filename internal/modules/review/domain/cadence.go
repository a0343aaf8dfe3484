package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultOffsets is used when a study event is logged without any template.
var DefaultOffsets = []int{1, 7, 15}

// ComputeDueDates maps a study day onto one due day per offset, keeping
// the order of offsets. Offsets below one are skipped.
func ComputeDueDates(studiedAt DateKey, offsets []int) []DateKey {
	out := make([]DateKey, 0, len(offsets))
	for _, offset := range offsets {
		if offset <= 0 {
			continue
		}
		out = append(out, studiedAt.AddDays(offset))
	}
	return out
}

// DaysLate is the number of whole days today is past due, never negative.
func DaysLate(today, due DateKey) int {
	days := DaysBetween(due, today)
	if days < 0 {
		return 0
	}
	return days
}

// Defer pushes due forward by days. Anything below one day defers by one.
func Defer(due DateKey, days int) DateKey {
	if days < 1 {
		days = 1
	}
	return due.AddDays(days)
}

// NormalizeOffsets drops non-positive values and duplicates and sorts the
// rest ascending.
func NormalizeOffsets(offsets []int) []int {
	seen := make(map[int]struct{}, len(offsets))
	out := make([]int, 0, len(offsets))
	for _, offset := range offsets {
		if offset <= 0 {
			continue
		}
		if _, ok := seen[offset]; ok {
			continue
		}
		seen[offset] = struct{}{}
		out = append(out, offset)
	}
	sort.Ints(out)
	return out
}

// ParseOffsets reads a comma separated list such as "1,7,15".
func ParseOffsets(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("offset %q is not a number", part)
		}
		values = append(values, value)
	}
	return NormalizeOffsets(values), nil
}

func FormatOffsets(offsets []int) string {
	parts := make([]string, 0, len(offsets))
	for _, offset := range offsets {
		parts = append(parts, strconv.Itoa(offset))
	}
	return strings.Join(parts, ",")
}
