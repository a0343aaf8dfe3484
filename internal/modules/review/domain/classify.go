package domain

import (
	"sort"
	"strings"
)

type Buckets struct {
	Overdue   []Review
	DueToday  []Review
	Upcoming  []Review
	Completed []Review
}

// Classify partitions reviews by comparing due days against today. Only
// the status decides whether a review is completed; pending and deferred
// reviews are placed by due day alone.
func Classify(today DateKey, reviews []Review) Buckets {
	out := Buckets{}
	for _, review := range reviews {
		switch {
		case review.Completed():
			out.Completed = append(out.Completed, review)
		case review.DueAt.Before(today):
			out.Overdue = append(out.Overdue, review)
		case review.DueAt == today:
			out.DueToday = append(out.DueToday, review)
		default:
			out.Upcoming = append(out.Upcoming, review)
		}
	}
	SortByDue(out.Overdue)
	SortByDue(out.DueToday)
	SortByDue(out.Upcoming)
	sort.SliceStable(out.Completed, func(i, j int) bool {
		return out.Completed[i].CompletedAt.After(out.Completed[j].CompletedAt)
	})
	return out
}

func SortByDue(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if a.DueAt != b.DueAt {
			return a.DueAt < b.DueAt
		}
		if !strings.EqualFold(a.SubjectName, b.SubjectName) {
			return strings.ToLower(a.SubjectName) < strings.ToLower(b.SubjectName)
		}
		if !strings.EqualFold(a.Topic, b.Topic) {
			return strings.ToLower(a.Topic) < strings.ToLower(b.Topic)
		}
		return a.ID < b.ID
	})
}

// ActiveDays is the set of days with at least one study event.
func ActiveDays(events []StudyEvent) map[DateKey]struct{} {
	active := make(map[DateKey]struct{}, len(events))
	for _, event := range events {
		active[event.Day()] = struct{}{}
	}
	return active
}

// Streak counts consecutive active days ending today.
func Streak(today DateKey, active map[DateKey]struct{}) int {
	streak := 0
	for day := today; ; day = day.AddDays(-1) {
		if _, ok := active[day]; !ok {
			return streak
		}
		streak++
	}
}

// CompletionRate is completed reviews over reviews due on or before today.
// Reviews completed ahead of their due day still count.
func CompletionRate(today DateKey, reviews []Review) float64 {
	completed, due := 0, 0
	for _, review := range reviews {
		switch {
		case review.Completed():
			completed++
			due++
		case !review.DueAt.After(today):
			due++
		}
	}
	if due == 0 {
		return 0
	}
	return float64(completed) / float64(due)
}
