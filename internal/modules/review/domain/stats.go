package domain

import (
	"sort"
	"strings"
)

type SubjectStats struct {
	SubjectID       string
	SubjectName     string
	StudyEvents     int
	ReviewsDue      int
	ReviewsDone     int
	ReviewedSeconds int64
}

type Stats struct {
	Today           DateKey
	Streak          int
	CompletionRate  float64
	StudyEvents     int
	Completed       int
	Overdue         int
	DueToday        int
	Upcoming        int
	ReviewedSeconds int64
	QuizAccuracy    float64
	Subjects        []SubjectStats
}

// Summarize derives dashboard statistics from study events and reviews.
// The streak only sees the events passed in; callers reporting on a range
// that does not end today recompute it from the full history.
func Summarize(today DateKey, events []StudyEvent, reviews []Review) Stats {
	stats := Stats{Today: today, StudyEvents: len(events)}
	bySubject := map[string]*SubjectStats{}
	subject := func(id, name string) *SubjectStats {
		entry, ok := bySubject[id]
		if !ok {
			entry = &SubjectStats{SubjectID: id, SubjectName: name}
			bySubject[id] = entry
		}
		return entry
	}

	quizCorrect, quizTotal := 0, 0
	for _, event := range events {
		subject(event.SubjectID, event.SubjectName).StudyEvents++
		if event.Quiz != nil {
			quizCorrect += event.Quiz.Correct
			quizTotal += event.Quiz.Total
		}
	}

	buckets := Classify(today, reviews)
	stats.Completed = len(buckets.Completed)
	stats.Overdue = len(buckets.Overdue)
	stats.DueToday = len(buckets.DueToday)
	stats.Upcoming = len(buckets.Upcoming)
	for _, review := range reviews {
		entry := subject(review.SubjectID, review.SubjectName)
		if review.Completed() {
			entry.ReviewsDone++
			entry.ReviewsDue++
			entry.ReviewedSeconds += review.DurationSeconds
			stats.ReviewedSeconds += review.DurationSeconds
			if review.Quiz != nil {
				quizCorrect += review.Quiz.Correct
				quizTotal += review.Quiz.Total
			}
			continue
		}
		if !review.DueAt.After(today) {
			entry.ReviewsDue++
		}
	}

	stats.Streak = Streak(today, ActiveDays(events))
	stats.CompletionRate = CompletionRate(today, reviews)
	if quizTotal > 0 {
		stats.QuizAccuracy = float64(quizCorrect) / float64(quizTotal)
	}

	stats.Subjects = make([]SubjectStats, 0, len(bySubject))
	for _, entry := range bySubject {
		stats.Subjects = append(stats.Subjects, *entry)
	}
	sort.Slice(stats.Subjects, func(i, j int) bool {
		return strings.ToLower(stats.Subjects[i].SubjectName) < strings.ToLower(stats.Subjects[j].SubjectName)
	})
	return stats
}
