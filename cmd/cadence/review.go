package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/bootstrap"
	reviewdto "cadence/internal/modules/review/dto"
)

func newStudyCmd(dataPath *string) *cobra.Command {
	study := &cobra.Command{Use: "study", Short: "Study log"}

	var subject, topic, at, templateID, notes string
	var quizCorrect, quizTotal int
	logCmd := &cobra.Command{
		Use:   "log --subject <id|name> --topic <text>",
		Short: "Record a study session and schedule its reviews",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(subject) == "" || strings.TrimSpace(topic) == "" {
				return fmt.Errorf("--subject and --topic are required")
			}
			studiedAt, err := parseWhen(at)
			if err != nil {
				return err
			}
			correct, total, err := quizFlags(cmd, quizCorrect, quizTotal)
			if err != nil {
				return err
			}
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				out, err := app.ReviewCLI.LogStudy(context.Background(), subject, topic, studiedAt, templateID, notes, correct, total)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged %s (%s) subject=%s note=%s\n", out.Topic, out.ID, out.SubjectName, out.NotePath)
				for _, r := range out.Reviews {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  review %s due=%s day=%d\n", r.ID, r.DueAt, r.Offset)
				}
				return nil
			})
		},
	}
	logCmd.Flags().StringVar(&subject, "subject", "", "subject id or name")
	logCmd.Flags().StringVar(&topic, "topic", "", "what was studied")
	logCmd.Flags().StringVar(&at, "at", "", "when it was studied (RFC3339 or YYYY-MM-DD, default now)")
	logCmd.Flags().StringVar(&templateID, "template", "", "revision template id (default template when empty)")
	logCmd.Flags().StringVar(&notes, "notes", "", "free-form notes for the journal")
	logCmd.Flags().IntVar(&quizCorrect, "quiz-correct", 0, "quiz answers correct")
	logCmd.Flags().IntVar(&quizTotal, "quiz-total", 0, "quiz questions asked")

	study.AddCommand(logCmd)
	return study
}

func newReviewCmd(dataPath *string) *cobra.Command {
	review := &cobra.Command{Use: "review", Short: "Scheduled reviews"}

	var today string
	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Show overdue, due-today, upcoming and completed reviews",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				out, err := app.ReviewCLI.Dashboard(context.Background(), today)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "today: %s\n", out.Today)
				for _, bucket := range []struct {
					name    string
					reviews []reviewdto.ReviewOutput
				}{
					{"overdue", out.Overdue},
					{"due today", out.DueToday},
					{"upcoming", out.Upcoming},
					{"completed", out.Completed},
				} {
					_, _ = fmt.Fprintf(w, "%s (%d)\n", bucket.name, len(bucket.reviews))
					for _, r := range bucket.reviews {
						printReviewLine(cmd, r)
					}
				}
				return nil
			})
		},
	}
	dashboard.Flags().StringVar(&today, "today", "", "date key to classify against (default today)")

	var from, to, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List reviews due in a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				reviews, err := app.ReviewCLI.ListReviews(context.Background(), from, to, status)
				if err != nil {
					return err
				}
				if len(reviews) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no reviews")
					return nil
				}
				for _, r := range reviews {
					printReviewLine(cmd, r)
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&from, "from", "", "first due date (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "last due date (YYYY-MM-DD)")
	list.Flags().StringVar(&status, "status", "", "pending|completed|deferred")

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <review-id>",
		Short: "Show a review with its schedule and journal note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				d, err := app.ReviewCLI.GetReview(context.Background(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(d)
				}
				r := d.Review
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nsubject: %s\ntopic: %s\nstudied: %s\ndue: %s\nstatus: %s\nnote: %s\n",
					r.ID, r.SubjectName, r.Topic, r.StudiedAt, r.DueAt, r.Status, d.NotePath)
				if r.CompletedAt != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed: %s duration=%s paused=%s quiz=%s\n",
						r.CompletedAt.Format("2006-01-02T15:04:05Z07:00"), formatSeconds(r.DurationSeconds), formatSeconds(r.PausedSeconds), quizString(r.QuizCorrect, r.QuizTotal))
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schedule:")
				for _, s := range d.Schedule {
					printReviewLine(cmd, s)
				}
				return nil
			})
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	var days int
	deferCmd := &cobra.Command{
		Use:   "defer <review-id>",
		Short: "Push a review back by some days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				r, err := app.ReviewCLI.Defer(context.Background(), args[0], days)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deferred %s to %s\n", r.ID, r.DueAt)
				return nil
			})
		},
	}
	deferCmd.Flags().IntVar(&days, "days", 1, "days to defer by")

	reindex := &cobra.Command{
		Use:   "reindex",
		Short: "Rewrite missing journal notes from the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				out, err := app.ReviewCLI.Reindex(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "study_events=%d notes_written=%d\n", out.StudyEvents, out.NotesWritten)
				return nil
			})
		},
	}

	review.AddCommand(dashboard, list, show, deferCmd, reindex)
	return review
}

func newStatsCmd(dataPath *string) *cobra.Command {
	var today, from, to string
	var asJSON bool
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Streak, completion rate and per-subject totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				s, err := app.ReviewCLI.Stats(context.Background(), today, from, to)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(s)
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "today=%s streak=%d completion=%.0f%% quiz=%.0f%% reviewed=%s\n",
					s.Today, s.Streak, s.CompletionRate*100, s.QuizAccuracy*100, formatSeconds(s.ReviewedSeconds))
				_, _ = fmt.Fprintf(w, "study_events=%d completed=%d overdue=%d due_today=%d upcoming=%d\n",
					s.StudyEvents, s.Completed, s.Overdue, s.DueToday, s.Upcoming)
				for _, sub := range s.Subjects {
					_, _ = fmt.Fprintf(w, "%s\t%s\tstudied=%d\tdue=%d\tdone=%d\ttime=%s\n",
						sub.SubjectID, sub.SubjectName, sub.StudyEvents, sub.ReviewsDue, sub.ReviewsDone, formatSeconds(sub.ReviewedSeconds))
				}
				return nil
			})
		},
	}
	stats.Flags().StringVar(&today, "today", "", "date key (default today)")
	stats.Flags().StringVar(&from, "from", "", "first day of the range")
	stats.Flags().StringVar(&to, "to", "", "last day of the range")
	stats.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return stats
}

func printReviewLine(cmd *cobra.Command, r reviewdto.ReviewOutput) {
	late := ""
	if r.DaysLate > 0 {
		late = fmt.Sprintf("\t%dd late", r.DaysLate)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%s\t%s: %s\tday %d\t%s%s\n", r.ID, r.DueAt, r.SubjectName, r.Topic, r.Offset, r.Status, late)
}
