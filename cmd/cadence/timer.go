package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/bootstrap"
	timerdto "cadence/internal/modules/timer/dto"
)

func newTimerCmd(dataPath *string) *cobra.Command {
	timer := &cobra.Command{Use: "timer", Short: "Review timer shared with the dashboard"}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the timer state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				s, err := app.TimerCLI.State(context.Background())
				if err != nil {
					return err
				}
				printTimerState(cmd, s)
				return nil
			})
		},
	}

	start := &cobra.Command{
		Use:   "start <review-id>",
		Short: "Start (or resume) timing a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				out, err := app.TimerCLI.Start(context.Background(), args[0])
				if err != nil {
					return err
				}
				if out.AlreadyActive {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "already running")
				}
				printTimerState(cmd, out.State)
				return nil
			})
		},
	}

	simple := func(use, short string, run func(context.Context, *bootstrap.App) (timerdto.CommandOutput, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
					out, err := run(context.Background(), app)
					if err != nil {
						return err
					}
					if !out.Changed {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
					}
					printTimerState(cmd, out.State)
					return nil
				})
			},
		}
	}

	pause := simple("pause", "Pause the running timer", func(ctx context.Context, app *bootstrap.App) (timerdto.CommandOutput, error) {
		return app.TimerCLI.Pause(ctx)
	})
	resume := simple("resume", "Resume a paused timer", func(ctx context.Context, app *bootstrap.App) (timerdto.CommandOutput, error) {
		return app.TimerCLI.Resume(ctx)
	})
	finish := simple("finish", "Ask to finish; confirm or cancel next", func(ctx context.Context, app *bootstrap.App) (timerdto.CommandOutput, error) {
		return app.TimerCLI.Finish(ctx)
	})
	cancel := simple("cancel", "Keep going after a finish request", func(ctx context.Context, app *bootstrap.App) (timerdto.CommandOutput, error) {
		return app.TimerCLI.Cancel(ctx)
	})
	discard := simple("discard", "Drop the session and any unsaved finish", func(ctx context.Context, app *bootstrap.App) (timerdto.CommandOutput, error) {
		return app.TimerCLI.Discard(ctx)
	})

	var quizCorrect, quizTotal int
	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the finish and save the review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			correct, total, err := quizFlags(cmd, quizCorrect, quizTotal)
			if err != nil {
				return err
			}
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				s, err := app.TimerCLI.Confirm(context.Background(), correct, total)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "review saved")
				printTimerState(cmd, s)
				return nil
			})
		},
	}
	confirm.Flags().IntVar(&quizCorrect, "quiz-correct", 0, "quiz answers correct")
	confirm.Flags().IntVar(&quizTotal, "quiz-total", 0, "quiz questions asked")

	timer.AddCommand(status, start, pause, resume, finish, cancel, confirm, discard)
	return timer
}

func printTimerState(cmd *cobra.Command, s timerdto.StateOutput) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "phase=%s", s.Phase)
	if s.ReviewID != "" {
		_, _ = fmt.Fprintf(w, " review=%s elapsed=%s paused=%s", s.ReviewID, formatSeconds(s.ElapsedSeconds), formatSeconds(s.PausedSeconds))
	}
	if s.Pending != nil {
		_, _ = fmt.Fprintf(w, " pending=%s duration=%s", s.Pending.ReviewID, formatSeconds(s.Pending.DurationSeconds))
	}
	_, _ = fmt.Fprintln(w)
}
