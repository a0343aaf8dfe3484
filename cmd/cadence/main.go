package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cadence/internal/bootstrap"
	"cadence/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataPath string

	root := &cobra.Command{
		Use:           "cadence",
		Short:         "Spaced-repetition study tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataPath, "data", ".", "data directory (config, database, journal)")

	root.AddCommand(newTUICmd(&dataPath))
	root.AddCommand(newServeCmd(&dataPath))
	root.AddCommand(newStudyCmd(&dataPath))
	root.AddCommand(newReviewCmd(&dataPath))
	root.AddCommand(newStatsCmd(&dataPath))
	root.AddCommand(newTimerCmd(&dataPath))
	root.AddCommand(newSubjectCmd(&dataPath))
	root.AddCommand(newTemplateCmd(&dataPath))
	root.AddCommand(newPlanCmd(&dataPath))
	root.AddCommand(newNotifyCmd(&dataPath))
	return root
}

func loadApp(ctx context.Context, dataPath string) (*bootstrap.App, error) {
	cfg, err := config.New(dataPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg)
}

// withApp builds the app for one command and closes it afterwards.
func withApp(ctx context.Context, dataPath string, fn func(*bootstrap.App) error) error {
	app, err := loadApp(ctx, dataPath)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newTUICmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the cadence terminal dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()
			return withApp(ctx, *dataPath, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(ctx, app)
			})
		},
	}
}

func newServeCmd(dataPath *string) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()
			return withApp(ctx, *dataPath, func(app *bootstrap.App) error {
				return app.Serve(ctx, addr)
			})
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http.addr from config)")
	return serve
}

// ─── shared flag helpers ─────────────────────────────────────────────────────

// quizFlags returns the quiz totals only when both flags were given.
func quizFlags(cmd *cobra.Command, correct, total int) (*int, *int, error) {
	hasCorrect := cmd.Flags().Changed("quiz-correct")
	hasTotal := cmd.Flags().Changed("quiz-total")
	switch {
	case !hasCorrect && !hasTotal:
		return nil, nil, nil
	case hasCorrect != hasTotal:
		return nil, nil, fmt.Errorf("--quiz-correct and --quiz-total go together")
	}
	return &correct, &total, nil
}

// parseWhen accepts RFC3339 or a local YYYY-MM-DD; empty means now.
func parseWhen(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339 or YYYY-MM-DD", raw)
	}
	return t, nil
}

func parseOffsets(raw string) ([]int, error) {
	var offsets []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q", part)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

func formatSeconds(s int64) string {
	return (time.Duration(s) * time.Second).String()
}

func quizString(correct, total *int) string {
	if correct == nil || total == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", *correct, *total)
}
