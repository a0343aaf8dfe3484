package in

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"cadence/internal/modules/notify/dto"
	notifyin "cadence/internal/modules/notify/port/in"
	"cadence/internal/platform/logging"
)

// Daemon sends the daily digest on a cron schedule.
type Daemon struct {
	usecase  notifyin.Usecase
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewDaemon(usecase notifyin.Usecase, schedule string, logger *slog.Logger) (*Daemon, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid notify schedule %q: %w", schedule, err)
	}
	return &Daemon{
		usecase:  usecase,
		schedule: schedule,
		logger:   logging.Component(logger, "notify.daemon"),
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}, nil
}

// Run blocks until ctx is done, then waits for a running send to finish.
func (d *Daemon) Run(ctx context.Context) error {
	if _, err := d.cron.AddFunc(d.schedule, func() { d.SendOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	d.cron.Start()
	d.logger.Info("notify daemon started", "schedule", d.schedule)

	<-ctx.Done()
	<-d.cron.Stop().Done()
	d.logger.Info("notify daemon stopped")
	return nil
}

// SendOnce runs one scheduled delivery and logs its outcome.
func (d *Daemon) SendOnce(ctx context.Context) {
	out, err := d.usecase.Send(ctx, dto.SendInput{})
	if err != nil {
		d.logger.Warn("digest send failed", "error", err)
		return
	}
	if out.Skipped {
		d.logger.Debug("nothing due, digest skipped", "date", out.Digest.Date)
		return
	}
	delivered := 0
	for _, delivery := range out.Deliveries {
		if delivery.Delivered {
			delivered++
		}
	}
	d.logger.Info("digest sent", "date", out.Digest.Date, "delivered", delivered, "notifiers", len(out.Deliveries))
}
