package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jmoiron/sqlx"

	catalogin "cadence/internal/modules/catalog/adapter/in"
	catalogout "cadence/internal/modules/catalog/adapter/out"
	catalogdomain "cadence/internal/modules/catalog/domain"
	catalogservice "cadence/internal/modules/catalog/service"
	catalogusecase "cadence/internal/modules/catalog/usecase"
	notifyin "cadence/internal/modules/notify/adapter/in"
	notifyout "cadence/internal/modules/notify/adapter/out"
	notifyport "cadence/internal/modules/notify/port/in"
	notifyservice "cadence/internal/modules/notify/service"
	notifyusecase "cadence/internal/modules/notify/usecase"
	reviewin "cadence/internal/modules/review/adapter/in"
	reviewout "cadence/internal/modules/review/adapter/out"
	reviewport "cadence/internal/modules/review/port/in"
	reviewservice "cadence/internal/modules/review/service"
	reviewusecase "cadence/internal/modules/review/usecase"
	timerin "cadence/internal/modules/timer/adapter/in"
	timerout "cadence/internal/modules/timer/adapter/out"
	timerdomain "cadence/internal/modules/timer/domain"
	timerport "cadence/internal/modules/timer/port/in"
	timerservice "cadence/internal/modules/timer/service"
	timerusecase "cadence/internal/modules/timer/usecase"
	"cadence/internal/platform/clock"
	"cadence/internal/platform/config"
	"cadence/internal/platform/database"
	"cadence/internal/platform/httpserver"
	"cadence/internal/platform/id"
	"cadence/internal/platform/logging"
	uiapp "cadence/internal/ui/app"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	CatalogCLI catalogin.CLIHandler
	ReviewCLI  reviewin.CLIHandler
	TimerCLI   timerin.CLIHandler
	NotifyCLI  notifyin.CLIHandler

	Reviews reviewport.Usecase
	Timer   timerport.Usecase
	// TimerEvents is the view-facing side of the timer used by the TUI.
	TimerEvents timerport.Observer
	Notify      notifyport.Usecase

	catalogHTTP catalogin.HTTPHandler
	reviewHTTP  reviewin.HTTPHandler
	timerHTTP   timerin.HTTPHandler

	timerSvc     *timerservice.TimerService
	timerWatcher *timerout.FSWatcher
	db           *sqlx.DB
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	clk := clock.SystemClock{}
	ids := id.UUID{}

	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// The review store joins against subjects, so the catalog schema goes first.
	catalogStore, err := catalogout.NewSQLiteCatalogStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new catalog store: %w", err)
	}
	catalogUC := catalogusecase.NewInteractor(catalogservice.NewCatalogService(clk, ids, catalogStore, catalogStore, planOf(cfg.Plan)))

	reviewStore, err := reviewout.NewSQLiteReviewStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new review store: %w", err)
	}
	reviewUC := reviewusecase.NewInteractor(
		reviewservice.NewReviewService(clk, ids, reviewStore, reviewout.NewJournalStore(cfg.JournalPath), logger),
		catalogUC,
		cfg.DefaultCycle,
	)

	timerSvc := timerservice.NewTimerService(
		clk,
		timerout.NewFileStateStore(cfg.StatePath),
		timerout.NewReviewCompleter(reviewUC),
		timerdomain.NewEvents(),
		logger,
	)
	timerUC := timerusecase.NewInteractor(timerSvc)

	notifyUC := notifyusecase.NewInteractor(notifyservice.NewNotifyService(
		notifyout.NewFileManifestStore(cfg.DataPath, cfg.PluginsPath),
		notifyout.NewGRPCHost(logger),
		notifyout.NewReviewDigestSource(reviewUC),
		logger,
	))

	return &App{
		Config:       cfg,
		Logger:       logger,
		CatalogCLI:   catalogin.NewCLIHandler(catalogUC),
		ReviewCLI:    reviewin.NewCLIHandler(reviewUC),
		TimerCLI:     timerin.NewCLIHandler(timerUC),
		NotifyCLI:    notifyin.NewCLIHandler(notifyUC),
		Reviews:      reviewUC,
		Timer:        timerUC,
		TimerEvents:  timerUC,
		Notify:       notifyUC,
		catalogHTTP:  catalogin.NewHTTPHandler(catalogUC),
		reviewHTTP:   reviewin.NewHTTPHandler(reviewUC),
		timerHTTP:    timerin.NewHTTPHandler(timerUC),
		timerSvc:     timerSvc,
		timerWatcher: timerout.NewFSWatcher(cfg.StatePath, logger),
		db:           db,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// WatchTimer follows timer changes made by other processes until ctx ends.
func (a *App) WatchTimer(ctx context.Context) error {
	return a.timerSvc.Watch(ctx, a.timerWatcher)
}

// Serve runs the HTTP API until ctx ends.
func (a *App) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.Config.HTTPAddr
	}
	srv := httpserver.New(addr, a.Logger)
	v1 := srv.Group("/v1")
	a.catalogHTTP.Register(v1)
	a.reviewHTTP.Register(v1)
	a.timerHTTP.Register(v1)

	go func() {
		if err := a.WatchTimer(ctx); err != nil {
			a.Logger.Warn("timer watcher stopped", "error", err)
		}
	}()
	return srv.Run(ctx)
}

// NotifyDaemon builds the scheduled digest sender from config.
func (a *App) NotifyDaemon() (*notifyin.Daemon, error) {
	return notifyin.NewDaemon(a.Notify, a.Config.Notify.Schedule, a.Logger)
}

// RunTUI runs the terminal dashboard until the user quits or ctx ends.
// Timer changes made by other cadence processes show up live.
func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := app.WatchTimer(ctx); err != nil {
			app.Logger.Warn("timer watcher stopped", "error", err)
		}
	}()

	model := uiapp.NewModel(app.Reviews, app.Timer, app.TimerEvents)
	defer model.Close()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}

func planOf(cfg config.PlanConfig) catalogdomain.Plan {
	if cfg.Unlimited() {
		return catalogdomain.Plan{Tier: catalogdomain.TierPro}
	}
	return catalogdomain.Plan{
		Tier:          catalogdomain.TierFree,
		SubjectLimit:  cfg.FreeSubjectLimit,
		TemplateLimit: cfg.FreeTemplateLimit,
	}
}
