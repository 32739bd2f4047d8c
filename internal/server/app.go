// Package server initializes and runs the registration server: it wires
// the database, spreadsheet and Telegram clients together, and drives
// the background jobs until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/config"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/formsync"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/longterm"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/notify"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/reports"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/scheduler"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/shared/db"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/sheets"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/telegram"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repos        db.RepositoryManager
	siteTZ       *time.Location
	guestService *guests.Service
	longTermSvc  *longterm.Service
	formSyncJob  *formsync.Job
	notifier     *notify.Manager
	reports      *reports.Engine
	scheduler    *scheduler.Scheduler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	siteTZ, err := time.LoadLocation(cfg.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("site timezone %q: %w", cfg.SiteTimezone, err)
	}

	repos, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	// Missing credentials is configuration-fatal only when a spreadsheet
	// is actually configured; otherwise the sheet-backed jobs are no-ops.
	var sheetClient *sheets.Client
	if cfg.SheetsCredentialsFile != "" {
		sheetClient, err = sheets.NewClient(ctx, cfg.SheetsCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("sheets client init: %w", err)
		}
	} else {
		logger.Warn(ctx, "sheets credentials not configured, spreadsheet features disabled")
	}

	var messenger notify.Messenger
	if cfg.TelegramBotToken != "" {
		messenger = telegram.NewClient(cfg.TelegramBotToken, telegram.WithTimeout(cfg.TelegramTimeout))
	} else {
		logger.Warn(ctx, "telegram bot token not configured, notifications disabled")
	}

	pointer := notify.NewMessagePointer(cfg.PointerFile)
	notifier := notify.NewManager(messenger, cfg.TelegramEnabled, cfg.TelegramChatID, cfg.TelegramArchiveChatID,
		pointer, repos.Guests(), repos.Users(), siteTZ, logger)

	var deleter guests.SheetRowDeleter
	if sheetClient != nil {
		deleter = sheetClient
	}
	formSheet := guests.FormSheetRef{SpreadsheetID: cfg.FormSpreadsheetID, SheetGID: cfg.FormSheetGID}
	guestService := guests.NewService(repos.Guests(), notifier, deleter, formSheet, siteTZ, logger)

	longTermSvc := longterm.NewService(repos.LongTerm(), repos.Guests(), siteTZ, logger)

	app := &App{
		config:       cfg,
		logger:       logger,
		repos:        repos,
		siteTZ:       siteTZ,
		guestService: guestService,
		longTermSvc:  longTermSvc,
		notifier:     notifier,
		scheduler:    scheduler.New(logger),
	}

	if sheetClient != nil {
		archives, err := config.LoadArchiveMap(cfg.ArchiveMapFile)
		if err != nil {
			return nil, err
		}
		app.reports = reports.NewEngine(sheetClient, reports.Config{
			LiveSpreadsheetID: cfg.LogSpreadsheetID,
			LiveSheetName:     cfg.LogSheetName,
			ArchiveSheets:     archives,
		}, logger)

		app.formSyncJob = formsync.NewJob(sheetClient, formsync.Config{
			SpreadsheetID: cfg.FormSpreadsheetID,
			SheetName:     cfg.FormSheetName,
			StatusColumn:  cfg.FormStatusColumn,
		}, repos.Users(), repos.Guests(), notifier, siteTZ, logger)
	}

	return app, nil
}

// GuestService exposes the registration lifecycle operations.
func (app *App) GuestService() *guests.Service {
	return app.guestService
}

// Reports exposes the log aggregation engine; nil when the spreadsheet
// backend is not configured.
func (app *App) Reports() *reports.Engine {
	return app.reports
}

func (app *App) registerJobs() {
	if app.formSyncJob != nil {
		app.scheduler.AddInterval("form_sync", app.config.FormSyncInterval, true, app.formSyncJob.Run)
	}

	app.scheduler.AddInterval("long_term_materialize", app.config.LongTermInterval, true, func(ctx context.Context) error {
		_, err := app.longTermSvc.Materialize(ctx)
		return err
	})

	app.scheduler.AddDaily("no_show_sweep", app.config.NoShowSweepHour, app.config.NoShowSweepMinute,
		app.siteTZ, true, func(ctx context.Context) error {
			_, err := app.guestService.ProcessNoShows(ctx)
			return err
		})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the scheduled jobs and blocks until a shutdown signal. A
// tick in flight finishes before Run returns.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.registerJobs()
	app.scheduler.Start(ctx)

	<-ctx.Done()
	app.logger.Info(context.WithoutCancel(ctx), "shutdown signal received, waiting for running jobs")
	app.scheduler.Wait()

	if err := app.repos.Conn().Close(); err != nil {
		app.logger.Error(context.WithoutCancel(ctx), "db close error", "error", err)
	}
	app.logger.Info(context.WithoutCancel(ctx), "app stopped")
}
