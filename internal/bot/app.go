package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/bot/config"
	"github.com/dmitrijs2005/farmkeeper/internal/flows"
	"github.com/dmitrijs2005/farmkeeper/internal/health"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/dmitrijs2005/farmkeeper/internal/reminder"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
	"github.com/dmitrijs2005/farmkeeper/internal/telegram"
	"github.com/dmitrijs2005/farmkeeper/internal/vault"
)

// pollBackoff is how long the loop waits after a failed getUpdates call.
const pollBackoff = 5 * time.Second

// textSender adapts the messaging client to the plain-text sender the
// reminder scheduler expects.
type textSender struct {
	api api
}

func (s textSender) SendText(ctx context.Context, chatID int64, text string) error {
	return s.api.SendText(ctx, chatID, text, nil)
}

// App wires the store, vault, flow machine, reminder scheduler, and
// messaging client together and runs the poll loop.
type App struct {
	config    *config.Config
	logger    logging.Logger
	client    *telegram.Client
	bot       *Bot
	scheduler *reminder.Scheduler
	health    *health.Server
	ready     atomic.Bool
}

func NewApp(cfg *config.Config) (*App, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSON(os.Stdout)

	v, err := vault.New(cfg.MasterSecret)
	if err != nil {
		return nil, fmt.Errorf("vault init error: %w", err)
	}

	st := store.New(cfg.DataFile, logger)
	client := telegram.NewClient(cfg.APIBaseURL, cfg.BotToken, cfg.PollTimeout)
	machine := flows.NewMachine(st, v, logger)

	app := &App{
		config:    cfg,
		logger:    logger,
		client:    client,
		bot:       NewBot(client, st, v, machine, logger),
		scheduler: reminder.NewScheduler(st, textSender{api: client}, cfg.ReminderThresholds, logger),
	}

	if cfg.HealthAddr != "" {
		app.health = health.New(cfg.HealthAddr, logger, app.ready.Load)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run polls for updates and sweeps reminders until the context is cancelled
// or a termination signal arrives. Updates are handled in arrival order, so
// per-chat sequencing is preserved.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.health.Start(ctx)
		}()
	}

	app.ready.Store(true)

	var offset int64
	var lastSweep time.Time

	for ctx.Err() == nil {
		if time.Since(lastSweep) >= app.config.SweepInterval {
			if fired := app.scheduler.Sweep(ctx, time.Now()); fired > 0 {
				app.logger.Info(ctx, "reminder sweep finished", "fired", fired)
			}
			lastSweep = time.Now()
		}

		updates, err := app.client.GetUpdates(ctx, offset, app.config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			app.logger.Warn(ctx, "getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(pollBackoff):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			app.bot.HandleUpdate(ctx, u)
		}
	}

	app.ready.Store(false)
	cancelFunc()
	wg.Wait()
	app.logger.Info(ctx, "Stopped.")
}
