package app

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"hwbot/internal/notifier"
	"hwbot/internal/poller"
	"hwbot/internal/practicum"
	telegram "hwbot/internal/transport/telegram/adapter"
	logx "hwbot/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *ConfigManager
	sup  *Supervisor

	log  logx.Logger
	logs *logx.Service

	adapter *telegram.Adapter
	notif   *notifier.Service
	client  *practicum.Client
	poller  *poller.Poller

	// sdNotify reports state to systemd; a no-op outside a systemd unit.
	sdNotify func(state string)
}

// NewApp loads the config and builds every component. It performs no network
// I/O. A missing credential yields an error wrapping ErrMissingCredentials.
func NewApp(cfgPath string) (*App, error) {
	cfgm := NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg))
	log = log.With(logx.String("comp", "app"))

	adCfg, err := mapAdapterConfig(cfg)
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(adCfg, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	pcfg, err := mapPracticumConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := practicum.New(pcfg, log.With(logx.String("comp", "practicum")))
	if err != nil {
		return nil, err
	}

	notif := notifier.New(mapNotifierConfig(cfg), ad, log.With(logx.String("comp", "notifier")))

	a := &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		adapter: ad,
		notif:   notif,
		client:  client,
	}
	a.sdNotify = func(state string) {
		if _, err := daemon.SdNotify(false, state); err != nil {
			a.log.Debug("sd_notify failed", logx.String("state", state), logx.Err(err))
		}
	}

	pollCfg, err := mapPollerConfig(cfg)
	if err != nil {
		return nil, err
	}
	a.poller = poller.New(pollCfg, client, notif, log.With(logx.String("comp", "poller")),
		poller.WithCycleHook(a.afterCycle(pollCfg.Interval)))

	return a, nil
}

// afterCycle pings the systemd watchdog once per cycle when one is configured.
func (a *App) afterCycle(interval time.Duration) func(poller.Outcome) {
	wd, err := daemon.SdWatchdogEnabled(false)
	if err != nil || wd <= 0 {
		return nil
	}
	if wd < interval {
		a.log.Warn("systemd watchdog is shorter than the poll interval",
			logx.Duration("watchdog", wd), logx.Duration("interval", interval))
	}
	return func(poller.Outcome) { a.sdNotify(daemon.SdNotifyWatchdog) }
}

// Poller exposes the poll loop (cursor / last error) for inspection.
func (a *App) Poller() *poller.Poller { return a.poller }

// Notifier exposes the delivery service.
func (a *App) Notifier() *notifier.Service { return a.notif }

// Logger returns the app's root logger.
func (a *App) Logger() logx.Logger { return a.log }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = NewSupervisor(ctx, WithLogger(a.log), WithCancelOnError(true))
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))

	updates := a.cfgm.Subscribe(1)
	a.sup.Go("config.apply", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(updates)
		for {
			select {
			case <-c.Done():
				return c.Err()
			case cfg := <-updates:
				if cfg == nil {
					continue
				}
				// Only logging is live; the poll interval is fixed per process.
				a.logs.Apply(mapLogConfig(cfg))
				a.log.Info("logging config applied", logx.String("level", cfg.Logging.Level))
			}
		}
	})
	a.sup.Go("config.watch", a.cfgm.Watch)
	a.sup.Go("poller", a.poller.Run)

	a.log.Info("homework bot started", logx.String("config", a.cfgPath))
	a.sdNotify(daemon.SdNotifyReady)
	return nil
}

// Stop cancels the loop and waits for shutdown until ctx is done.
func (a *App) Stop(ctx context.Context) error {
	a.sdNotify(daemon.SdNotifyStopping)
	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}
	if a.adapter != nil {
		_ = a.adapter.Stop(ctx)
	}
	a.log.Info("homework bot stopped", logx.Int64("cursor", a.poller.Cursor()))
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}
