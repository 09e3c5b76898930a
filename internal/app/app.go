// Package app arma el proceso a partir de la configuración: storage,
// registro en memoria, notifier, lock, scanner y router HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pet-vaccination-tracker/internal/adapters/lock/redislock"
	"pet-vaccination-tracker/internal/adapters/notify/kafka"
	"pet-vaccination-tracker/internal/adapters/notify/logsink"
	"pet-vaccination-tracker/internal/adapters/notify/webhook"
	mem "pet-vaccination-tracker/internal/adapters/storage/memory"
	pg "pet-vaccination-tracker/internal/adapters/storage/postgres"
	"pet-vaccination-tracker/internal/adapters/storage/sqlite"
	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/reminders"
	"pet-vaccination-tracker/internal/platform/config"
	"pet-vaccination-tracker/internal/platform/logger"
	"pet-vaccination-tracker/internal/platform/metrics"
	"pet-vaccination-tracker/internal/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config   *config.Config
	Log      logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Clinic   *clinic.Service
	Scanner  *reminders.Scanner

	now     func() time.Time
	closers []func() error
}

type Option func(*App)

// WithClock fija el reloj del registro y del scanner (CLI con --now, tests).
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// New abre el storage, carga el registro y arma el scanner. Si algo falla,
// cierra lo que ya había abierto.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (_ *App, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	a := &App{Config: cfg, Log: log, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	repo, attempts, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	a.Clinic = clinic.NewService(repo, log, clinic.WithClock(a.now))
	if err := a.Clinic.Load(ctx); err != nil {
		return nil, err
	}
	if cfg.SeedSampleData {
		seeded, err := a.Clinic.SeedSampleData(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		if seeded {
			log.Info("sample data seeded", nil)
		}
	}

	notifier, channel, err := a.openNotifier()
	if err != nil {
		return nil, err
	}

	scanOpts := []reminders.Option{
		reminders.WithAttempts(attempts),
		reminders.WithMetrics(a.Metrics),
		reminders.WithLogger(log),
		reminders.WithClock(a.now),
	}
	if cfg.RedisURL != "" {
		client, err := redislock.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		scanOpts = append(scanOpts, reminders.WithLocker(redislock.New(client)))
	}

	a.Scanner, err = reminders.NewScanner(a.Clinic, notifier, reminders.Config{
		WindowDays:  cfg.Reminders.WindowDays,
		Concurrency: cfg.Reminders.Concurrency,
		Channel:     channel,
		ClinicName:  cfg.Reminders.ClinicName,
		CountryCode: cfg.Reminders.CountryCode,
		LockTTL:     cfg.Reminders.LockTTL,
	}, scanOpts...)
	if err != nil {
		return nil, err
	}

	log.Info("app ready", map[string]any{
		"db_driver": cfg.DB.Driver,
		"notifier":  channel,
		"redis":     cfg.RedisURL != "",
	})
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (clinic.Repository, reminders.AttemptRepository, error) {
	switch a.Config.DB.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, a.Config.DB.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		return sqlite.NewClinicRepo(db), sqlite.NewAttemptsRepo(db), nil

	case config.DriverPostgres:
		db, err := pg.Open(a.Config.DB.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := pg.Migrate(ctx, db); err != nil {
			return nil, nil, err
		}
		return pg.NewClinicRepo(db), pg.NewAttemptsRepo(db), nil

	default:
		return mem.NewClinicRepo(), mem.NewAttemptRepo(), nil
	}
}

func (a *App) openNotifier() (reminders.Notifier, string, error) {
	nc := a.Config.Notifier
	switch nc.Kind {
	case config.NotifierWebhook:
		n, err := webhook.New(webhook.Config{
			URL:          nc.WebhookURL,
			APIKey:       nc.WebhookAPIKey,
			APIKeyHeader: nc.WebhookAPIKeyHeader,
			Timeout:      nc.WebhookTimeout,
		})
		if err != nil {
			return nil, "", err
		}
		return n, webhook.Channel, nil

	case config.NotifierKafka:
		n, err := kafka.New(nc.KafkaBrokers, nc.KafkaTopic)
		if err != nil {
			return nil, "", err
		}
		a.closers = append(a.closers, func() error { n.Close(); return nil })
		return n, kafka.Channel, nil

	default:
		return logsink.New(a.Log), logsink.Channel, nil
	}
}

// Handler devuelve el router HTTP completo.
func (a *App) Handler() http.Handler {
	return router.NewRouter(router.Options{
		Clinic:   a.Clinic,
		Scanner:  a.Scanner,
		Logger:   a.Log,
		Metrics:  a.Metrics,
		Gatherer: a.Registry,
	})
}

// Serve levanta el server HTTP y, si está habilitado, el loop de
// recordatorios. Vuelve cuando ctx se cancela (shutdown ordenado) o si el
// server falla.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Config.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		a.Log.Info("shutting down server", nil)
		return srv.Shutdown(shutdownCtx)
	})

	if a.Config.Reminders.Enabled {
		g.Go(func() error {
			a.Scanner.Run(gctx, a.Config.Reminders.Interval)
			return nil
		})
	}

	return g.Wait()
}

// Close libera storage, redis y productores en orden inverso.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewLogger arma el logger según la sección [log] de la config.
func NewLogger(cfg *config.Config, out io.Writer) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
		Output: out,
	})
}
