package router

import (
	"net/http"

	"pet-vaccination-tracker/internal/adapters/notify/logsink"
	mem "pet-vaccination-tracker/internal/adapters/storage/memory"
	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/reminders"
	"pet-vaccination-tracker/internal/middleware"
	"pet-vaccination-tracker/internal/platform/logger"
	"pet-vaccination-tracker/internal/platform/metrics"

	_ "pet-vaccination-tracker/docs" // swagger spec

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si no viene, registro in-memory vacío.
	Clinic *clinic.Service

	// Opcional: si no viene, scanner con notifier de log sobre Clinic.
	Scanner *reminders.Scanner

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Opcional: si viene, expone /metrics.
	Gatherer prometheus.Gatherer
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log, opts.Metrics))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	svc := opts.Clinic
	if svc == nil {
		svc = clinic.NewService(mem.NewClinicRepo(), log)
	}

	sc := opts.Scanner
	if sc == nil {
		var err error
		sc, err = reminders.NewScanner(svc, logsink.New(log), reminders.Config{Channel: logsink.Channel},
			reminders.WithAttempts(mem.NewAttemptRepo()),
			reminders.WithMetrics(opts.Metrics),
			reminders.WithLogger(log),
		)
		if err != nil {
			// svc y notifier nunca son nil acá
			panic(err)
		}
	}

	// Rutas por módulo
	clinic.RegisterRoutes(r, svc)
	reminders.RegisterRoutes(r, sc)

	return r
}
