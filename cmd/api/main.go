package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pet-vaccination-tracker/internal/app"
	"pet-vaccination-tracker/internal/platform/config"
	"pet-vaccination-tracker/internal/platform/logger"
)

// @title			Pet Vaccination Tracker API
// @version		1.0
// @description	Registro de vacunaciones por mascota, dashboard de vencimientos y recordatorios.
// @BasePath		/
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := app.NewLogger(cfg, os.Stdout)

	if err := run(cfg, logg); err != nil {
		logg.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}
