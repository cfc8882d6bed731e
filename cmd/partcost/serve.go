package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/partcost/internal/api"
	"github.com/Spok95/partcost/internal/config"
	"github.com/Spok95/partcost/internal/domain/catalog"
	"github.com/Spok95/partcost/internal/domain/materials"
	"github.com/Spok95/partcost/internal/domain/parts"
	"github.com/Spok95/partcost/internal/domain/profiles"
	"github.com/Spok95/partcost/internal/domain/projects"
	"github.com/Spok95/partcost/internal/draft"
	"github.com/Spok95/partcost/internal/infra/db"
	httpx "github.com/Spok95/partcost/internal/infra/http"
	"github.com/Spok95/partcost/internal/infra/logger"
	"github.com/Spok95/partcost/internal/rawmaterial"
	"github.com/Spok95/partcost/internal/units"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations and run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log := logger.New(cfg.App.Env)
		if err := db.Migrate(cfg.Postgres.DSN, log); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		log.Info("migrations applied")
		return nil
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.App.Env)
	units.Default = units.NewConverter(units.WithLogger(log))

	if err := db.Migrate(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return err
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return err
	}
	defer pool.Close()
	log.Info("db connected")

	materialRepo := materials.NewRepo(pool)
	profileRepo := profiles.NewRepo(pool)
	catalogRepo := catalog.NewRepo(pool)
	partRepo := parts.NewRepo(pool)
	projectRepo := projects.NewRepo(pool)
	draftRepo := draft.NewRepo(pool)

	editor := rawmaterial.New(log, partRepo, materialRepo, profileRepo, catalogRepo, draftRepo,
		units.Default, rawmaterial.Defaults{
			PricePerKg:     cfg.Costing.PricePerKg,
			DimensionsUnit: cfg.Costing.DimensionsUnit,
			VolumeUnit:     cfg.Costing.VolumeUnit,
			Currency:       cfg.App.Currency,
		})

	handler := api.New(log, api.Deps{
		Materials: materialRepo,
		Profiles:  profileRepo,
		Catalog:   catalogRepo,
		Projects:  projectRepo,
		Parts:     partRepo,
		Editor:    editor,
		Converter: units.Default,
		Currency:  cfg.App.Currency,
	})

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, handler)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
