package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/talgya/device-tycoon/internal/api"
	"github.com/talgya/device-tycoon/internal/config"
	"github.com/talgya/device-tycoon/internal/engine"
	"github.com/talgya/device-tycoon/internal/era"
	"github.com/talgya/device-tycoon/internal/persistence"
)

func newRunCmd(configPath *string) *cobra.Command {
	var paused bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, !paused)
		},
	}
	cmd.Flags().BoolVar(&paused, "paused", false, "start with the clock stopped")
	return cmd
}

func run(ctx context.Context, cfg config.Config, autostart bool) error {
	// ── Storage ───────────────────────────────────────────────────────
	store, err := persistence.OpenStore(ctx, cfg.Storage.Driver, cfg.StorageTarget())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	slog.Info("storage opened", "driver", cfg.Storage.Driver)

	// ── Era catalog ───────────────────────────────────────────────────
	catalog := era.DefaultCatalog()
	if cfg.Catalog.Path != "" {
		if catalog, err = era.LoadCatalog(cfg.Catalog.Path); err != nil {
			return err
		}
	}
	slog.Info("era catalog loaded", "events", catalog.Len())

	// ── Simulation: resume the autosave or start fresh ────────────────
	params := engine.Params{
		CompetitorActivityChance: cfg.Simulation.CompetitorActivityChance,
		MarketShareStep:          cfg.Simulation.MarketShareStep,
		MarketShareCap:           cfg.Simulation.MarketShareCap,
	}
	opts := engine.Options{
		Difficulty: cfg.Game.Difficulty,
		Seed:       cfg.Simulation.Seed,
		Catalog:    catalog,
		Params:     &params,
	}

	var sim *engine.Simulation
	snap, err := store.Load(ctx, persistence.AutosaveSlot)
	switch {
	case err == nil:
		sim = engine.Load(snap, opts)
		slog.Info("autosave restored", "day", sim.Day(), "cash", sim.Cash())
	case errors.Is(err, persistence.ErrSaveNotFound):
		sim = engine.NewGame(opts)
		slog.Info("new game", "difficulty", cfg.Game.Difficulty, "seed", sim.Status().Seed)
	default:
		return fmt.Errorf("load autosave: %w", err)
	}

	autosave := func(reason string) {
		if !cfg.Storage.Autosave {
			return
		}
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slot := persistence.Slot{ID: persistence.AutosaveSlot, Name: "Autosave", Snapshot: sim.Snapshot()}
		if _, err := store.Save(saveCtx, slot); err != nil {
			slog.Error("autosave failed", "reason", reason, "error", err)
			return
		}
		slog.Debug("autosaved", "reason", reason, "day", slot.Snapshot.CurrentDay)
	}

	eng := engine.NewEngine(sim)
	eng.Interval = cfg.Simulation.TickInterval
	eng.OnMonth = func(engine.TickReport) { autosave("monthly") }

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("TYCOON_ADMIN_KEY not set, control endpoints are open")
	}
	srv := api.New(eng, store, cfg.API.AdminKey)
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe(ctx, cfg.API.Addr) }()

	st := sim.Status()
	color.New(color.FgCyan, color.Bold).Printf("\n%s is open for business on %s.\n", st.CompanyName, st.DateText)
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.API.Addr)
	if autostart {
		eng.Start()
		fmt.Println("Simulation running... (Ctrl+C to stop)")
	} else {
		fmt.Println("Simulation paused; POST /api/v1/simulation/toggle to start.")
	}

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case runErr = <-srvErr:
		if runErr != nil {
			slog.Error("HTTP API failed", "error", runErr)
		}
	}
	eng.Stop()

	// Final save on shutdown.
	autosave("shutdown")
	fmt.Printf("Simulation stopped on %s.\n", sim.Status().DateText)
	return runErr
}
