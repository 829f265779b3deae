// Command slimepond runs the virtual pet pond server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ribbitworks/slimepond/internal/ambient"
	"github.com/ribbitworks/slimepond/internal/auth"
	"github.com/ribbitworks/slimepond/internal/behavior"
	"github.com/ribbitworks/slimepond/internal/chat"
	"github.com/ribbitworks/slimepond/internal/config"
	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/engine"
	"github.com/ribbitworks/slimepond/internal/llm"
	"github.com/ribbitworks/slimepond/internal/persistence"
	"github.com/ribbitworks/slimepond/internal/server"
	"github.com/ribbitworks/slimepond/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("bad configuration", "error", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Scene ─────────────────────────────────────────────────────────
	st := store.New(nil)
	factory := creature.NewFactory(seed, nil)
	sched := behavior.New(st, behavior.DefaultConfig(cfg.SceneWidth), seed+1)

	// ── LLM + Chat ────────────────────────────────────────────────────
	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.AnthropicKey,
		Model:       cfg.Model,
		Endpoint:    cfg.Endpoint,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if llmClient.Enabled() {
		slog.Info("LLM client enabled", "model", cfg.Model)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — creatures will use canned phrases")
	}

	clock := ambient.NewClock(seed+2, nil)
	if weather := ambient.NewWeatherClient(cfg.WeatherKey, cfg.WeatherLocation); weather != nil {
		clock.Weather = weather
		slog.Info("real-weather sky enabled", "location", cfg.WeatherLocation)
	}
	orch := chat.New(st, llmClient, chat.NewKeywordScorer(seed+3), seed+4)
	orch.Ambient = clock.Flavor

	// ── Restore ───────────────────────────────────────────────────────
	now := time.Now()
	if payload, found, err := db.LoadState(persistence.AnonymousUser); err != nil {
		slog.Error("failed to load save", "error", err)
	} else if found {
		st.Restore(store.State{
			Creatures:        payload.Creatures,
			ActiveCreatureID: payload.ActiveCreatureID,
		})
		slog.Info("save restored", "creatures", len(payload.Creatures))
	} else {
		// A fresh pond starts with one slime so there is something to meet.
		first := factory.Spawn(creature.TypeSlime, "", cfg.SceneWidth/2)
		st.Dispatch(store.Intent{Kind: store.AddCreature, Creature: first})
		slog.Info("fresh pond, spawned starter slime", "id", first.ID)
	}
	for _, id := range st.IDs() {
		sched.Track(id, now)
	}

	// ── Engine + API ──────────────────────────────────────────────────
	eng := engine.New(st, sched, orch, db, seed+5)

	hub := server.NewHub(st)
	srv := &server.Server{
		Store:   st,
		Factory: factory,
		Sched:   sched,
		Orch:    orch,
		Eng:     eng,
		DB:      db,
		Auth:    auth.NewService(db, cfg.JWTSecret, 7*24*time.Hour),
		Clock:   clock,
		LLM:     llmClient,
		Hub:     hub,
		Cfg:     cfg,
	}
	eng.OnStep = func(uint64) { hub.Broadcast(srv.Snapshot()) }
	httpSrv := srv.Start()

	// ── Run ───────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Printf("Slimepond is awake: %d creatures in the pond.\n", len(st.IDs()))
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.Addr)
	fmt.Println("Running... (Ctrl+C to stop)")

	eng.Run(ctx)

	// Final save on shutdown.
	eng.Autosave()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpSrv.Shutdown(shutdownCtx)

	fmt.Println("Pond saved. Goodnight.")
}
