// Package engine drives the pond forward on a fixed tick loop.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ribbitworks/slimepond/internal/behavior"
	"github.com/ribbitworks/slimepond/internal/chat"
	"github.com/ribbitworks/slimepond/internal/persistence"
	"github.com/ribbitworks/slimepond/internal/store"
)

const (
	// DefaultInterval is the base tick cadence. Frame advancement is paced
	// per creature by its own FPS, so the loop only needs to run faster
	// than the quickest sprite.
	DefaultInterval = 50 * time.Millisecond

	autosaveEvery = 30 * time.Second

	// Autonomous chatter: each check window, one idle creature may pipe up.
	chatterEvery = 45 * time.Second
	chatterProb  = 0.35
)

// Engine owns the background goroutine that steps behaviors, autosaves,
// and triggers unprompted creature chatter.
type Engine struct {
	Interval time.Duration

	store     *store.Store
	scheduler *behavior.Scheduler
	orch      *chat.Orchestrator
	db        *persistence.DB
	userID    string

	// OnStep, when set, is invoked after every tick with the tick counter.
	// The server uses it to broadcast scene snapshots.
	OnStep func(tick uint64)

	rng  *rand.Rand
	tick uint64

	mu       sync.Mutex
	lastSave string

	stop chan struct{}
	done chan struct{}
}

func New(st *store.Store, sched *behavior.Scheduler, orch *chat.Orchestrator, db *persistence.DB, seed int64) *Engine {
	return &Engine{
		Interval:  DefaultInterval,
		store:     st,
		scheduler: sched,
		orch:      orch,
		db:        db,
		userID:    persistence.AnonymousUser,
		rng:       rand.New(rand.NewSource(seed)),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// SetUser switches which save slot autosaves target.
func (e *Engine) SetUser(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userID = userID
	e.lastSave = ""
}

// Run drives the tick loop until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	slog.Info("engine started", "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	saveTicks := uint64(autosaveEvery / e.Interval)
	chatterTicks := uint64(chatterEvery / e.Interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped", "tick", e.tick)
			return
		case <-e.stop:
			slog.Info("engine stopped", "tick", e.tick)
			return
		case now := <-ticker.C:
			e.step(ctx, now, saveTicks, chatterTicks)
		}
	}
}

// Stop halts the loop and waits for the current tick to finish.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

func (e *Engine) step(ctx context.Context, now time.Time, saveTicks, chatterTicks uint64) {
	e.tick++

	e.scheduler.Step(now)

	if e.OnStep != nil {
		e.OnStep(e.tick)
	}

	if saveTicks > 0 && e.tick%saveTicks == 0 {
		e.Autosave()
	}

	if chatterTicks > 0 && e.tick%chatterTicks == 0 {
		e.maybeChatter(ctx)
	}
}

// Autosave persists the scene if anything meaningful changed since the
// last write. Safe to call from outside the loop (shutdown does).
func (e *Engine) Autosave() {
	if e.db == nil {
		return
	}

	e.mu.Lock()
	userID := e.userID
	last := e.lastSave
	e.mu.Unlock()

	fp := e.store.Fingerprint()
	if fp == last {
		return
	}

	snap := e.store.Snapshot()
	payload := persistence.SavePayload{
		Creatures:        snap.Creatures,
		ActiveCreatureID: snap.ActiveCreatureID,
	}
	if err := e.db.SaveState(userID, payload, fp); err != nil {
		slog.Error("autosave failed", "error", err)
		return
	}

	e.mu.Lock()
	e.lastSave = fp
	e.mu.Unlock()
	slog.Debug("autosaved", "user", userID, "creatures", len(snap.Creatures))
}

// maybeChatter lets one unselected, capable creature speak unprompted.
func (e *Engine) maybeChatter(ctx context.Context) {
	if e.orch == nil || e.rng.Float64() >= chatterProb {
		return
	}

	snap := e.store.Snapshot()
	var candidates []string
	for _, c := range snap.Creatures {
		if c.Capabilities.CanTalk && c.ID != snap.ActiveCreatureID && !c.IsSleeping {
			candidates = append(candidates, c.ID)
		}
	}
	if len(candidates) == 0 {
		return
	}

	id := candidates[e.rng.Intn(len(candidates))]
	go func() {
		cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if _, ok := e.orch.Speak(cctx, id); !ok {
			slog.Debug("chatter skipped", "creature", id)
		}
	}()
}
