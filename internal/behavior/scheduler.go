// Package behavior drives autonomous creatures: the per-creature behavior
// state machine, the motion/collision integrator, and the liveness watchdog.
// Everything advances through Step(now), so tests can feed synthetic time.
package behavior

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/store"
)

// Timing constants for the behavior cycle.
const (
	walkDurMin  = 3 * time.Second
	walkDurSpan = 4 * time.Second
	jumpDur     = 1500 * time.Millisecond
	sleepDurMin = 3 * time.Second
	sleepDurSpan = 4 * time.Second
	talkDurMin  = 2 * time.Second
	talkDurSpan = 2 * time.Second
	idleDurMin  = 1 * time.Second
	idleDurSpan = 2 * time.Second

	idleJumpDelayMin  = 3 * time.Second
	idleJumpDelaySpan = 5 * time.Second

	watchdogInterval = time.Second
	staleAfter       = 3 * time.Second

	collisionStopWait   = 300 * time.Millisecond
	collisionResumeWait = 100 * time.Millisecond

	speedRedrawMin  = 2 * time.Second
	speedRedrawSpan = time.Second

	userIdleTimeout = 5 * time.Second
)

// Config tunes the scheduler for a scene.
type Config struct {
	SceneWidth    float64
	EdgeThreshold float64 // distance from a boundary that biases picks inward
	IdleJumpProb  float64 // chance an idle check triggers a spontaneous jump
}

// DefaultConfig returns the standard scene tuning.
func DefaultConfig(sceneWidth float64) Config {
	return Config{
		SceneWidth:    sceneWidth,
		EdgeThreshold: 100,
		IdleJumpProb:  0.3,
	}
}

// Scheduler owns the autonomous behavior of every creature in the store.
// Track and Untrack arrive from HTTP handler goroutines while the engine
// goroutine runs Step, so the side table sits behind a mutex.
type Scheduler struct {
	store *store.Store
	cfg   Config

	mu   sync.Mutex
	rng  *rand.Rand
	book map[string]*bookkeeping
}

// New creates a scheduler over the given store.
func New(st *store.Store, cfg Config, seed int64) *Scheduler {
	return &Scheduler{
		store: st,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		book:  make(map[string]*bookkeeping),
	}
}

// Track registers a creature with the scheduler. Safe to call twice.
func (s *Scheduler) Track(id string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(id, now)
}

func (s *Scheduler) track(id string, now time.Time) {
	if _, ok := s.book[id]; ok {
		return
	}
	s.book[id] = &bookkeeping{
		lastMode:   creature.ModeAuto,
		watchdogAt: now.Add(watchdogInterval),
		speedAt:    now,
	}
}

// Untrack removes a creature's bookkeeping. Any deadline it held becomes
// unreachable, so timers firing after teardown are structurally impossible.
func (s *Scheduler) Untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.book, id)
}

// Step advances every tracked creature to now. The engine calls this on each
// scene tick; the bookkeeping deadlines make the cadence of each sub-process
// independent of the tick rate. The lock is held for the whole pass so a
// creature cannot be untracked out from under stepCreature.
func (s *Scheduler) Step(now time.Time) {
	snap := s.store.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Reconcile the side table: creatures added outside Track still get an
	// entry, and entries for removed creatures are dropped.
	seen := make(map[string]bool, len(snap.Creatures))
	for _, c := range snap.Creatures {
		seen[c.ID] = true
		s.track(c.ID, now)
	}
	for id := range s.book {
		if !seen[id] {
			delete(s.book, id)
		}
	}

	for _, c := range snap.Creatures {
		s.stepCreature(now, c, snap.ActiveCreatureID)
	}
}

func (s *Scheduler) stepCreature(now time.Time, c *creature.Creature, activeID string) {
	bk := s.book[c.ID]

	// Mode handoff. A creature reverting from user to auto gets a fresh
	// behavior immediately — no dead frames while waiting for a deadline.
	if c.Mode == creature.ModeUser {
		if now.Sub(c.LastInteraction) >= userIdleTimeout {
			s.store.Dispatch(store.Intent{Kind: store.SetMode, CreatureID: c.ID, Mode: creature.ModeAuto})
			c.Mode = creature.ModeAuto
			s.resetBookkeeping(bk, now)
			s.runBehavior(now, c, s.pickBehavior(c), c.ID == activeID)
		} else {
			bk.lastMode = creature.ModeUser
			s.integrateMotion(now, c, bk)
			return
		}
	} else if bk.lastMode == creature.ModeUser {
		// Deselected externally while we weren't looking.
		s.resetBookkeeping(bk, now)
		s.runBehavior(now, c, s.pickBehavior(c), c.ID == activeID)
	}
	bk.lastMode = creature.ModeAuto

	s.advanceCollision(now, c, bk)
	s.integrateMotion(now, c, bk)

	// Behavior timer expiry.
	if bk.collisionPhase == collisionNone && !bk.isChangingDirection && !now.Before(bk.behaviorDeadline) {
		s.runBehavior(now, c, s.pickBehavior(c), c.ID == activeID)
	}

	s.checkIdleJump(now, c, bk)
	s.runWatchdog(now, c, bk, activeID)
	s.redrawSpeed(now, c, bk)

	// Expire the short jump-phrase bubble. Menus are left alone.
	if !bk.bubbleHideAt.IsZero() && !now.Before(bk.bubbleHideAt) {
		bk.bubbleHideAt = time.Time{}
		if fresh, ok := s.store.Get(c.ID); ok && fresh.Bubble.MenuState == "" {
			s.store.Dispatch(store.Intent{Kind: store.HideBubble, CreatureID: c.ID})
		}
	}
}

func (s *Scheduler) resetBookkeeping(bk *bookkeeping, now time.Time) {
	bk.behaviorDeadline = now
	bk.behaviorSetAt = now
	bk.collisionPhase = collisionNone
	bk.isChangingDirection = false
	bk.isRunningBehavior = false
	bk.watchdogAt = now.Add(watchdogInterval)
}

// pickBehavior draws the next behavior from a weighted bag. Near a boundary,
// the direction leading away from it gets triple weight, which keeps the
// random walk from dwelling at the edges.
func (s *Scheduler) pickBehavior(c *creature.Creature) creature.Behavior {
	bag := []creature.Behavior{
		creature.BehaviorWalkLeft, creature.BehaviorWalkLeft,
		creature.BehaviorWalkRight, creature.BehaviorWalkRight,
		creature.BehaviorIdle,
	}
	if c.Capabilities.CanJump {
		bag = append(bag, creature.BehaviorJump, creature.BehaviorJump)
	}
	if c.Capabilities.CanSleep {
		bag = append(bag, creature.BehaviorSleep)
	}

	bound := s.bound(c)
	if c.Position <= s.cfg.EdgeThreshold {
		bag = append(bag, creature.BehaviorWalkRight, creature.BehaviorWalkRight, creature.BehaviorWalkRight)
	} else if c.Position >= bound-s.cfg.EdgeThreshold {
		bag = append(bag, creature.BehaviorWalkLeft, creature.BehaviorWalkLeft, creature.BehaviorWalkLeft)
	}

	return bag[s.rng.Intn(len(bag))]
}

// pickActiveBehavior draws from the reduced movement-only bag the watchdog
// uses to force a stalled creature back to life.
func (s *Scheduler) pickActiveBehavior(c *creature.Creature) creature.Behavior {
	bag := []creature.Behavior{creature.BehaviorWalkLeft, creature.BehaviorWalkRight}
	if c.Capabilities.CanJump {
		bag = append(bag, creature.BehaviorJump)
	}
	return bag[s.rng.Intn(len(bag))]
}

// runBehavior starts b on the creature and arms its duration timer.
func (s *Scheduler) runBehavior(now time.Time, c *creature.Creature, b creature.Behavior, selected bool) {
	bk := s.book[c.ID]
	if bk == nil || bk.isRunningBehavior {
		return
	}
	bk.isRunningBehavior = true
	defer func() { bk.isRunningBehavior = false }()

	s.store.Dispatch(store.Intent{Kind: store.SetBehavior, CreatureID: c.ID, Behavior: b})

	var dur time.Duration
	switch b {
	case creature.BehaviorWalkLeft, creature.BehaviorWalkRight:
		dir := 1
		if b == creature.BehaviorWalkLeft {
			dir = -1
		}
		s.store.Dispatch(store.Intent{Kind: store.SetSleeping, CreatureID: c.ID, Flag: false})
		s.store.Dispatch(store.Intent{Kind: store.SetDirection, CreatureID: c.ID, Direction: dir})
		s.store.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: c.ID, Flag: true})
		dur = walkDurMin + time.Duration(s.rng.Int63n(int64(walkDurSpan)))

	case creature.BehaviorJump:
		// Jump does not clear walking: walk+jump is the deliberate diagonal case.
		s.store.Dispatch(store.Intent{Kind: store.SetSleeping, CreatureID: c.ID, Flag: false})
		s.store.Dispatch(store.Intent{Kind: store.SetJumping, CreatureID: c.ID, Flag: true})
		bk.jumpFramesLeft = creature.FrameCount(c.Type, c.Color, creature.BehaviorJump)
		dur = jumpDur

	case creature.BehaviorSleep:
		s.store.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: c.ID, Flag: false})
		s.store.Dispatch(store.Intent{Kind: store.SetSleeping, CreatureID: c.ID, Flag: true})
		dur = sleepDurMin + time.Duration(s.rng.Int63n(int64(sleepDurSpan)))

	case creature.BehaviorTalk:
		s.store.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: c.ID, Flag: false})
		s.store.Dispatch(store.Intent{Kind: store.SetSleeping, CreatureID: c.ID, Flag: false})
		dur = talkDurMin + time.Duration(s.rng.Int63n(int64(talkDurSpan)))

	default: // idle
		s.store.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: c.ID, Flag: false})
		s.store.Dispatch(store.Intent{Kind: store.SetSleeping, CreatureID: c.ID, Flag: false})
		if selected {
			// Selected idle has no forced end; the idle-jump sub-process
			// provides the motion.
			dur = 24 * time.Hour
		} else {
			dur = idleDurMin + time.Duration(s.rng.Int63n(int64(idleDurSpan)))
		}
		bk.idleJumpAt = now.Add(idleJumpDelayMin + time.Duration(s.rng.Int63n(int64(idleJumpDelaySpan))))
	}

	bk.behaviorDeadline = now.Add(dur)
	bk.behaviorSetAt = now
}

// checkIdleJump runs the independent idle-jump sub-process: while idle, a
// jump-capable creature occasionally leaps on its own.
func (s *Scheduler) checkIdleJump(now time.Time, c *creature.Creature, bk *bookkeeping) {
	if c.CurrentBehavior != creature.BehaviorIdle || !c.Capabilities.CanJump {
		return
	}
	if bk.idleJumpAt.IsZero() || now.Before(bk.idleJumpAt) {
		return
	}
	if s.rng.Float64() < s.cfg.IdleJumpProb {
		s.store.Dispatch(store.Intent{Kind: store.ShowBubble, CreatureID: c.ID, Text: creature.JumpPhrase(s.rng)})
		bk.bubbleHideAt = now.Add(2 * time.Second)
		s.runBehavior(now, c, creature.BehaviorJump, false)
		return
	}
	// Not this time — reschedule the same check.
	bk.idleJumpAt = now.Add(idleJumpDelayMin + time.Duration(s.rng.Int63n(int64(idleJumpDelaySpan))))
}

// runWatchdog is the 1-second liveness check for unselected auto creatures.
// It detects a walker whose position hasn't moved (stuck against a boundary
// race) and behaviors that have gone stale, and corrects both.
func (s *Scheduler) runWatchdog(now time.Time, c *creature.Creature, bk *bookkeeping, activeID string) {
	if c.ID == activeID || now.Before(bk.watchdogAt) {
		return
	}
	bk.watchdogAt = now.Add(watchdogInterval)

	fresh, ok := s.store.Get(c.ID)
	if !ok {
		return
	}

	// Stuck: walking but the position never changed since the last check.
	if fresh.IsWalking && fresh.Position == bk.watchdogPos && bk.collisionPhase == collisionNone && !bk.isChangingDirection {
		s.beginDirectionChange(now, c.ID, bk)
		bk.watchdogPos = fresh.Position
		return
	}
	bk.watchdogPos = fresh.Position

	// Stale: behavior unchanged too long, or parked on idle. Force a new
	// non-idle pick, re-rolling once from the movement-only bag.
	if bk.collisionPhase == collisionNone && !bk.isChangingDirection &&
		(now.Sub(bk.behaviorSetAt) > staleAfter || fresh.CurrentBehavior == creature.BehaviorIdle) {
		next := s.pickBehavior(fresh)
		if next == creature.BehaviorIdle {
			next = s.pickActiveBehavior(fresh)
		}
		s.runBehavior(now, fresh, next, false)
	}
}

// beginDirectionChange starts the two-stage debounced flip. No-op when a
// change is already in flight.
func (s *Scheduler) beginDirectionChange(now time.Time, id string, bk *bookkeeping) {
	if bk.isChangingDirection {
		return
	}
	bk.isChangingDirection = true
	bk.collisionPhase = collisionStopped
	bk.collisionAt = now.Add(collisionStopWait)
	s.store.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: id, Flag: false})
}

// advanceCollision moves an in-flight direction change through its phases.
func (s *Scheduler) advanceCollision(now time.Time, c *creature.Creature, bk *bookkeeping) {
	switch bk.collisionPhase {
	case collisionStopped:
		if now.Before(bk.collisionAt) {
			return
		}
		fresh, ok := s.store.Get(c.ID)
		if !ok {
			bk.collisionPhase = collisionNone
			bk.isChangingDirection = false
			return
		}
		newDir := -fresh.Direction
		walk := creature.BehaviorWalkRight
		if newDir < 0 {
			walk = creature.BehaviorWalkLeft
		}
		s.store.Dispatch(store.Intent{Kind: store.SetDirection, CreatureID: c.ID, Direction: newDir})
		s.store.Dispatch(store.Intent{Kind: store.SetBehavior, CreatureID: c.ID, Behavior: walk})
		bk.behaviorSetAt = now
		bk.collisionPhase = collisionFlipped
		bk.collisionAt = now.Add(collisionResumeWait)

	case collisionFlipped:
		if now.Before(bk.collisionAt) {
			return
		}
		s.store.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: c.ID, Flag: true})
		bk.collisionPhase = collisionNone
		bk.isChangingDirection = false
	}
}

// redrawSpeed re-rolls the walking speed on a slow cadence so movement never
// looks robotic.
func (s *Scheduler) redrawSpeed(now time.Time, c *creature.Creature, bk *bookkeeping) {
	if now.Before(bk.speedAt) {
		return
	}
	phys := creature.PhysicsFor(c.Type)
	speed := phys.MinSpeed + s.rng.Float64()*(phys.MaxSpeed-phys.MinSpeed)
	s.store.Dispatch(store.Intent{Kind: store.SetSpeed, CreatureID: c.ID, Speed: speed})
	bk.speedAt = now.Add(speedRedrawMin + time.Duration(s.rng.Int63n(int64(speedRedrawSpan))))
}

func (s *Scheduler) bound(c *creature.Creature) float64 {
	b := s.cfg.SceneWidth - float64(creature.FrameWidth(c.Type, c.Color))
	if b < 0 {
		b = 0
	}
	return b
}
