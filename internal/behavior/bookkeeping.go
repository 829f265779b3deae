package behavior

import (
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
)

// Collision debounce phases. A direction change is a two-stage sequence:
// stop, wait 300ms, flip + set the matching walk behavior, wait 100ms, resume.
// The same collision is often detected on consecutive frames, so nothing may
// re-trigger a flip while one is in flight.
const (
	collisionNone    = 0
	collisionStopped = 1
	collisionFlipped = 2
)

// bookkeeping is the scheduler's per-creature side table entry. It lives
// outside the store on purpose: timers and debounce flags are scheduler
// internals, not entity state, and must die with the creature.
type bookkeeping struct {
	lastMode creature.Mode

	behaviorDeadline time.Time
	behaviorSetAt    time.Time

	idleJumpAt  time.Time
	watchdogAt  time.Time
	watchdogPos float64
	speedAt     time.Time
	nextFrameAt time.Time

	jumpFramesLeft int
	bubbleHideAt   time.Time

	collisionPhase int
	collisionAt    time.Time

	// Mutual-exclusion flags. The chat pipeline and multiple timer chains can
	// interleave, so these are explicit rather than an artifact of call order.
	isRunningBehavior   bool
	isChangingDirection bool
}
