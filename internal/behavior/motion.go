package behavior

import (
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/store"
)

// Horizontal speed while airborne relative to ground walking speed.
const jumpSpeedFactor = 0.7

// integrateMotion advances one animation frame when the creature's per-type
// fps cadence is due: position integration with boundary clamping while
// walking, plus the frame counters for whichever animation is active.
func (s *Scheduler) integrateMotion(now time.Time, c *creature.Creature, bk *bookkeeping) {
	phys := creature.PhysicsFor(c.Type)
	if now.Before(bk.nextFrameAt) {
		return
	}
	bk.nextFrameAt = now.Add(time.Second / time.Duration(phys.FPS))

	if c.IsWalking && bk.collisionPhase == collisionNone && !bk.isChangingDirection {
		speed := c.Speed
		if c.IsJumping {
			speed *= jumpSpeedFactor
		}
		bound := s.bound(c)
		newPos := c.Position + float64(c.Direction)*speed
		collided := false
		if newPos <= 0 {
			newPos = 0
			collided = true
		}
		if newPos >= bound {
			newPos = bound
			collided = true
		}
		s.store.Dispatch(store.Intent{Kind: store.SetPosition, CreatureID: c.ID, Position: newPos})
		s.store.Dispatch(store.Intent{Kind: store.IncrementWalkFrame, CreatureID: c.ID})
		c.Position = newPos

		// The same clamp applies mid-jump: a diagonal jump reflects off the
		// boundary exactly like ground movement.
		if collided {
			s.beginDirectionChange(now, c.ID, bk)
		}
	} else if !c.IsWalking && !c.IsJumping {
		// Idle, sleep, and talk animations all advance the idle counter.
		s.store.Dispatch(store.Intent{Kind: store.IncrementIdleFrame, CreatureID: c.ID})
	}

	if c.IsJumping {
		s.store.Dispatch(store.Intent{Kind: store.IncrementJumpFrame, CreatureID: c.ID})
		if bk.jumpFramesLeft > 0 {
			bk.jumpFramesLeft--
		}
		if bk.jumpFramesLeft == 0 {
			s.store.Dispatch(store.Intent{Kind: store.SetJumping, CreatureID: c.ID, Flag: false})
		}
	}
}

// JumpOffset returns the vertical offset for a jump frame: a parabolic ease
// that is zero at both ends and peaks at the midpoint of the arc.
func JumpOffset(frame, totalFrames int, height float64) float64 {
	if totalFrames <= 1 || frame < 0 {
		return 0
	}
	if frame >= totalFrames {
		frame = totalFrames - 1
	}
	t := float64(frame) / float64(totalFrames-1)
	return height * 4 * t * (1 - t)
}
