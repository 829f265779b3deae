package behavior

import (
	"math"
	"testing"
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/store"
)

func TestJumpOffsetParabola(t *testing.T) {
	const frames = 10
	const height = 40.0

	if off := JumpOffset(0, frames, height); off != 0 {
		t.Errorf("offset at takeoff = %v, want 0", off)
	}
	if off := JumpOffset(frames-1, frames, height); off != 0 {
		t.Errorf("offset at landing = %v, want 0", off)
	}

	peak := 0.0
	for f := 0; f < frames; f++ {
		off := JumpOffset(f, frames, height)
		if off < 0 || off > height {
			t.Fatalf("offset %v at frame %d outside [0,%v]", off, f, height)
		}
		peak = math.Max(peak, off)
	}
	if peak < height*0.9 {
		t.Errorf("peak offset %v, want near %v", peak, height)
	}

	// Symmetric about the midpoint.
	for f := 0; f < frames/2; f++ {
		a := JumpOffset(f, frames, height)
		b := JumpOffset(frames-1-f, frames, height)
		if math.Abs(a-b) > 1e-9 {
			t.Errorf("asymmetric arc: frame %d = %v, frame %d = %v", f, a, frames-1-f, b)
		}
	}
}

func TestJumpOffsetDegenerate(t *testing.T) {
	if JumpOffset(0, 1, 40) != 0 {
		t.Error("single-frame arc must produce no offset")
	}
	if JumpOffset(-1, 10, 40) != 0 {
		t.Error("negative frame must produce no offset")
	}
	if JumpOffset(50, 10, 40) != 0 {
		t.Error("overshot frame must clamp to the landing offset")
	}
}

func TestDiagonalJumpAttenuatesSpeed(t *testing.T) {
	sched, st, id := newTestScene(t, 100)
	quiet(sched, id)
	sched.book[id].jumpFramesLeft = 5

	st.Dispatch(store.Intent{Kind: store.SetDirection, CreatureID: id, Direction: 1})
	st.Dispatch(store.Intent{Kind: store.SetSpeed, CreatureID: id, Speed: 5})
	st.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: id, Flag: true})
	st.Dispatch(store.Intent{Kind: store.SetJumping, CreatureID: id, Flag: true})

	sched.Step(t0)
	c, _ := st.Get(id)
	want := 100 + 5*jumpSpeedFactor
	if math.Abs(c.Position-want) > 1e-9 {
		t.Errorf("position after one airborne frame = %v, want %v", c.Position, want)
	}
}

func TestGroundSpeedUnattenuated(t *testing.T) {
	sched, st, id := newTestScene(t, 100)
	quiet(sched, id)

	st.Dispatch(store.Intent{Kind: store.SetDirection, CreatureID: id, Direction: 1})
	st.Dispatch(store.Intent{Kind: store.SetSpeed, CreatureID: id, Speed: 5})
	st.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: id, Flag: true})

	sched.Step(t0)
	c, _ := st.Get(id)
	if c.Position != 105 {
		t.Errorf("position after one ground frame = %v, want 105", c.Position)
	}
}

func TestPositionClampedToFrameWidth(t *testing.T) {
	sched, st, id := newTestScene(t, 790)
	quiet(sched, id)

	st.Dispatch(store.Intent{Kind: store.SetDirection, CreatureID: id, Direction: 1})
	st.Dispatch(store.Intent{Kind: store.SetSpeed, CreatureID: id, Speed: 50})
	st.Dispatch(store.Intent{Kind: store.SetWalking, CreatureID: id, Flag: true})

	sched.Step(t0)
	c, _ := st.Get(id)
	bound := 800 - float64(creature.FrameWidth(c.Type, c.Color))
	if c.Position > bound {
		t.Errorf("position %v beyond scene bound %v", c.Position, bound)
	}
}

func TestJumpEndsAfterArc(t *testing.T) {
	sched, st, id := newTestScene(t, 300)
	bk := quiet(sched, id)

	st.Dispatch(store.Intent{Kind: store.SetJumping, CreatureID: id, Flag: true})
	frames := creature.FrameCount(creature.TypeSlime, creature.ColorGreen, creature.BehaviorJump)
	bk.jumpFramesLeft = frames

	now := t0
	for i := 0; i < frames; i++ {
		sched.Step(now)
		now = now.Add(50 * time.Millisecond)
	}
	c, _ := st.Get(id)
	if c.IsJumping {
		t.Error("jump flag still set after the arc completed")
	}
}
