package creature

import (
	"math/rand"
	"time"

	"github.com/ribbitworks/slimepond/internal/ident"
	"github.com/ribbitworks/slimepond/internal/relationship"
)

var personalities = []string{
	"bouncy and endlessly curious",
	"shy but secretly affectionate",
	"mischievous with a heart of gold",
	"sleepy, slow, and very cozy",
	"dramatic about absolutely everything",
	"gentle and a little philosophical",
	"cheerful chatterbox",
	"quietly observant, misses nothing",
}

// Factory spawns creatures with deterministic defaults and a random personality.
type Factory struct {
	rng *rand.Rand
	now func() time.Time
}

// NewFactory creates a creature factory. now may be nil for wall-clock time.
func NewFactory(seed int64, now func() time.Time) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{rng: rand.New(rand.NewSource(seed)), now: now}
}

// Spawn creates a creature of the given type and color at a starting position.
// An empty color picks the type's default palette.
func (f *Factory) Spawn(t Type, color Color, position float64) *Creature {
	if t != TypeSlime && t != TypeMushroom {
		t = TypeSlime
	}
	if color == "" {
		color = DefaultColor(t)
	}
	valid := false
	for _, c := range Colors(t) {
		if c == color {
			valid = true
			break
		}
	}
	if !valid {
		color = DefaultColor(t)
	}

	phys := PhysicsFor(t)
	now := f.now()

	return &Creature{
		ID:           ident.New(string(t)),
		Type:         t,
		Color:        color,
		Capabilities: CapabilitiesFor(t),
		Personality:  personalities[f.rng.Intn(len(personalities))],

		Position:  position,
		Direction: 1,
		Speed:     phys.MinSpeed + f.rng.Float64()*(phys.MaxSpeed-phys.MinSpeed),

		Mode:            ModeAuto,
		CurrentBehavior: BehaviorIdle,

		LastInteraction: now,

		Relationship: Relationship{
			Affection:      5,
			Trust:          5,
			Mood:           relationship.MoodNeutral,
			Level:          relationship.LevelStranger,
			LastMoodChange: now,
		},
	}
}
