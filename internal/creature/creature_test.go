package creature

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/ribbitworks/slimepond/internal/relationship"
)

func TestSpawnDefaults(t *testing.T) {
	f := NewFactory(7, func() time.Time { return time.Unix(1000, 0) })
	c := f.Spawn(TypeSlime, ColorBlue, 150)

	if c.Type != TypeSlime || c.Color != ColorBlue {
		t.Fatalf("spawned %s/%s", c.Type, c.Color)
	}
	if c.Relationship.Affection != 5 || c.Relationship.Trust != 5 {
		t.Errorf("relationship = %d/%d, want 5/5", c.Relationship.Affection, c.Relationship.Trust)
	}
	if c.Relationship.Mood != relationship.MoodNeutral || c.Relationship.Level != relationship.LevelStranger {
		t.Errorf("mood/level = %s/%s", c.Relationship.Mood, c.Relationship.Level)
	}
	if c.Mode != ModeAuto || c.CurrentBehavior != BehaviorIdle || c.Direction != 1 {
		t.Errorf("behavior defaults wrong: %+v", c)
	}
	if c.Personality == "" {
		t.Error("no personality assigned")
	}

	phys := PhysicsFor(TypeSlime)
	if c.Speed < phys.MinSpeed || c.Speed > phys.MaxSpeed {
		t.Errorf("speed %v outside [%v,%v]", c.Speed, phys.MinSpeed, phys.MaxSpeed)
	}
}

func TestSpawnCoercesInvalidInput(t *testing.T) {
	f := NewFactory(7, nil)

	c := f.Spawn(Type("dragon"), Color("plaid"), 0)
	if c.Type != TypeSlime {
		t.Errorf("unknown type became %q, want slime", c.Type)
	}
	if c.Color != DefaultColor(TypeSlime) {
		t.Errorf("unknown color became %q, want default", c.Color)
	}

	m := f.Spawn(TypeMushroom, ColorPink, 0)
	if m.Color != DefaultColor(TypeMushroom) {
		t.Errorf("slime-only color on mushroom became %q", m.Color)
	}
}

func TestCapabilityTable(t *testing.T) {
	slime := CapabilitiesFor(TypeSlime)
	if !slime.CanJump || !slime.CanTalk || !slime.CanSleep || !slime.CanChangeColor || slime.CanGlow {
		t.Errorf("slime capabilities = %+v", slime)
	}
	shroom := CapabilitiesFor(TypeMushroom)
	if shroom.CanJump || shroom.CanChangeColor || !shroom.CanGlow || !shroom.CanTalk || !shroom.CanSleep {
		t.Errorf("mushroom capabilities = %+v", shroom)
	}
}

func TestFrameCountsNeverZero(t *testing.T) {
	behaviors := []Behavior{BehaviorWalkLeft, BehaviorWalkRight, BehaviorJump, BehaviorSleep, BehaviorTalk, BehaviorIdle}
	for _, typ := range []Type{TypeSlime, TypeMushroom} {
		for _, color := range Colors(typ) {
			if FrameWidth(typ, color) <= 0 {
				t.Errorf("%s/%s frame width <= 0", typ, color)
			}
			for _, b := range behaviors {
				if FrameCount(typ, color, b) <= 0 {
					t.Errorf("%s/%s/%s frame count <= 0", typ, color, b)
				}
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewFactory(7, nil)
	c := f.Spawn(TypeSlime, "", 10)
	c.ConversationHistory = []Message{{Role: "user", Content: "hi"}}

	cl := c.Clone()
	cl.Position = 999
	cl.ConversationHistory[0].Content = "changed"

	if c.Position == 999 {
		t.Error("clone shares position")
	}
	if c.ConversationHistory[0].Content == "changed" {
		t.Error("clone shares conversation history")
	}
}

func TestPhrasesMatchType(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		p := FallbackPhrase(TypeSlime, rng)
		if p == "" {
			t.Fatal("empty fallback phrase")
		}
		if !IsFallbackPhrase(TypeSlime, p) {
			t.Errorf("phrase %q not recognized as fallback", p)
		}
	}
	if name := FallbackName(TypeMushroom, rng); strings.TrimSpace(name) == "" {
		t.Error("empty fallback name")
	}
}

func TestDisplayName(t *testing.T) {
	f := NewFactory(7, nil)
	c := f.Spawn(TypeSlime, "", 0)
	if got := c.DisplayName(); got == "" {
		t.Error("unnamed creature has empty display name")
	}
	c.FirstName = "Gloop"
	if got := c.DisplayName(); got != "Gloop" {
		t.Errorf("display name = %q, want Gloop", got)
	}
}
