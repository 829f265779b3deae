// Package creature provides the pet entity model: tagged type variants,
// capability records, animation frame tables, physics profiles, and the
// factory that spawns new pets with deterministic defaults.
package creature

import (
	"time"

	"github.com/ribbitworks/slimepond/internal/relationship"
)

// Type is the variant tag discriminating creature kinds.
type Type string

const (
	TypeSlime    Type = "slime"
	TypeMushroom Type = "mushroom"
)

// Color is a per-type sprite palette variant.
type Color string

const (
	ColorGreen Color = "green"
	ColorBlue  Color = "blue"
	ColorPink  Color = "pink"
	ColorRed   Color = "red"
	ColorBrown Color = "brown"
)

// Behavior is the discrete activity a creature is currently executing.
type Behavior string

const (
	BehaviorWalkLeft  Behavior = "walkLeft"
	BehaviorWalkRight Behavior = "walkRight"
	BehaviorJump      Behavior = "jump"
	BehaviorSleep     Behavior = "sleep"
	BehaviorTalk      Behavior = "talk"
	BehaviorIdle      Behavior = "idle"
)

// Mode says who is driving the creature right now.
type Mode string

const (
	ModeUser Mode = "user" // player has control focus
	ModeAuto Mode = "auto" // autonomous scheduler drives behavior
)

// Capabilities is the per-type record of which actions are legal.
// Intents arrive as data, so these are checked at runtime by the store,
// never assumed from the type tag alone.
type Capabilities struct {
	CanJump        bool `json:"canJump"`
	CanGlow        bool `json:"canGlow"`
	CanSleep       bool `json:"canSleep"`
	CanTalk        bool `json:"canTalk"`
	CanChangeColor bool `json:"canChangeColor"`
}

// CapabilitiesFor returns the fixed capability set for a creature type.
func CapabilitiesFor(t Type) Capabilities {
	switch t {
	case TypeMushroom:
		return Capabilities{CanGlow: true, CanSleep: true, CanTalk: true}
	default: // slime
		return Capabilities{CanJump: true, CanSleep: true, CanTalk: true, CanChangeColor: true}
	}
}

// Relationship is the accumulated social state between a creature and the player.
type Relationship struct {
	Affection         int                `json:"affection"` // 0-100
	Trust             int                `json:"trust"`     // 0-100
	Mood              relationship.Mood  `json:"mood"`
	Level             relationship.Level `json:"relationshipLevel"`
	TotalInteractions int                `json:"totalInteractions"`
	LastMoodChange    time.Time          `json:"lastMoodChange"`
}

// Message is one entry in a creature's conversation history.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Bubble is transient speech/menu overlay state. Not meaningfully persisted.
type Bubble struct {
	Visible   bool   `json:"visible"`
	Text      string `json:"text"`
	MenuState string `json:"menuState"` // "" when no menu is open
}

// Creature is the full pet entity. All mutation goes through the store.
type Creature struct {
	ID           string       `json:"id"`
	Type         Type         `json:"creatureType"`
	Color        Color        `json:"color"`
	Capabilities Capabilities `json:"capabilities"`
	FirstName    string       `json:"firstName,omitempty"`
	Personality  string       `json:"personality"`

	// Motion state.
	Position  float64 `json:"position"`  // horizontal px, [0, sceneWidth-frameWidth]
	Direction int     `json:"direction"` // +1 right, -1 left
	Speed     float64 `json:"speed"`     // px per animation frame

	// Behavior state.
	Mode            Mode     `json:"mode"`
	CurrentBehavior Behavior `json:"currentBehavior"`
	IsWalking       bool     `json:"isWalking"`
	IsJumping       bool     `json:"isJumping"` // only meaningful when CanJump
	IsSleeping      bool     `json:"isSleeping"`
	IsGlowing       bool     `json:"isGlowing"` // only meaningful when CanGlow
	Thinking        bool     `json:"thinking"`

	// Animation counters, each wrapping modulo the active animation's frame count.
	WalkFrame int `json:"walkFrame"`
	IdleFrame int `json:"idleFrame"`
	JumpFrame int `json:"jumpFrame"`

	LastInteraction time.Time `json:"lastInteraction"`

	Bubble              Bubble       `json:"bubble"`
	Relationship        Relationship `json:"relationship"`
	ConversationHistory []Message    `json:"conversationHistory"`
}

// Clone returns a deep copy. Readers outside the store only ever see clones.
func (c *Creature) Clone() *Creature {
	cp := *c
	cp.ConversationHistory = make([]Message, len(c.ConversationHistory))
	copy(cp.ConversationHistory, c.ConversationHistory)
	return &cp
}

// DisplayName returns the given name, or a friendly fallback for unnamed pets.
func (c *Creature) DisplayName() string {
	if c.FirstName != "" {
		return c.FirstName
	}
	switch c.Type {
	case TypeMushroom:
		return "the little mushroom"
	default:
		return "the little slime"
	}
}
