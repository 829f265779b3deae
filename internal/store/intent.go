package store

import (
	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/relationship"
)

// Kind names a discrete state transition. All mutation flows through intents;
// nothing writes creature fields directly.
type Kind string

const (
	// Lifecycle.
	AddCreature    Kind = "ADD_CREATURE"
	RemoveCreature Kind = "REMOVE_CREATURE"
	ClearAll       Kind = "CLEAR_ALL"

	// Selection.
	SetActive Kind = "SET_ACTIVE"

	// Movement and animation.
	SetPosition        Kind = "SET_POSITION"
	SetDirection       Kind = "SET_DIRECTION"
	SetSpeed           Kind = "SET_SPEED"
	IncrementWalkFrame Kind = "INCREMENT_WALK_FRAME"
	IncrementIdleFrame Kind = "INCREMENT_IDLE_FRAME"
	IncrementJumpFrame Kind = "INCREMENT_JUMP_FRAME"

	// Behavior.
	SetBehavior Kind = "SET_BEHAVIOR"
	SetMode     Kind = "SET_MODE"
	SetWalking  Kind = "SET_WALKING"
	SetJumping  Kind = "SET_JUMPING"
	SetSleeping Kind = "SET_SLEEPING"
	SetGlowing  Kind = "SET_GLOWING"
	SetThinking Kind = "SET_THINKING"
	SetColor    Kind = "SET_COLOR"

	// Social.
	AddMessage            Kind = "ADD_MESSAGE"
	ClearConversation     Kind = "CLEAR_CONVERSATION"
	UpdateAffection       Kind = "UPDATE_AFFECTION"
	UpdateTrust           Kind = "UPDATE_TRUST"
	SetMood               Kind = "SET_MOOD"
	IncrementInteractions Kind = "INCREMENT_INTERACTIONS"
	SetName               Kind = "SET_NAME"
	TouchInteraction      Kind = "TOUCH_INTERACTION"

	// Transient UI.
	ShowBubble     Kind = "SHOW_BUBBLE"
	HideBubble     Kind = "HIDE_BUBBLE"
	SetMenuState   Kind = "SET_MENU_STATE"
	HideAllBubbles Kind = "HIDE_ALL_BUBBLES"
)

// Intent is one dispatched state transition. Only the fields relevant to its
// Kind are read; intents can arrive as decoded JSON from the websocket, so
// every payload is validated by the reducer rather than trusted.
type Intent struct {
	Kind       Kind   `json:"kind"`
	CreatureID string `json:"creatureId,omitempty"`

	Creature *creature.Creature `json:"-"`

	Position  float64           `json:"position,omitempty"`
	Direction int               `json:"direction,omitempty"`
	Speed     float64           `json:"speed,omitempty"`
	Behavior  creature.Behavior `json:"behavior,omitempty"`
	Mode      creature.Mode     `json:"mode,omitempty"`
	Color     creature.Color    `json:"color,omitempty"`
	Flag      bool              `json:"flag,omitempty"`
	Delta     int               `json:"delta,omitempty"`
	Mood      relationship.Mood `json:"mood,omitempty"`
	Message   creature.Message  `json:"message,omitempty"`
	Text      string            `json:"text,omitempty"`
}
