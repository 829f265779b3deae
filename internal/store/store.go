// Package store holds the single source of truth for all creature entities.
// State changes only through dispatched intents, each applied atomically under
// one lock; readers receive deep copies and never share memory with the store.
package store

import (
	"math"
	"sync"
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/relationship"
)

// State is the serializable shape of the store: the creature list plus the
// active selection. It is also the save/load payload shape.
type State struct {
	Creatures        []*creature.Creature `json:"creatures"`
	ActiveCreatureID string               `json:"activeCreatureId"`
}

// Store is the creature state container.
type Store struct {
	mu        sync.Mutex
	creatures []*creature.Creature
	index     map[string]*creature.Creature
	activeID  string
	now       func() time.Time
}

// New creates an empty store. now may be nil for wall-clock time.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		index: make(map[string]*creature.Creature),
		now:   now,
	}
}

// Get returns a deep copy of the creature with the given id.
func (s *Store) Get(id string) (*creature.Creature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Snapshot returns a deep copy of the full state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := State{
		Creatures:        make([]*creature.Creature, len(s.creatures)),
		ActiveCreatureID: s.activeID,
	}
	for i, c := range s.creatures {
		out.Creatures[i] = c.Clone()
	}
	return out
}

// ActiveID returns the id of the selected creature, or "".
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// IDs returns the ids of all creatures in insertion order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.creatures))
	for i, c := range s.creatures {
		ids[i] = c.ID
	}
	return ids
}

// Restore replaces the whole state, e.g. after loading a save.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creatures = nil
	s.index = make(map[string]*creature.Creature)
	for _, c := range st.Creatures {
		if c == nil || c.ID == "" {
			continue
		}
		cp := c.Clone()
		// Capabilities are derived from the type, never trusted from a payload.
		cp.Capabilities = creature.CapabilitiesFor(cp.Type)
		s.creatures = append(s.creatures, cp)
		s.index[cp.ID] = cp
	}
	s.activeID = ""
	if _, ok := s.index[st.ActiveCreatureID]; ok {
		s.activeID = st.ActiveCreatureID
	}
}

// Dispatch applies one intent atomically. Intents referencing a missing
// creature, or actions the creature's capabilities don't allow, are no-ops.
func (s *Store) Dispatch(in Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch in.Kind {
	case AddCreature:
		s.addCreature(in.Creature)
		return
	case ClearAll:
		s.creatures = nil
		s.index = make(map[string]*creature.Creature)
		s.activeID = ""
		return
	case RemoveCreature:
		s.removeCreature(in.CreatureID)
		return
	case SetActive:
		if in.CreatureID == "" {
			s.activeID = ""
			return
		}
		if _, ok := s.index[in.CreatureID]; ok {
			s.activeID = in.CreatureID
		}
		return
	case HideAllBubbles:
		for _, c := range s.creatures {
			c.Bubble = creature.Bubble{}
		}
		return
	case SetMenuState:
		s.setMenuState(in.CreatureID, in.Text)
		return
	}

	c, ok := s.index[in.CreatureID]
	if !ok {
		return
	}

	switch in.Kind {
	case SetPosition:
		c.Position = in.Position
	case SetDirection:
		if in.Direction == 1 || in.Direction == -1 {
			c.Direction = in.Direction
		}
	case SetSpeed:
		if in.Speed > 0 {
			c.Speed = in.Speed
		}

	case IncrementWalkFrame:
		c.WalkFrame = (c.WalkFrame + 1) % creature.FrameCount(c.Type, c.Color, creature.BehaviorWalkLeft)
	case IncrementIdleFrame:
		c.IdleFrame = (c.IdleFrame + 1) % creature.FrameCount(c.Type, c.Color, creature.BehaviorIdle)
	case IncrementJumpFrame:
		if c.Capabilities.CanJump {
			c.JumpFrame = (c.JumpFrame + 1) % creature.FrameCount(c.Type, c.Color, creature.BehaviorJump)
		}

	case SetBehavior:
		s.setBehavior(c, in.Behavior)
	case SetMode:
		if in.Mode == creature.ModeUser || in.Mode == creature.ModeAuto {
			c.Mode = in.Mode
		}
	case SetWalking:
		c.IsWalking = in.Flag
		if in.Flag {
			c.WalkFrame = 0
		}
	case SetJumping:
		if c.Capabilities.CanJump {
			c.IsJumping = in.Flag
			if in.Flag {
				c.JumpFrame = 0
			}
		}
	case SetSleeping:
		if c.Capabilities.CanSleep {
			c.IsSleeping = in.Flag
		}
	case SetGlowing:
		if c.Capabilities.CanGlow {
			c.IsGlowing = in.Flag
		}
	case SetThinking:
		c.Thinking = in.Flag
	case SetColor:
		if c.Capabilities.CanChangeColor {
			for _, valid := range creature.Colors(c.Type) {
				if valid == in.Color {
					c.Color = in.Color
					break
				}
			}
		}

	case AddMessage:
		msg := in.Message
		if msg.Timestamp.IsZero() {
			msg.Timestamp = s.now()
		}
		c.ConversationHistory = append(c.ConversationHistory, msg)
	case ClearConversation:
		c.ConversationHistory = nil
	case UpdateAffection:
		scaled := scaleDelta(in.Delta, relationship.AffectionMultiplier(c.Relationship.Mood))
		c.Relationship.Affection = clamp(c.Relationship.Affection + scaled)
		c.Relationship.Level = relationship.LevelForPair(c.Relationship.Affection, c.Relationship.Trust)
	case UpdateTrust:
		scaled := scaleDelta(in.Delta, relationship.TrustMultiplier(c.Relationship.Mood))
		c.Relationship.Trust = clamp(c.Relationship.Trust + scaled)
		c.Relationship.Level = relationship.LevelForPair(c.Relationship.Affection, c.Relationship.Trust)
	case SetMood:
		if in.Mood != "" && in.Mood != c.Relationship.Mood {
			c.Relationship.Mood = in.Mood
			c.Relationship.LastMoodChange = s.now()
		}
	case IncrementInteractions:
		c.Relationship.TotalInteractions++
	case SetName:
		if in.Text != "" {
			c.FirstName = in.Text
		}
	case TouchInteraction:
		c.LastInteraction = s.now()

	case ShowBubble:
		c.Bubble.Visible = true
		c.Bubble.Text = in.Text
	case HideBubble:
		c.Bubble.Visible = false
		c.Bubble.Text = ""
	}
}

func (s *Store) addCreature(c *creature.Creature) {
	if c == nil || c.ID == "" {
		return
	}
	if _, exists := s.index[c.ID]; exists {
		return
	}
	cp := c.Clone()
	s.creatures = append(s.creatures, cp)
	s.index[cp.ID] = cp
}

func (s *Store) removeCreature(id string) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, c := range s.creatures {
		if c.ID == id {
			s.creatures = append(s.creatures[:i], s.creatures[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = ""
	}
}

// setBehavior switches the active behavior and resets the matching animation
// counter. Capability-gated behaviors are filtered here, so a jump intent on
// a mushroom is a no-op rather than a crash.
func (s *Store) setBehavior(c *creature.Creature, b creature.Behavior) {
	switch b {
	case creature.BehaviorJump:
		if !c.Capabilities.CanJump {
			return
		}
		c.JumpFrame = 0
	case creature.BehaviorSleep:
		if !c.Capabilities.CanSleep {
			return
		}
	case creature.BehaviorTalk:
		if !c.Capabilities.CanTalk {
			return
		}
	case creature.BehaviorWalkLeft, creature.BehaviorWalkRight:
		c.WalkFrame = 0
	case creature.BehaviorIdle:
		c.IdleFrame = 0
	default:
		return
	}
	c.CurrentBehavior = b
}

// setMenuState opens a menu on one creature and hides every other bubble.
// At most one menu is visible in the scene.
func (s *Store) setMenuState(id, menu string) {
	target, ok := s.index[id]
	if !ok {
		return
	}
	for _, c := range s.creatures {
		if c != target {
			c.Bubble = creature.Bubble{}
		}
	}
	target.Bubble.MenuState = menu
	if menu != "" {
		target.Bubble.Visible = true
	}
}

func scaleDelta(delta int, mult float64) int {
	return int(math.Round(float64(delta) * mult))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
