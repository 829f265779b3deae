package chat

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/ident"
	"github.com/ribbitworks/slimepond/internal/llm"
	"github.com/ribbitworks/slimepond/internal/relationship"
	"github.com/ribbitworks/slimepond/internal/store"
)

const (
	historyWindow    = 12
	defaultThink     = 300 * time.Millisecond
	defaultBubbleTTL = 8 * time.Second
)

// Result is what the serving layer forwards to the player after a chat turn.
type Result struct {
	Reply            string            `json:"reply"`
	Fallback         bool              `json:"fallback"`
	Quality          string            `json:"quality"`
	Mood             relationship.Mood `json:"mood"`
	LevelUp          string            `json:"levelUp,omitempty"`
	AffectionMessage string            `json:"affectionMessage,omitempty"`
	TrustMessage     string            `json:"trustMessage,omitempty"`
}

// Orchestrator runs the conversation pipeline for every creature. Sends are
// serialized per creature so a slow AI response can never interleave turns
// out of order.
type Orchestrator struct {
	store    *store.Store
	provider llm.Provider // may be nil: chat always falls back
	scorer   Scorer

	// ThinkDelay is the artificial pause before dispatching the AI call, to
	// avoid visual flicker on fast responses. BubbleTTL is how long a reply
	// bubble stays up before auto-hiding.
	ThinkDelay time.Duration
	BubbleTTL  time.Duration

	// Ambient, when set, contributes a scene-flavor line to prompts.
	Ambient func() string

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a conversation orchestrator. provider may be nil.
func New(st *store.Store, provider llm.Provider, scorer Scorer, seed int64) *Orchestrator {
	if scorer == nil {
		scorer = NewKeywordScorer(seed)
	}
	return &Orchestrator{
		store:      st,
		provider:   provider,
		scorer:     scorer,
		ThinkDelay: defaultThink,
		BubbleTTL:  defaultBubbleTTL,
		rng:        rand.New(rand.NewSource(seed)),
		locks:      make(map[string]*sync.Mutex),
	}
}

// creatureLock returns the per-creature send mutex, creating it on first use.
func (o *Orchestrator) creatureLock(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

// Forget drops the per-creature lock after the creature is removed.
func (o *Orchestrator) Forget(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.locks, id)
}

// HandleUserMessage runs the full user-chat pipeline. It always resolves:
// provider failures surface as a fallback phrase, never an error. ok is false
// only when the creature does not exist (or vanished mid-call).
func (o *Orchestrator) HandleUserMessage(ctx context.Context, creatureID, text string) (Result, bool) {
	l := o.creatureLock(creatureID)
	l.Lock()
	defer l.Unlock()

	c, ok := o.store.Get(creatureID)
	if !ok || !c.Capabilities.CanTalk {
		return Result{}, false
	}
	oldLevel := c.Relationship.Level

	o.store.Dispatch(store.Intent{Kind: store.TouchInteraction, CreatureID: creatureID})
	o.store.Dispatch(store.Intent{Kind: store.AddMessage, CreatureID: creatureID, Message: creature.Message{
		ID:      ident.New("msg"),
		Role:    "user",
		Content: text,
	}})

	score := o.scorer.Score(text)
	o.store.Dispatch(store.Intent{Kind: store.UpdateAffection, CreatureID: creatureID, Delta: score.AffectionDelta})
	o.store.Dispatch(store.Intent{Kind: store.UpdateTrust, CreatureID: creatureID, Delta: score.TrustDelta})
	if score.Mood != "" {
		o.store.Dispatch(store.Intent{Kind: store.SetMood, CreatureID: creatureID, Mood: score.Mood})
	}
	o.store.Dispatch(store.Intent{Kind: store.IncrementInteractions, CreatureID: creatureID})

	reply, fallback := o.generateReply(ctx, creatureID, text, c.ConversationHistory)

	updated, ok := o.store.Get(creatureID)
	if !ok {
		// Removed while we awaited the provider; all remaining steps no-op.
		return Result{}, false
	}

	res := Result{
		Reply:    reply,
		Fallback: fallback,
		Quality:  relationship.Quality(score.AffectionDelta + score.TrustDelta),
		Mood:     updated.Relationship.Mood,
		LevelUp:  relationship.LevelUpMessage(oldLevel, updated.Relationship.Level, updated.DisplayName()),
	}
	if score.AffectionDelta > 0 {
		res.AffectionMessage = relationship.AffectionGainMessage(score.AffectionDelta, updated.DisplayName())
	}
	if score.TrustDelta > 0 {
		res.TrustMessage = relationship.TrustGainMessage(score.TrustDelta, updated.DisplayName())
	}
	return res, true
}

// Speak makes a creature talk on its own: same pipeline, seeded from the
// autonomous prompt pool, with no sentiment scoring.
func (o *Orchestrator) Speak(ctx context.Context, creatureID string) (string, bool) {
	l := o.creatureLock(creatureID)
	l.Lock()
	defer l.Unlock()

	c, ok := o.store.Get(creatureID)
	if !ok || !c.Capabilities.CanTalk {
		return "", false
	}

	o.rngMu.Lock()
	seed := creature.AutonomousSeed(o.rng)
	o.rngMu.Unlock()

	reply, _ := o.generateReply(ctx, creatureID, seed, c.ConversationHistory)
	if _, ok := o.store.Get(creatureID); !ok {
		return "", false
	}
	return reply, true
}

// generateReply runs the thinking phase, the provider call, and the
// store effects shared by user-driven and autonomous speech.
func (o *Orchestrator) generateReply(ctx context.Context, creatureID, userText string, history []creature.Message) (reply string, fallback bool) {
	o.store.Dispatch(store.Intent{Kind: store.SetThinking, CreatureID: creatureID, Flag: true})
	o.store.Dispatch(store.Intent{Kind: store.SetBehavior, CreatureID: creatureID, Behavior: creature.BehaviorTalk})

	// Fixed small pause so instant responses don't flicker the bubble.
	if o.ThinkDelay > 0 {
		select {
		case <-time.After(o.ThinkDelay):
		case <-ctx.Done():
		}
	}

	c, ok := o.store.Get(creatureID)
	if !ok {
		return "", false
	}

	reply, fallback = o.complete(ctx, c, userText, history)

	o.store.Dispatch(store.Intent{Kind: store.AddMessage, CreatureID: creatureID, Message: creature.Message{
		ID:      ident.New("msg"),
		Role:    "assistant",
		Content: reply,
	}})
	o.store.Dispatch(store.Intent{Kind: store.ShowBubble, CreatureID: creatureID, Text: reply})
	o.store.Dispatch(store.Intent{Kind: store.SetThinking, CreatureID: creatureID, Flag: false})

	o.scheduleBubbleHide(creatureID)
	return reply, fallback
}

// complete calls the provider, mapping every failure to a canned phrase.
func (o *Orchestrator) complete(ctx context.Context, c *creature.Creature, userText string, history []creature.Message) (string, bool) {
	if o.provider != nil {
		window := history
		if len(window) > historyWindow {
			window = window[len(window)-historyWindow:]
		}
		msgs := make([]llm.Message, 0, len(window))
		for _, m := range window {
			msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
		}

		text, err := o.provider.Complete(ctx, o.systemPrompt(c), msgs, userText)
		if err == nil && text != "" {
			return text, false
		}
		slog.Debug("chat completion failed, using fallback",
			"creature", c.ID, "error", err)
	}

	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return creature.FallbackPhrase(c.Type, o.rng), true
}

// scheduleBubbleHide hides the reply bubble after the TTL unless a menu is
// open on it. The creature may be gone by then; that is a no-op.
func (o *Orchestrator) scheduleBubbleHide(creatureID string) {
	if o.BubbleTTL <= 0 {
		return
	}
	time.AfterFunc(o.BubbleTTL, func() {
		c, ok := o.store.Get(creatureID)
		if !ok || c.Bubble.MenuState != "" {
			return
		}
		o.store.Dispatch(store.Intent{Kind: store.HideBubble, CreatureID: creatureID})
	})
}
