package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/llm"
	"github.com/ribbitworks/slimepond/internal/relationship"
	"github.com/ribbitworks/slimepond/internal/store"
)

type stubProvider struct {
	reply string
	err   error
	delay time.Duration
}

func (p *stubProvider) Complete(ctx context.Context, system string, history []llm.Message, userText string) (string, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.reply, p.err
}

func newChatScene(t *testing.T, provider llm.Provider) (*Orchestrator, *store.Store, string) {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	st := store.New(func() time.Time { return now })
	f := creature.NewFactory(5, func() time.Time { return now })
	c := f.Spawn(creature.TypeSlime, creature.ColorGreen, 100)
	st.Dispatch(store.Intent{Kind: store.AddCreature, Creature: c})

	o := New(st, provider, nil, 5)
	o.ThinkDelay = 0
	o.BubbleTTL = 0
	return o, st, c.ID
}

func TestEndToEndPositiveMessage(t *testing.T) {
	o, st, id := newChatScene(t, &stubProvider{reply: "Blub! You're the best!"})

	res, ok := o.HandleUserMessage(context.Background(), id, "thank you, you're amazing")
	if !ok {
		t.Fatal("handle failed for an existing creature")
	}
	if res.Reply != "Blub! You're the best!" {
		t.Errorf("reply = %q", res.Reply)
	}
	if res.Fallback {
		t.Error("successful provider call marked as fallback")
	}

	c, _ := st.Get(id)
	if c.Relationship.Affection != 8 {
		t.Errorf("affection = %d, want 8 (5+3)", c.Relationship.Affection)
	}
	if c.Relationship.Trust != 7 {
		t.Errorf("trust = %d, want 7 (5+2)", c.Relationship.Trust)
	}
	switch c.Relationship.Mood {
	case relationship.MoodHappy, relationship.MoodExcited, relationship.MoodLoving:
	default:
		t.Errorf("mood = %q, want an upbeat mood", c.Relationship.Mood)
	}
	if c.Relationship.TotalInteractions != 1 {
		t.Errorf("totalInteractions = %d, want 1", c.Relationship.TotalInteractions)
	}

	if len(c.ConversationHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(c.ConversationHistory))
	}
	if c.ConversationHistory[0].Role != "user" || c.ConversationHistory[1].Role != "assistant" {
		t.Errorf("history roles = %s,%s, want user,assistant",
			c.ConversationHistory[0].Role, c.ConversationHistory[1].Role)
	}
}

func TestFallbackGuarantee(t *testing.T) {
	o, st, id := newChatScene(t, &stubProvider{err: errors.New("provider unreachable")})

	res, ok := o.HandleUserMessage(context.Background(), id, "hello there")
	if !ok {
		t.Fatal("handle must resolve even when the provider always fails")
	}
	if !res.Fallback {
		t.Error("failed provider call not marked as fallback")
	}

	c, _ := st.Get(id)
	var assistant []creature.Message
	for _, m := range c.ConversationHistory {
		if m.Role == "assistant" {
			assistant = append(assistant, m)
		}
	}
	if len(assistant) != 1 {
		t.Fatalf("assistant messages = %d, want exactly 1", len(assistant))
	}
	if !creature.IsFallbackPhrase(creature.TypeSlime, assistant[0].Content) {
		t.Errorf("reply %q is not from the slime fallback pool", assistant[0].Content)
	}
}

func TestNilProviderFallsBack(t *testing.T) {
	o, _, id := newChatScene(t, nil)
	res, ok := o.HandleUserMessage(context.Background(), id, "hi")
	if !ok || !res.Fallback {
		t.Error("nil provider must resolve with a fallback reply")
	}
	if !creature.IsFallbackPhrase(creature.TypeSlime, res.Reply) {
		t.Errorf("reply %q not from the fallback pool", res.Reply)
	}
}

func TestMissingCreature(t *testing.T) {
	o, _, _ := newChatScene(t, nil)
	if _, ok := o.HandleUserMessage(context.Background(), "nope", "hi"); ok {
		t.Error("handle succeeded for a missing creature")
	}
}

func TestSerializedSendsPreserveOrder(t *testing.T) {
	o, st, id := newChatScene(t, &stubProvider{reply: "ok", delay: 40 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		o.HandleUserMessage(context.Background(), id, "first")
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	o.HandleUserMessage(context.Background(), id, "second")
	<-done

	c, _ := st.Get(id)
	if len(c.ConversationHistory) != 4 {
		t.Fatalf("history length = %d, want 4", len(c.ConversationHistory))
	}
	wantRoles := []string{"user", "assistant", "user", "assistant"}
	wantContent := []string{"first", "", "second", ""}
	for i, m := range c.ConversationHistory {
		if m.Role != wantRoles[i] {
			t.Errorf("history[%d].Role = %q, want %q", i, m.Role, wantRoles[i])
		}
		if wantContent[i] != "" && m.Content != wantContent[i] {
			t.Errorf("history[%d].Content = %q, want %q", i, m.Content, wantContent[i])
		}
	}
}

func TestSpeakSkipsSentiment(t *testing.T) {
	o, st, id := newChatScene(t, &stubProvider{reply: "*hums a pond tune*"})

	reply, ok := o.Speak(context.Background(), id)
	if !ok || reply != "*hums a pond tune*" {
		t.Fatalf("speak = %q, %v", reply, ok)
	}

	c, _ := st.Get(id)
	if c.Relationship.Affection != 5 || c.Relationship.Trust != 5 {
		t.Error("autonomous speech must not change the relationship")
	}
	if len(c.ConversationHistory) != 1 || c.ConversationHistory[0].Role != "assistant" {
		t.Errorf("autonomous speech history = %+v, want one assistant entry", c.ConversationHistory)
	}
	if !c.Bubble.Visible || c.Bubble.Text != reply {
		t.Error("autonomous speech did not surface in the bubble")
	}
}

func TestLevelUpDetection(t *testing.T) {
	o, st, id := newChatScene(t, &stubProvider{reply: "yay"})
	st.Dispatch(store.Intent{Kind: store.UpdateAffection, CreatureID: id, Delta: 8})  // 13
	st.Dispatch(store.Intent{Kind: store.UpdateTrust, CreatureID: id, Delta: 8})     // 13

	res, ok := o.HandleUserMessage(context.Background(), id, "you are wonderful")
	if !ok {
		t.Fatal("handle failed")
	}
	if res.LevelUp == "" {
		t.Error("crossing the acquaintance threshold produced no level-up message")
	}
}

func TestBubbleAutoHide(t *testing.T) {
	o, st, id := newChatScene(t, &stubProvider{reply: "hi!"})
	o.BubbleTTL = 20 * time.Millisecond

	o.HandleUserMessage(context.Background(), id, "hello")
	c, _ := st.Get(id)
	if !c.Bubble.Visible {
		t.Fatal("bubble not shown after reply")
	}

	time.Sleep(80 * time.Millisecond)
	c, _ = st.Get(id)
	if c.Bubble.Visible {
		t.Error("bubble did not auto-hide after the TTL")
	}
}

func TestSuggestNameFallsBack(t *testing.T) {
	o, _, id := newChatScene(t, &stubProvider{err: errors.New("down")})
	name, ok := o.SuggestName(context.Background(), id)
	if !ok || name == "" {
		t.Fatal("name suggestion must resolve with a fallback name")
	}
}
