package chat

import (
	"context"
	"strings"

	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/store"
)

// SuggestName asks the AI for a pet name matching the creature's personality,
// falling back to the canned name pool. ok is false when the creature is gone.
func (o *Orchestrator) SuggestName(ctx context.Context, creatureID string) (string, bool) {
	c, ok := o.store.Get(creatureID)
	if !ok {
		return "", false
	}

	if o.provider != nil {
		prompt := "Suggest a single cute one-word pet name for a " + string(c.Type) +
			" whose personality is: " + c.Personality + ". Reply with the name only."
		if text, err := o.provider.Complete(ctx, "You name virtual pets.", nil, prompt); err == nil {
			if name := cleanName(text); name != "" {
				return name, true
			}
		}
	}

	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return creature.FallbackName(c.Type, o.rng), true
}

// Rename sets the creature's name. Empty names are ignored by the store.
func (o *Orchestrator) Rename(creatureID, name string) {
	o.store.Dispatch(store.Intent{Kind: store.SetName, CreatureID: creatureID, Text: strings.TrimSpace(name)})
}

// cleanName reduces an AI reply to a single plausible name token.
func cleanName(text string) string {
	fields := strings.Fields(strings.Trim(strings.TrimSpace(text), `"'.!`))
	if len(fields) == 0 {
		return ""
	}
	name := strings.Trim(fields[0], `"'.!,`)
	if len(name) > 20 {
		return ""
	}
	return name
}
