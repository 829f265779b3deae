package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ribbitworks/slimepond/internal/creature"
)

// meaningful is the projection of a creature used for autosave change
// detection. Animation and transient fields (position, frame counters,
// walking/jumping flags, bubble state) are deliberately excluded so that
// pure motion never triggers a save.
type meaningful struct {
	ID            string               `json:"id"`
	Type          creature.Type        `json:"type"`
	Color         creature.Color       `json:"color"`
	FirstName     string               `json:"firstName"`
	Personality   string               `json:"personality"`
	Relationship  creature.Relationship `json:"relationship"`
	History       []creature.Message   `json:"history"`
}

// Fingerprint hashes the meaningful fields of the current state. Two states
// with the same fingerprint need no fresh autosave.
func (s *Store) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	proj := struct {
		Creatures []meaningful `json:"creatures"`
		ActiveID  string       `json:"activeId"`
	}{ActiveID: s.activeID}

	for _, c := range s.creatures {
		proj.Creatures = append(proj.Creatures, meaningful{
			ID:           c.ID,
			Type:         c.Type,
			Color:        c.Color,
			FirstName:    c.FirstName,
			Personality:  c.Personality,
			Relationship: c.Relationship,
			History:      c.ConversationHistory,
		})
	}

	raw, err := json.Marshal(proj)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
