// Package relationship provides the affection/trust model shared by the
// creature store and the chat pipeline. Everything here is a pure function
// over pre-clamped numeric state.
package relationship

import "math"

// Mood is a creature's current emotional state.
type Mood string

const (
	MoodNeutral Mood = "neutral"
	MoodHappy   Mood = "happy"
	MoodExcited Mood = "excited"
	MoodLoving  Mood = "loving"
	MoodPlayful Mood = "playful"
	MoodSleepy  Mood = "sleepy"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
)

// Level is a relationship tier derived from the weighted affection/trust score.
type Level string

const (
	LevelStranger     Level = "stranger"
	LevelAcquaintance Level = "acquaintance"
	LevelFriend       Level = "friend"
	LevelCloseFriend  Level = "close friend"
	LevelBestFriend   Level = "best friend"
)

// Tier lower bounds, ascending. A score in [bound[i], bound[i+1]) maps to tier i.
var tierBounds = []struct {
	min   int
	level Level
}{
	{0, LevelStranger},
	{15, LevelAcquaintance},
	{35, LevelFriend},
	{55, LevelCloseFriend},
	{75, LevelBestFriend},
}

// Score blends affection and trust into a single 0-100 value.
// Affection is weighted heavier: warmth matters more than reliability
// for how close the bond feels.
func Score(affection, trust int) int {
	return int(math.Round(0.7*float64(affection) + 0.3*float64(trust)))
}

// LevelFor maps a score to its relationship tier.
func LevelFor(score int) Level {
	level := LevelStranger
	for _, t := range tierBounds {
		if score >= t.min {
			level = t.level
		}
	}
	return level
}

// LevelForPair maps an affection/trust pair straight to a tier.
func LevelForPair(affection, trust int) Level {
	return LevelFor(Score(affection, trust))
}

// Progress describes how far along the current tier a bond is.
// At the top tier NextLevel is empty and Percentage is pinned to 100.
type Progress struct {
	Current    int   `json:"current"`
	Target     int   `json:"target"`
	Percentage int   `json:"percentage"`
	NextLevel  Level `json:"nextLevel,omitempty"`
}

// ProgressToNextLevel reports progress from the current tier toward the next.
// Percentage measures position within the current tier's score band.
func ProgressToNextLevel(affection, trust int) Progress {
	score := Score(affection, trust)

	for i, t := range tierBounds {
		if i+1 < len(tierBounds) && score >= tierBounds[i+1].min {
			continue
		}
		if i+1 == len(tierBounds) {
			return Progress{Current: score, Target: 100, Percentage: 100}
		}
		lower := t.min
		target := tierBounds[i+1].min
		pct := (score - lower) * 100 / (target - lower)
		return Progress{
			Current:    score,
			Target:     target,
			Percentage: pct,
			NextLevel:  tierBounds[i+1].level,
		}
	}
	return Progress{Current: score, Target: 100, Percentage: 100}
}

// LevelUpMessage returns a congratulatory line when the tier actually changed,
// and "" otherwise. It never fires on a no-op update.
func LevelUpMessage(oldLevel, newLevel Level, name string) string {
	if oldLevel == newLevel || newLevel == "" {
		return ""
	}
	return "💖 " + name + " now sees you as a " + string(newLevel) + "!"
}

// moodScale holds per-mood multipliers applied to proposed deltas before clamping.
type moodScale struct {
	affection float64
	trust     float64
}

var moodScales = map[Mood]moodScale{
	MoodLoving:  {1.5, 1.3},
	MoodHappy:   {1.3, 1.2},
	MoodExcited: {1.4, 1.1},
	MoodPlayful: {1.2, 1.1},
	MoodSad:     {0.7, 0.8},
	MoodAngry:   {0.5, 0.6},
}

// AffectionMultiplier returns the mood scaling applied to affection deltas.
// Unlisted moods (including neutral) scale by exactly 1.0.
func AffectionMultiplier(m Mood) float64 {
	if s, ok := moodScales[m]; ok {
		return s.affection
	}
	return 1.0
}

// TrustMultiplier returns the mood scaling applied to trust deltas.
func TrustMultiplier(m Mood) float64 {
	if s, ok := moodScales[m]; ok {
		return s.trust
	}
	return 1.0
}

// Quality classifies a combined affection+trust delta into an ordinal bucket.
func Quality(totalDelta int) string {
	switch {
	case totalDelta >= 10:
		return "exceptional"
	case totalDelta >= 6:
		return "great"
	case totalDelta >= 3:
		return "good"
	case totalDelta >= 1:
		return "neutral"
	default:
		return "poor"
	}
}

// AffectionGainMessage returns UI feedback for a positive affection gain,
// or "" for a non-positive delta.
func AffectionGainMessage(delta int, name string) string {
	switch {
	case delta >= 6:
		return name + " absolutely adores that! 💕"
	case delta >= 4:
		return name + " is beaming with joy!"
	case delta >= 3:
		return name + " really likes that!"
	case delta >= 2:
		return name + " seems pleased."
	case delta >= 1:
		return name + " wiggles happily."
	default:
		return ""
	}
}

// TrustGainMessage returns UI feedback for a positive trust gain,
// or "" for a non-positive delta.
func TrustGainMessage(delta int, name string) string {
	switch {
	case delta >= 6:
		return name + " trusts you completely now. 🤝"
	case delta >= 4:
		return name + " feels truly safe with you."
	case delta >= 3:
		return name + " is opening up to you."
	case delta >= 2:
		return name + " relaxes a little around you."
	case delta >= 1:
		return name + " watches you a bit less warily."
	default:
		return ""
	}
}

// Advice suggests what the player should do next for this bond.
// Priority order: low engagement, lagging trust, lagging affection,
// then tiered praise by score.
func Advice(affection, trust, totalInteractions int) string {
	score := Score(affection, trust)

	if score < 15 && totalInteractions < 5 {
		return "You're just getting to know each other — keep chatting!"
	}
	if affection-trust > 20 {
		return "Your pet likes you but doesn't fully trust you yet. Be consistent and gentle to build trust."
	}
	if trust-affection > 20 {
		return "Your pet trusts you but wants more warmth. Show some affection!"
	}

	switch {
	case score >= 75:
		return "You two are inseparable. Best friends forever!"
	case score >= 55:
		return "A close and happy bond — keep doing what you're doing."
	case score >= 35:
		return "A solid friendship is forming. Nice work!"
	default:
		return "Things are warming up. A little attention goes a long way."
	}
}
