package creature

import "math/rand"

// Fallback phrases stand in whenever the AI provider fails. The player never
// sees a raw error, only one of these.
var fallbackPhrases = map[Type][]string{
	TypeSlime: {
		"Blub blub! *wiggles happily*",
		"*bounces in a small circle*",
		"Squish squish~ I'm listening!",
		"*tilts gelatinously* Hmm?",
		"Bloop! That made me think of snacks.",
		"*jiggles thoughtfully*",
	},
	TypeMushroom: {
		"*glows softly*",
		"The soil whispers nice things today.",
		"*sways from side to side*",
		"Mm. Spores agree with you.",
		"*pulses a gentle warm light*",
		"I was just thinking about rain.",
	},
}

// FallbackPhrase returns a canned reply for the creature's type.
func FallbackPhrase(t Type, rng *rand.Rand) string {
	pool, ok := fallbackPhrases[t]
	if !ok {
		pool = fallbackPhrases[TypeSlime]
	}
	return pool[rng.Intn(len(pool))]
}

// IsFallbackPhrase reports whether text comes from the type's fallback pool.
func IsFallbackPhrase(t Type, text string) bool {
	pool, ok := fallbackPhrases[t]
	if !ok {
		pool = fallbackPhrases[TypeSlime]
	}
	for _, p := range pool {
		if p == text {
			return true
		}
	}
	return false
}

// Autonomous speech seeds: prompts a creature "thinks about" when it decides
// to talk on its own. These are fed to the AI in place of user text.
var autonomousSeeds = []string{
	"Say something short about what you're doing right now.",
	"Share a tiny observation about the scene around you.",
	"Hum or mumble something cute, in character.",
	"Mention something you're looking forward to.",
	"React to the time of day in one short sentence.",
}

// AutonomousSeed picks a prompt for spontaneous speech.
func AutonomousSeed(rng *rand.Rand) string {
	return autonomousSeeds[rng.Intn(len(autonomousSeeds))]
}

// Short exclamations shown in the bubble during spontaneous idle jumps.
var jumpPhrases = []string{"Boing!", "Wheee!", "*boing*", "Hup!"}

// JumpPhrase picks a short exclamation for a spontaneous jump.
func JumpPhrase(rng *rand.Rand) string {
	return jumpPhrases[rng.Intn(len(jumpPhrases))]
}

// Name suggestions used when the AI-assisted naming call fails.
var nameFallbacks = map[Type][]string{
	TypeSlime:    {"Blobby", "Squish", "Jelly", "Bloop", "Wobble"},
	TypeMushroom: {"Spore", "Cap", "Morel", "Button", "Toadie"},
}

// FallbackName returns a canned name suggestion for the creature's type.
func FallbackName(t Type, rng *rand.Rand) string {
	pool, ok := nameFallbacks[t]
	if !ok {
		pool = nameFallbacks[TypeSlime]
	}
	return pool[rng.Intn(len(pool))]
}
