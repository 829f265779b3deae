// Package chat turns user messages (and autonomous triggers) into
// relationship updates, AI calls, and conversation history, all through the
// creature store.
package chat

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"github.com/ribbitworks/slimepond/internal/relationship"
)

// Sentiment classifies the tone of a user message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ScoreResult is the relationship effect of one user message.
type ScoreResult struct {
	Sentiment      Sentiment
	AffectionDelta int
	TrustDelta     int
	Mood           relationship.Mood // "" leaves the mood unchanged
	IsQuestion     bool
	IsLong         bool
}

// Scorer maps raw user text to relationship deltas. The keyword heuristic
// below is one implementation; scoring is a seam precisely because keyword
// lists are crude and language-specific.
type Scorer interface {
	Score(text string) ScoreResult
}

const longMessageLen = 50

var (
	positiveWords = regexp.MustCompile(`(?i)\b(love|like|adore|great|awesome|amazing|wonderful|cute|sweet|adorable|good|best|nice|happy|thank|thanks|friend)\b`)
	negativeWords = regexp.MustCompile(`(?i)\b(hate|stupid|dumb|bad|ugly|annoying|terrible|awful|worst|boring|gross)\b`)
)

// KeywordScorer is the default English keyword sentiment heuristic.
type KeywordScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewKeywordScorer creates the default scorer.
func NewKeywordScorer(seed int64) *KeywordScorer {
	return &KeywordScorer{rng: rand.New(rand.NewSource(seed))}
}

var positiveMoods = []relationship.Mood{
	relationship.MoodHappy,
	relationship.MoodExcited,
	relationship.MoodLoving,
}

// Score classifies text and computes the proposed affection/trust deltas.
// Positive: +3/+2 and a random upbeat mood. Negative: -2/-1 and sad.
// Neutral: +1 affection. Questions add +1 trust; long messages +1 affection.
func (s *KeywordScorer) Score(text string) ScoreResult {
	res := ScoreResult{Sentiment: SentimentNeutral}

	switch {
	case negativeWords.MatchString(text):
		res.Sentiment = SentimentNegative
		res.AffectionDelta = -2
		res.TrustDelta = -1
		res.Mood = relationship.MoodSad
	case positiveWords.MatchString(text):
		res.Sentiment = SentimentPositive
		res.AffectionDelta = 3
		res.TrustDelta = 2
		s.mu.Lock()
		res.Mood = positiveMoods[s.rng.Intn(len(positiveMoods))]
		s.mu.Unlock()
	default:
		res.AffectionDelta = 1
	}

	if strings.Contains(text, "?") {
		res.IsQuestion = true
		res.TrustDelta++
	}
	if len(text) > longMessageLen {
		res.IsLong = true
		res.AffectionDelta++
	}

	return res
}
