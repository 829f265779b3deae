package relationship

import (
	"strings"
	"testing"
)

func TestScore(t *testing.T) {
	cases := []struct {
		affection, trust, want int
	}{
		{100, 100, 100},
		{100, 0, 70},
		{0, 100, 30},
		{50, 50, 50},
		{0, 0, 0},
		{10, 5, 9}, // round(7 + 1.5)
	}
	for _, c := range cases {
		if got := Score(c.affection, c.trust); got != c.want {
			t.Errorf("Score(%d, %d) = %d, want %d", c.affection, c.trust, got, c.want)
		}
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		score int
		want  Level
	}{
		{0, LevelStranger},
		{14, LevelStranger},
		{15, LevelAcquaintance},
		{34, LevelAcquaintance},
		{35, LevelFriend},
		{54, LevelFriend},
		{55, LevelCloseFriend},
		{74, LevelCloseFriend},
		{75, LevelBestFriend},
		{100, LevelBestFriend},
	}
	for _, c := range cases {
		if got := LevelFor(c.score); got != c.want {
			t.Errorf("LevelFor(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestProgressToNextLevel(t *testing.T) {
	p := ProgressToNextLevel(10, 5)
	if p.NextLevel != LevelAcquaintance {
		t.Errorf("NextLevel = %q, want acquaintance", p.NextLevel)
	}
	if p.Target != 15 {
		t.Errorf("Target = %d, want 15", p.Target)
	}
	if p.Current != 9 {
		t.Errorf("Current = %d, want 9", p.Current)
	}

	top := ProgressToNextLevel(100, 100)
	if top.NextLevel != "" {
		t.Errorf("NextLevel at max tier = %q, want empty", top.NextLevel)
	}
	if top.Percentage != 100 {
		t.Errorf("Percentage at max tier = %d, want 100", top.Percentage)
	}
}

func TestLevelUpMessage(t *testing.T) {
	if msg := LevelUpMessage(LevelFriend, LevelFriend, "Blobby"); msg != "" {
		t.Errorf("same-tier message = %q, want empty", msg)
	}

	msg := LevelUpMessage(LevelStranger, LevelAcquaintance, "Blobby")
	if !strings.Contains(msg, "Blobby") || !strings.Contains(msg, "acquaintance") {
		t.Errorf("level-up message %q missing name or tier", msg)
	}
}

func TestMoodMultipliers(t *testing.T) {
	for _, m := range []Mood{MoodLoving, MoodHappy, MoodExcited, MoodPlayful} {
		if AffectionMultiplier(m) <= 1.0 {
			t.Errorf("%s affection multiplier = %v, want > 1.0", m, AffectionMultiplier(m))
		}
	}
	for _, m := range []Mood{MoodSad, MoodAngry} {
		if AffectionMultiplier(m) >= 1.0 {
			t.Errorf("%s affection multiplier = %v, want < 1.0", m, AffectionMultiplier(m))
		}
		if TrustMultiplier(m) >= 1.0 {
			t.Errorf("%s trust multiplier = %v, want < 1.0", m, TrustMultiplier(m))
		}
	}
	if AffectionMultiplier(MoodNeutral) != 1.0 || TrustMultiplier(MoodNeutral) != 1.0 {
		t.Error("neutral mood must scale by exactly 1.0")
	}
	if AffectionMultiplier(Mood("confused")) != 1.0 {
		t.Error("unlisted moods must scale by exactly 1.0")
	}
}

func TestQuality(t *testing.T) {
	cases := []struct {
		delta int
		want  string
	}{
		{12, "exceptional"},
		{10, "exceptional"},
		{6, "great"},
		{3, "good"},
		{1, "neutral"},
		{0, "poor"},
		{-5, "poor"},
	}
	for _, c := range cases {
		if got := Quality(c.delta); got != c.want {
			t.Errorf("Quality(%d) = %q, want %q", c.delta, got, c.want)
		}
	}
}

func TestGainMessages(t *testing.T) {
	if AffectionGainMessage(0, "Blobby") != "" {
		t.Error("non-positive affection delta must yield no message")
	}
	if TrustGainMessage(-3, "Blobby") != "" {
		t.Error("non-positive trust delta must yield no message")
	}

	// Each threshold yields a distinct rung.
	seen := map[string]bool{}
	for _, d := range []int{1, 2, 3, 4, 6} {
		msg := AffectionGainMessage(d, "Blobby")
		if msg == "" {
			t.Errorf("AffectionGainMessage(%d) empty", d)
		}
		if seen[msg] {
			t.Errorf("AffectionGainMessage(%d) duplicates a lower rung: %q", d, msg)
		}
		seen[msg] = true
	}
}

func TestAdvice(t *testing.T) {
	if got := Advice(5, 5, 2); !strings.Contains(got, "chatting") {
		t.Errorf("low-engagement advice = %q", got)
	}
	if got := Advice(60, 20, 50); !strings.Contains(got, "trust") {
		t.Errorf("trust-lagging advice = %q", got)
	}
	if got := Advice(20, 50, 50); !strings.Contains(got, "affection") {
		t.Errorf("affection-lagging advice = %q", got)
	}
	if got := Advice(90, 90, 200); !strings.Contains(got, "Best friends") {
		t.Errorf("top-tier advice = %q", got)
	}
}
