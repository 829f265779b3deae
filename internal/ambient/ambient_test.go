package ambient

import (
	"testing"
	"time"
)

func TestPhaseBuckets(t *testing.T) {
	cases := []struct {
		hour int
		want Phase
	}{
		{0, PhaseNight},
		{4, PhaseNight},
		{5, PhaseDawn},
		{7, PhaseDawn},
		{8, PhaseDay},
		{17, PhaseDay},
		{18, PhaseDusk},
		{20, PhaseDusk},
		{21, PhaseNight},
		{23, PhaseNight},
	}
	for _, c := range cases {
		at := time.Date(2026, 3, 1, c.hour, 30, 0, 0, time.UTC)
		if got := PhaseAt(at); got != c.want {
			t.Errorf("PhaseAt(hour=%d) = %q, want %q", c.hour, got, c.want)
		}
	}
}

func TestConditionsInRange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(42, func() time.Time { return now })

	cond := clock.Now()
	if cond.Cloudiness < 0 || cond.Cloudiness > 1 {
		t.Errorf("cloudiness %v outside [0,1]", cond.Cloudiness)
	}
	if cond.Phase != PhaseDay {
		t.Errorf("phase at noon = %q, want day", cond.Phase)
	}
	if clock.Flavor() == "" {
		t.Error("flavor line is empty")
	}
}
