// Package ambient derives the scene's time-of-day phase and sky conditions.
// It only flavors prompts and the snapshot the renderer draws from; nothing
// in the behavior engine depends on it.
package ambient

import (
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Phase is a coarse time-of-day bucket.
type Phase string

const (
	PhaseDawn  Phase = "dawn"
	PhaseDay   Phase = "day"
	PhaseDusk  Phase = "dusk"
	PhaseNight Phase = "night"
)

// Conditions is the ambient state included in scene snapshots.
type Conditions struct {
	Phase      Phase   `json:"phase"`
	Cloudiness float64 `json:"cloudiness"` // 0 clear .. 1 overcast
	Raining    bool    `json:"raining,omitempty"`
	Snowing    bool    `json:"snowing,omitempty"`
}

// Clock reads ambient conditions from an opaque time source.
type Clock struct {
	now   func() time.Time
	cloud opensimplex.Noise

	// Weather, when set, overrides the noise-driven sky with real
	// conditions. Fetch failures fall back to the noise walk.
	Weather *WeatherClient
}

// NewClock creates an ambient clock. now may be nil for wall-clock time.
func NewClock(seed int64, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{
		now:   now,
		cloud: opensimplex.NewNormalized(seed),
	}
}

// PhaseAt buckets an instant into a day phase.
func PhaseAt(t time.Time) Phase {
	switch h := t.Hour(); {
	case h >= 5 && h < 8:
		return PhaseDawn
	case h >= 8 && h < 18:
		return PhaseDay
	case h >= 18 && h < 21:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

// Now returns the current ambient conditions. Cloud cover mirrors real
// weather when a client is wired, otherwise it drifts smoothly over hours
// via a 1D noise walk.
func (c *Clock) Now() Conditions {
	t := c.now()
	cond := Conditions{
		Phase:      PhaseAt(t),
		Cloudiness: c.cloud.Eval2(float64(t.Unix())/3600*0.15, 0),
	}
	if c.Weather != nil {
		if w, err := c.Weather.Fetch(); err == nil {
			cond.Cloudiness = w.CloudCover
			cond.Raining = w.IsRain
			cond.Snowing = w.IsSnow
		}
	}
	return cond
}

// Flavor renders conditions as a one-line scene description for prompts.
func (c *Clock) Flavor() string {
	cond := c.Now()

	var sky string
	switch {
	case cond.Snowing:
		sky = "snow is drifting down"
	case cond.Raining:
		sky = "rain is pattering on the water"
	case cond.Cloudiness > 0.6:
		sky = "the sky is soft and cloudy"
	default:
		sky = "the sky is mostly clear"
	}

	switch cond.Phase {
	case PhaseDawn:
		return "early morning light over the pond, " + sky
	case PhaseDusk:
		return "the sun is setting over the pond, " + sky
	case PhaseNight:
		return "a quiet night by the pond, " + sky
	default:
		return "a bright day at the pond, " + sky
	}
}
