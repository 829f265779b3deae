package ambient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"log/slog"
)

// WeatherClient pulls real-world conditions from OpenWeatherMap so the pond
// sky can mirror the weather outside the player's window. Entirely optional;
// without a key the noise-driven sky in Clock is used instead.
type WeatherClient struct {
	apiKey   string
	location string
	client   *http.Client

	mu          sync.Mutex
	cached      *Weather
	cachedAt    time.Time
	cacheTTL    time.Duration
	lastFailAt  time.Time
	failBackoff time.Duration
}

// Weather is the subset of real conditions the pond cares about.
type Weather struct {
	Temp        float64 `json:"temp"` // Celsius
	Description string  `json:"description"`
	CloudCover  float64 `json:"cloudCover"` // 0..1
	IsRain      bool    `json:"isRain"`
	IsSnow      bool    `json:"isSnow"`
}

// NewWeatherClient creates a weather client. Returns nil if apiKey is empty.
func NewWeatherClient(apiKey, location string) *WeatherClient {
	if apiKey == "" {
		return nil
	}
	if location == "" {
		location = "Portland,US"
	}
	return &WeatherClient{
		apiKey:   apiKey,
		location: location,
		client:   &http.Client{Timeout: 10 * time.Second},
		cacheTTL: 10 * time.Minute,
	}
}

// Fetch returns current conditions, serving the cache while fresh and
// backing off on repeated API failures.
func (w *WeatherClient) Fetch() (*Weather, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cached != nil && time.Since(w.cachedAt) < w.cacheTTL {
		return w.cached, nil
	}

	if w.failBackoff > 0 && time.Since(w.lastFailAt) < w.failBackoff {
		if w.cached != nil {
			return w.cached, nil
		}
		return nil, fmt.Errorf("weather API backoff (%s remaining)", w.failBackoff-time.Since(w.lastFailAt))
	}

	weather, err := w.fetchFromAPI()
	if err != nil {
		w.lastFailAt = time.Now()
		if w.failBackoff == 0 {
			w.failBackoff = time.Minute
		} else if w.failBackoff < 10*time.Minute {
			w.failBackoff *= 2
		}
		if w.cached != nil {
			return w.cached, nil
		}
		return nil, err
	}

	w.cached = weather
	w.cachedAt = time.Now()
	w.failBackoff = 0
	return weather, nil
}

func (w *WeatherClient) fetchFromAPI() (*Weather, error) {
	apiURL := fmt.Sprintf("https://api.openweathermap.org/data/2.5/weather?q=%s&appid=%s&units=metric",
		url.QueryEscape(w.location), w.apiKey)

	resp, err := w.client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("weather API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API error %d: %s", resp.StatusCode, string(body))
	}

	var owm struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Clouds struct {
			All float64 `json:"all"` // percent
		} `json:"clouds"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.Unmarshal(body, &owm); err != nil {
		return nil, fmt.Errorf("parse weather: %w", err)
	}

	weather := &Weather{
		Temp:       owm.Main.Temp,
		CloudCover: owm.Clouds.All / 100,
	}
	if len(owm.Weather) > 0 {
		weather.Description = owm.Weather[0].Description
		main := strings.ToLower(owm.Weather[0].Main)
		weather.IsRain = main == "rain" || main == "drizzle" || main == "thunderstorm"
		weather.IsSnow = main == "snow"
	}

	slog.Debug("weather fetched", "temp", weather.Temp, "desc", weather.Description)
	return weather, nil
}
