package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"grocerytracker/internal/models"
	"grocerytracker/internal/throttle"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCity is used when the caller does not name one.
const DefaultCity = "Raleigh"

// refreshTimeout caps a coalesced upstream refresh.
const refreshTimeout = 15 * time.Second

var knownConditions = map[string]bool{
	"Clear":        true,
	"Clouds":       true,
	"Tornado":      true,
	"Drizzle":      true,
	"Rain":         true,
	"Thunderstorm": true,
	"Snow":         true,
}

// WeatherFetcher loads the raw current-weather document for a city.
type WeatherFetcher interface {
	Fetch(ctx context.Context, city string) ([]byte, error)
}

// OpenWeatherFetcher queries an OpenWeatherMap compatible endpoint.
type OpenWeatherFetcher struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewOpenWeatherFetcher creates a fetcher for baseURL.
func NewOpenWeatherFetcher(baseURL, apiKey string, timeout time.Duration) *OpenWeatherFetcher {
	return &OpenWeatherFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
	}
}

// Fetch performs the upstream request in imperial units.
func (f *OpenWeatherFetcher) Fetch(ctx context.Context, city string) ([]byte, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "imperial")
	q.Set("appid", f.apiKey)

	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout <= 0 {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	code, body, errs := fiber.Get(f.baseURL + "?" + q.Encode()).Timeout(timeout).Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("weather request failed: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", code)
	}
	return body, nil
}

// openWeatherDoc is the subset of the upstream document we read.
type openWeatherDoc struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// WeatherService serves current weather through a refresh throttle.
type WeatherService struct {
	fetcher WeatherFetcher
	gate    *throttle.Gate
	group   singleflight.Group
	now     func() time.Time
}

// NewWeatherService creates a WeatherService.
func NewWeatherService(fetcher WeatherFetcher, gate *throttle.Gate) *WeatherService {
	return &WeatherService{
		fetcher: fetcher,
		gate:    gate,
		now:     time.Now,
	}
}

// Current returns the weather for city, DefaultCity when blank.
func (s *WeatherService) Current(ctx context.Context, city string) (*models.Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		city = DefaultCity
	}
	key := strings.ToLower(city)

	payload, fresh, err := s.gate.Do(ctx, key, func(ctx context.Context) ([]byte, error) {
		// Coalesce concurrent refreshes of the same city into one upstream call.
		// Shared refreshes outlive the caller that started them.
		v, err, _ := s.group.Do(key, func() (any, error) {
			refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
			defer cancel()
			return s.refresh(refreshCtx, city)
		})
		if err != nil {
			return nil, err
		}
		return v.([]byte), nil
	})
	if err != nil {
		return nil, internalError("weather is currently unavailable", err)
	}

	var w models.Weather
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, internalError("failed to decode cached weather", err)
	}
	w.Cached = !fresh
	return &w, nil
}

func (s *WeatherService) refresh(ctx context.Context, city string) ([]byte, error) {
	raw, err := s.fetcher.Fetch(ctx, city)
	if err != nil {
		return nil, err
	}

	var doc openWeatherDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode weather document: %w", err)
	}

	w := models.Weather{
		City:        doc.Name,
		Temperature: doc.Main.Temp,
		Condition:   "Clouds",
		FetchedAt:   s.now().UTC(),
	}
	if w.City == "" {
		w.City = city
	}
	if len(doc.Weather) > 0 && knownConditions[doc.Weather[0].Main] {
		w.Condition = doc.Weather[0].Main
	}
	return json.Marshal(w)
}
