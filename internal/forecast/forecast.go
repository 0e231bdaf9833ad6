package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

// Day is one day of the upstream daily forecast, reshaped for the client.
type Day struct {
	Date          string  `json:"date"`
	MaxTemp       float64 `json:"max_temp"`
	MinTemp       float64 `json:"min_temp"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"wind_speed"`
}

// Service fetches the multi-day forecast from Open-Meteo and maps its
// parallel day-indexed arrays into ordered Day entries.
type Service struct {
	client  *http.Client
	baseURL string
}

// NewService creates a new Service. Open-Meteo requires no API key.
func NewService(client *http.Client) *Service {
	return &Service{
		client:  client,
		baseURL: "https://api.open-meteo.com/v1/forecast",
	}
}

// dailyArrays mirrors Open-Meteo's daily block. Numeric entries are pointers
// so a null at some index maps to 0 instead of failing the decode.
type dailyArrays struct {
	Time          []string   `json:"time"`
	TempMax       []*float64 `json:"temperature_2m_max"`
	TempMin       []*float64 `json:"temperature_2m_min"`
	Precipitation []*float64 `json:"precipitation_sum"`
	WindSpeedMax  []*float64 `json:"wind_speed_10m_max"`
}

// Fetch issues one forecast call and returns the mapped days in upstream
// order. A response without the top-level date array is an upstream error.
func (s *Service) Fetch(ctx context.Context, lat, lon float64) ([]Day, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max")
	values.Set("timezone", "auto")

	u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &apperr.UpstreamError{Service: "open-meteo", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.UpstreamError{Service: "open-meteo", Status: resp.StatusCode}
	}

	var payload struct {
		Daily dailyArrays `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &apperr.UpstreamError{Service: "open-meteo", Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(payload.Daily.Time) == 0 {
		return nil, &apperr.UpstreamError{Service: "open-meteo", Err: fmt.Errorf("invalid response: missing daily time array")}
	}

	return mapDays(payload.Daily), nil
}

// mapDays walks the date array and picks the matching index out of each
// numeric array, defaulting to 0 when an entry is missing or null.
func mapDays(d dailyArrays) []Day {
	days := make([]Day, 0, len(d.Time))
	for i, date := range d.Time {
		days = append(days, Day{
			Date:          date,
			MaxTemp:       at(d.TempMax, i),
			MinTemp:       at(d.TempMin, i),
			Precipitation: at(d.Precipitation, i),
			WindSpeed:     at(d.WindSpeedMax, i),
		})
	}
	return days
}

func at(vals []*float64, i int) float64 {
	if i < len(vals) && vals[i] != nil {
		return *vals[i]
	}
	return 0
}
