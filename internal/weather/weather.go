// Package weather fetches current conditions from wttr.in for the
// dashboard's side panel.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var client = &http.Client{Timeout: 5 * time.Second}

// Report holds the displayed subset of current conditions.
type Report struct {
	Location    string
	Condition   string
	TempC       string
	FeelsLikeC  string
	HumidityPct string
	WindKmph    string
	FetchedAt   time.Time
}

// wttrResponse mirrors the j1 JSON format's current_condition block.
type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		FeelsLikeC  string `json:"FeelsLikeC"`
		Humidity    string `json:"humidity"`
		WindKmph    string `json:"windspeedKmph"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// Fetch retrieves current weather for a location.
func Fetch(ctx context.Context, location string) (*Report, error) {
	endpoint := fmt.Sprintf("http://wttr.in/%s?format=j1", url.PathEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wttr.in status: %d", resp.StatusCode)
	}

	var parsed wttrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("wttr.in decode: %w", err)
	}
	if len(parsed.CurrentCondition) == 0 {
		return nil, fmt.Errorf("wttr.in: empty response")
	}

	current := parsed.CurrentCondition[0]
	report := &Report{
		Location:    location,
		TempC:       current.TempC,
		FeelsLikeC:  current.FeelsLikeC,
		HumidityPct: current.Humidity,
		WindKmph:    current.WindKmph,
		FetchedAt:   time.Now(),
	}
	if len(current.WeatherDesc) > 0 {
		report.Condition = current.WeatherDesc[0].Value
	}
	return report, nil
}
