package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-notify/internal/common"
	"github.com/i474232898/weather-notify/internal/weather"
)

// successCode is the value of the body "code" field on a successful call.
const successCode = "200"

// DefaultLifeIndexTypes selects sport, car wash, dressing, UV, comfort,
// cold risk, makeup and sunscreen indices.
const DefaultLifeIndexTypes = "2,3,5,6,8,9,15,16"

// QWeatherEndpoints lists the v7 endpoints and the query values each fetch uses.
type QWeatherEndpoints struct {
	ForecastURL string
	WarningURL  string
	MinutelyURL string
	IndicesURL  string
	RealtimeURL string

	// LocationID is a city id, used by forecast, warning and indices.
	LocationID string
	// LocationCoord is "lon,lat", used by minutely rain and grid realtime.
	LocationCoord string
	// LifeTypes is the indices type filter.
	LifeTypes string
}

// QWeather implements weather.Source against the QWeather v7 API. Each call
// performs exactly one GET; retries and caching are layered on top.
type QWeather struct {
	name      string
	apiKey    string
	endpoints QWeatherEndpoints
	client    *http.Client
	circuit   *gobreaker.CircuitBreaker
}

// NewQWeather creates a QWeather provider.
func NewQWeather(client *http.Client, apiKey string, endpoints QWeatherEndpoints) *QWeather {
	if endpoints.LifeTypes == "" {
		endpoints.LifeTypes = DefaultLifeIndexTypes
	}
	return &QWeather{
		name:      "qweather",
		apiKey:    apiKey,
		endpoints: endpoints,
		client:    client,
		circuit:   common.NewCircuitBreaker("qweather"),
	}
}

// Forecast fetches the 3-day forecast.
func (p *QWeather) Forecast(ctx context.Context) (*weather.Forecast, error) {
	var payload struct {
		Daily []weather.DailyForecast `json:"daily"`
	}
	ok, err := p.get(ctx, "forecast", p.endpoints.ForecastURL, p.endpoints.LocationID, nil, &payload)
	if err != nil || !ok {
		return nil, err
	}
	return &weather.Forecast{Daily: payload.Daily}, nil
}

// Warnings fetches the active weather warnings.
func (p *QWeather) Warnings(ctx context.Context) (*weather.WarningReport, error) {
	var payload struct {
		Warning []weather.Warning `json:"warning"`
	}
	ok, err := p.get(ctx, "warning", p.endpoints.WarningURL, p.endpoints.LocationID, nil, &payload)
	if err != nil || !ok {
		return nil, err
	}
	return &weather.WarningReport{Warnings: payload.Warning}, nil
}

// MinutelyRain fetches the 2-hour minutely precipitation outlook.
func (p *QWeather) MinutelyRain(ctx context.Context) (*weather.MinutelyRain, error) {
	var payload struct {
		Summary  string                   `json:"summary"`
		Minutely []weather.MinutelyPrecip `json:"minutely"`
	}
	ok, err := p.get(ctx, "minutely rain", p.endpoints.MinutelyURL, p.endpoints.LocationCoord, nil, &payload)
	if err != nil || !ok {
		return nil, err
	}
	return &weather.MinutelyRain{Summary: payload.Summary, Minutely: payload.Minutely}, nil
}

// LifeIndices fetches the daily life indices.
func (p *QWeather) LifeIndices(ctx context.Context) (*weather.LifeIndices, error) {
	var payload struct {
		Daily []weather.LifeIndex `json:"daily"`
	}
	extra := url.Values{}
	extra.Set("type", p.endpoints.LifeTypes)
	ok, err := p.get(ctx, "life indices", p.endpoints.IndicesURL, p.endpoints.LocationID, extra, &payload)
	if err != nil || !ok {
		return nil, err
	}
	return &weather.LifeIndices{Daily: payload.Daily}, nil
}

// Realtime fetches the grid realtime conditions.
func (p *QWeather) Realtime(ctx context.Context) (*weather.Realtime, error) {
	var payload struct {
		Now *weather.Realtime `json:"now"`
	}
	ok, err := p.get(ctx, "realtime", p.endpoints.RealtimeURL, p.endpoints.LocationCoord, nil, &payload)
	if err != nil || !ok {
		return nil, err
	}
	return payload.Now, nil
}

// get issues one GET and decodes the body into target. It returns false
// without an error when the provider answered with a non-success code; that
// case is logged here and must not be retried.
func (p *QWeather) get(ctx context.Context, what, endpoint, location string, extra url.Values, target any) (bool, error) {
	if p.apiKey == "" {
		return false, fmt.Errorf("qweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("location", location)
		values.Set("key", p.apiKey)
		for k, vs := range extra {
			for _, v := range vs {
				values.Add(k, v)
			}
		}

		u := fmt.Sprintf("%s?%s", endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := common.DoRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", p.name, what, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%s %s: read body: %w", p.name, what, err)
	}

	var status struct {
		Code   string `json:"code"`
		FxLink string `json:"fxLink"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return false, fmt.Errorf("%s %s: decode: %w", p.name, what, err)
	}
	if status.Code != successCode {
		log.Printf("ERROR: %s %s failed: code=%s fxLink=%s", p.name, what, status.Code, status.FxLink)
		return false, nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return false, fmt.Errorf("%s %s: decode: %w", p.name, what, err)
	}
	return true, nil
}
