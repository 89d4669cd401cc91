package weather

import (
	"context"

	"github.com/i474232898/weather-notify/internal/cache"
	"github.com/i474232898/weather-notify/internal/retry"
)

// Fetcher names double as cache key prefixes and log labels.
const (
	fetchForecast = "get_weather_forecast"
	fetchWarning  = "get_weather_warning"
	fetchRain     = "get_minutely_rain"
	fetchLife     = "get_life_indices"
	fetchRealtime = "get_realtime_weather"
)

// DecoratedSource wraps every fetcher of a Source with the retry policy
// (outer) and the result cache (inner). A failed attempt is never cached;
// a nil "no data" result is.
type DecoratedSource struct {
	forecast retry.Func[*Forecast]
	warnings retry.Func[*WarningReport]
	rain     retry.Func[*MinutelyRain]
	life     retry.Func[*LifeIndices]
	realtime retry.Func[*Realtime]
}

// NewDecoratedSource builds the wrapped fetchers once. scope distinguishes
// cache keys of sources configured for different locations.
func NewDecoratedSource(src Source, c *cache.Cache, policy retry.Policy, scope ...any) *DecoratedSource {
	return &DecoratedSource{
		forecast: decorate(c, policy, fetchForecast, scope, src.Forecast),
		warnings: decorate(c, policy, fetchWarning, scope, src.Warnings),
		rain:     decorate(c, policy, fetchRain, scope, src.MinutelyRain),
		life:     decorate(c, policy, fetchLife, scope, src.LifeIndices),
		realtime: decorate(c, policy, fetchRealtime, scope, src.Realtime),
	}
}

func decorate[T any](c *cache.Cache, policy retry.Policy, name string, scope []any, fn func(context.Context) (T, error)) retry.Func[T] {
	cached := cache.Wrap(c, cache.Key(name, scope...), cache.Func[T](fn))
	return retry.Wrap(name, policy, retry.Func[T](cached))
}

func (d *DecoratedSource) Forecast(ctx context.Context) (*Forecast, error) {
	return d.forecast(ctx)
}

func (d *DecoratedSource) Warnings(ctx context.Context) (*WarningReport, error) {
	return d.warnings(ctx)
}

func (d *DecoratedSource) MinutelyRain(ctx context.Context) (*MinutelyRain, error) {
	return d.rain(ctx)
}

func (d *DecoratedSource) LifeIndices(ctx context.Context) (*LifeIndices, error) {
	return d.life(ctx)
}

func (d *DecoratedSource) Realtime(ctx context.Context) (*Realtime, error) {
	return d.realtime(ctx)
}
