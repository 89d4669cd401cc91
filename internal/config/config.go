package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Default QWeather settings.
const (
	DefaultBaseURL       = "https://devapi.qweather.com"
	DefaultLocationID    = "101260101"
	DefaultLocationCoord = "106.61,26.64"
	DefaultCityName      = "贵阳市"
	DefaultLifeTypes     = "2,3,5,6,8,9,15,16"
)

// AppConfig holds every externally supplied setting.
type AppConfig struct {
	QWeatherAPIKey string `toml:"qweather_api_key" validate:"required"`

	ForecastURL string `toml:"forecast_url" validate:"required,url"`
	WarningURL  string `toml:"warning_url" validate:"required,url"`
	MinutelyURL string `toml:"minutely_url" validate:"required,url"`
	IndicesURL  string `toml:"indices_url" validate:"required,url"`
	RealtimeURL string `toml:"realtime_url" validate:"required,url"`

	LocationID    string `toml:"location_id" validate:"required"`
	LocationCoord string `toml:"location_coord" validate:"required"`
	CityName      string `toml:"city_name"`
	LifeTypes     string `toml:"life_types"`

	// WebhookURL is required unless DryRun is set.
	WebhookURL string `toml:"webhook_url" validate:"omitempty,url"`
	DryRun     bool   `toml:"-"`

	// Result cache.
	CacheExpiration time.Duration `toml:"-" validate:"gt=0"`
	CacheBackend    string        `toml:"cache_backend" validate:"oneof=memory redis"`
	RedisURL        string        `toml:"redis_url" validate:"required_if=CacheBackend redis"`

	// Retry policy shared by fetchers and the notifier.
	MaxRetries int           `toml:"max_retries" validate:"min=1"`
	RetryDelay time.Duration `toml:"-" validate:"gte=0"`

	HTTPTimeout time.Duration `toml:"-" validate:"gt=0"`

	// Optional delivery audit trail.
	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`
}

// fileConfig is the TOML shape; durations are strings like "300s".
type fileConfig struct {
	AppConfig
	CacheExpiration string `toml:"cache_expiration"`
	RetryDelay      string `toml:"retry_delay"`
	HTTPTimeout     string `toml:"http_timeout"`
}

var validate = validator.New()

// Default returns the configuration used when nothing overrides it.
func Default() *AppConfig {
	return &AppConfig{
		ForecastURL:     DefaultBaseURL + "/v7/weather/3d",
		WarningURL:      DefaultBaseURL + "/v7/warning/now",
		MinutelyURL:     DefaultBaseURL + "/v7/minutely/5m",
		IndicesURL:      DefaultBaseURL + "/v7/indices/1d",
		RealtimeURL:     DefaultBaseURL + "/v7/grid-weather/now",
		LocationID:      DefaultLocationID,
		LocationCoord:   DefaultLocationCoord,
		CityName:        DefaultCityName,
		LifeTypes:       DefaultLifeTypes,
		CacheExpiration: 300 * time.Second,
		CacheBackend:    "memory",
		MaxRetries:      3,
		RetryDelay:      1 * time.Second,
		HTTPTimeout:     10 * time.Second,
		KafkaTopic:      "weather-notify.deliveries",
	}
}

// LoadOption adjusts how Load validates the result.
type LoadOption func(*AppConfig)

// WithDryRun marks a run that prints messages instead of posting them, so
// no webhook has to be configured.
func WithDryRun(dryRun bool) LoadOption {
	return func(c *AppConfig) { c.DryRun = dryRun }
}

// Load builds the configuration from defaults, an optional TOML file at
// path, and the environment (including a .env file), in that order of
// precedence from lowest to highest.
func Load(path string, opts ...LoadOption) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c *AppConfig) Validate() error {
	var fields []string
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}
	if c.WebhookURL == "" && !c.DryRun {
		fields = append(fields, "WebhookURL (required)")
	}
	if len(fields) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
	}
	return nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	raw := fileConfig{AppConfig: *cfg}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	*cfg = raw.AppConfig

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"cache_expiration", raw.CacheExpiration, &cfg.CacheExpiration},
		{"retry_delay", raw.RetryDelay, &cfg.RetryDelay},
		{"http_timeout", raw.HTTPTimeout, &cfg.HTTPTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := parseSeconds(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", d.name, path, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.QWeatherAPIKey = getenvDefault("QWEATHER_API_KEY", cfg.QWeatherAPIKey)

	if base := os.Getenv("QWEATHER_BASE_URL"); base != "" {
		base = strings.TrimRight(base, "/")
		cfg.ForecastURL = base + "/v7/weather/3d"
		cfg.WarningURL = base + "/v7/warning/now"
		cfg.MinutelyURL = base + "/v7/minutely/5m"
		cfg.IndicesURL = base + "/v7/indices/1d"
		cfg.RealtimeURL = base + "/v7/grid-weather/now"
	}
	cfg.ForecastURL = getenvDefault("QWEATHER_FORECAST_URL", cfg.ForecastURL)
	cfg.WarningURL = getenvDefault("QWEATHER_WARNING_URL", cfg.WarningURL)
	cfg.MinutelyURL = getenvDefault("QWEATHER_MINUTELY_URL", cfg.MinutelyURL)
	cfg.IndicesURL = getenvDefault("QWEATHER_INDICES_URL", cfg.IndicesURL)
	cfg.RealtimeURL = getenvDefault("QWEATHER_REALTIME_URL", cfg.RealtimeURL)

	cfg.LocationID = getenvDefault("WEATHER_LOCATION_ID", cfg.LocationID)
	cfg.LocationCoord = getenvDefault("WEATHER_LOCATION_COORD", cfg.LocationCoord)
	cfg.CityName = getenvDefault("WEATHER_CITY_NAME", cfg.CityName)
	cfg.LifeTypes = getenvDefault("WEATHER_LIFE_TYPES", cfg.LifeTypes)

	cfg.WebhookURL = getenvDefault("WECOM_WEBHOOK_URL", cfg.WebhookURL)

	cfg.CacheBackend = getenvDefault("CACHE_BACKEND", cfg.CacheBackend)
	cfg.RedisURL = getenvDefault("REDIS_URL", cfg.RedisURL)
	cfg.MaxRetries = getenvInt("MAX_RETRIES", cfg.MaxRetries)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CACHE_EXPIRATION", &cfg.CacheExpiration},
		{"RETRY_DELAY", &cfg.RetryDelay},
		{"HTTP_TIMEOUT", &cfg.HTTPTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", cfg.KafkaTopic)

	return nil
}

// parseSeconds accepts a Go duration ("5m") or a bare number of seconds ("300").
func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
