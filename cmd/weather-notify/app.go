package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	httpapi "github.com/i474232898/weather-notify/internal/api/http"
	"github.com/i474232898/weather-notify/internal/cache"
	"github.com/i474232898/weather-notify/internal/config"
	"github.com/i474232898/weather-notify/internal/messaging"
	"github.com/i474232898/weather-notify/internal/notify"
	"github.com/i474232898/weather-notify/internal/retry"
	"github.com/i474232898/weather-notify/internal/scheduler"
	"github.com/i474232898/weather-notify/internal/weather"
	"github.com/i474232898/weather-notify/internal/weather/providers"
)

// app holds the process-wide collaborators and their teardown.
type app struct {
	service *weather.Service
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath, config.WithDryRun(opts.dryRun))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{}

	// Shared HTTP client for the provider and the webhook.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var store cache.Store
	switch cfg.CacheBackend {
	case "redis":
		rs, err := cache.NewRedisStore(ctx, cfg.RedisURL, cfg.CacheExpiration)
		if err != nil {
			return nil, fmt.Errorf("failed to connect cache: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rs.Close() })
		store = rs
	default:
		store = cache.NewMemoryStore()
	}
	resultCache := cache.New(store, cfg.CacheExpiration)
	log.Printf("INFO: %s result cache, expiration %s", cfg.CacheBackend, resultCache.Expiration())

	policy := retry.Policy{
		MaxAttempts: cfg.MaxRetries,
		Delay:       cfg.RetryDelay,
	}

	qweather := providers.NewQWeather(httpClient, cfg.QWeatherAPIKey, providers.QWeatherEndpoints{
		ForecastURL:   cfg.ForecastURL,
		WarningURL:    cfg.WarningURL,
		MinutelyURL:   cfg.MinutelyURL,
		IndicesURL:    cfg.IndicesURL,
		RealtimeURL:   cfg.RealtimeURL,
		LocationID:    cfg.LocationID,
		LocationCoord: cfg.LocationCoord,
		LifeTypes:     cfg.LifeTypes,
	})
	source := weather.NewDecoratedSource(qweather, resultCache, policy, cfg.LocationID, cfg.LocationCoord)

	var notifier weather.Notifier = notify.NewWeCom(httpClient, cfg.WebhookURL, policy)
	if opts.dryRun {
		notifier = printNotifier{}
	}

	svcOpts := []weather.Option{weather.WithCity(cfg.CityName)}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer.Close)
		svcOpts = append(svcOpts, weather.WithPublisher(producer))
	}

	a.service = weather.NewService(source, notifier, svcOpts...)
	return a, nil
}

// serve keeps the process alive for the scheduler and/or the HTTP API
// until a termination signal arrives.
func (a *app) serve(ctx context.Context, opts *options) error {
	if opts.every > 0 || opts.cron != "" {
		sched := scheduler.New(a.service, scheduler.Job{
			Flags: opts.flags,
			Every: opts.every,
			Cron:  opts.cron,
		})
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	var server *fiber.App
	if opts.listen != "" {
		server = httpapi.NewApp(a.service)
		go func() {
			log.Printf("INFO: HTTP API listening on %s", opts.listen)
			if err := server.Listen(opts.listen); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Println("INFO: shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}
	return nil
}

// printNotifier writes messages to stdout instead of posting them.
type printNotifier struct{}

func (printNotifier) Send(_ context.Context, message string) bool {
	fmt.Fprintln(os.Stdout, message)
	fmt.Fprintln(os.Stdout)
	return true
}
