package weather

import (
	"context"
)

// Source abstracts the five weather fetchers. Every method returns a nil
// snapshot when no data is available; an error is reserved for faults the
// caller has to handle (transport failures, cancellation).
type Source interface {
	Forecast(ctx context.Context) (*Forecast, error)
	Warnings(ctx context.Context) (*WarningReport, error)
	MinutelyRain(ctx context.Context) (*MinutelyRain, error)
	LifeIndices(ctx context.Context) (*LifeIndices, error)
	Realtime(ctx context.Context) (*Realtime, error)
}

// Notifier delivers a formatted message and reports whether the receiving
// end accepted it.
type Notifier interface {
	Send(ctx context.Context, message string) bool
}

// Publisher records delivered messages somewhere outside the webhook.
type Publisher interface {
	PublishDelivery(ctx context.Context, d Delivery) error
}
