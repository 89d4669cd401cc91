package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Delivery is the record of one message handed to the notifier.
type Delivery struct {
	RunID     string    `json:"runId"`
	Mode      Mode      `json:"mode"`
	Message   string    `json:"message"`
	Delivered bool      `json:"delivered"`
	SentAt    time.Time `json:"sentAt"`
}

// Service drives one run: pick the fetchers, format, notify.
type Service struct {
	source    Source
	notifier  Notifier
	publisher Publisher
	city      string
}

// Option configures a Service.
type Option func(*Service)

// WithCity sets the display name used in the report header.
func WithCity(city string) Option {
	return func(s *Service) { s.city = city }
}

// WithPublisher records every delivery through p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService creates a new Service.
func NewService(source Source, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		source:   source,
		notifier: notifier,
		city:     DefaultCity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type runIDKey struct{}

// WithRunID tags ctx with a fresh run id used in logs and delivery records.
func WithRunID(ctx context.Context) context.Context {
	return context.WithValue(ctx, runIDKey{}, uuid.NewString())
}

// RunID returns the run id attached to ctx, or "" if none.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Execute performs one invocation for the given flags. Any fault, including
// a panic, is converted into a system alert, sent best-effort and logged.
// The returned error is the fault that was handled; it is informational
// and callers should not treat it as fatal.
func (s *Service) Execute(ctx context.Context, f Flags) error {
	if RunID(ctx) == "" {
		ctx = WithRunID(ctx)
	}

	err := guard(func() error {
		if f.CheckRain {
			_, err := s.CheckRain(ctx)
			return err
		}
		_, _, err := s.Run(ctx, Resolve(f))
		return err
	})
	if err == nil {
		return nil
	}

	s.alert(ctx, err)
	return err
}

// Run fetches the selected snapshots, formats them and sends the message.
func (s *Service) Run(ctx context.Context, sel Selection) (string, bool, error) {
	msg, err := s.Report(ctx, sel)
	if err != nil {
		return "", false, err
	}
	return msg, s.deliver(ctx, sel.Mode, msg), nil
}

// Report fetches the selected snapshots and formats them without sending.
func (s *Service) Report(ctx context.Context, sel Selection) (string, error) {
	report, err := s.collect(ctx, sel)
	if err != nil {
		return "", err
	}
	return FormatMessage(s.city, report, sel.Mode), nil
}

// CheckRain sends one rain notification when any upcoming interval has
// precipitation, and nothing otherwise. It reports whether a message was sent.
func (s *Service) CheckRain(ctx context.Context) (bool, error) {
	rain, err := s.source.MinutelyRain(ctx)
	if err != nil {
		return false, err
	}
	if rain == nil {
		log.Printf("ERROR: rain data unavailable, skipping rain check")
		return false, nil
	}

	outlook, err := SummarizeRain(rain)
	if err != nil {
		return false, err
	}
	if !outlook.HasRain() {
		log.Printf("INFO: no rain expected in %d intervals", outlook.Intervals)
		return false, nil
	}

	msg := FormatMessage(s.city, Report{Rain: rain}, ModeRain)
	s.deliver(ctx, ModeRain, msg)
	log.Printf("INFO: rain expected from %s (%d/%d intervals, %.1fmm), notification sent",
		outlook.FirstWet, outlook.Wet, outlook.Intervals, outlook.TotalMM)
	return true, nil
}

func (s *Service) collect(ctx context.Context, sel Selection) (Report, error) {
	var (
		r   Report
		err error
	)

	log.Printf("DEBUG: run %s collecting mode=%q", RunID(ctx), sel.Mode)

	for _, k := range Kinds {
		if !sel.Wants(k) {
			continue
		}
		switch k {
		case KindForecast:
			r.Forecast, err = s.source.Forecast(ctx)
		case KindWarning:
			r.Warnings, err = s.source.Warnings(ctx)
		case KindRain:
			r.Rain, err = s.source.MinutelyRain(ctx)
		case KindRealtime:
			r.Realtime, err = s.source.Realtime(ctx)
		case KindLife:
			r.Life, err = s.source.LifeIndices(ctx)
		}
		if err != nil {
			return Report{}, fmt.Errorf("fetch %s: %w", k, err)
		}
	}
	return r, nil
}

func (s *Service) deliver(ctx context.Context, mode Mode, msg string) bool {
	ok := s.notifier.Send(ctx, msg)

	if s.publisher != nil {
		d := Delivery{
			RunID:     RunID(ctx),
			Mode:      mode,
			Message:   msg,
			Delivered: ok,
			SentAt:    time.Now().UTC(),
		}
		if err := s.publisher.PublishDelivery(ctx, d); err != nil {
			log.Printf("WARN: publish delivery for run %s: %v", d.RunID, err)
		}
	}
	return ok
}

func (s *Service) alert(ctx context.Context, fault error) {
	// The alert must go out even if the run was cancelled.
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	s.notifier.Send(alertCtx, FormatError(ErrorKindSystem, fault.Error()))
	log.Printf("ERROR: run %s failed: %v", RunID(ctx), fault)
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
