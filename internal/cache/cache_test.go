package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type reading struct {
	Temp string `json:"temp"`
}

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(expiration time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(NewMemoryStore(), expiration)
	c.now = clock.now
	return c, clock
}

func TestWrapCallsOnceWithinExpiration(t *testing.T) {
	c, clock := newTestCache(300 * time.Second)

	calls := 0
	fn := Wrap(c, Key("get_realtime_weather"), func(ctx context.Context) (*reading, error) {
		calls++
		return &reading{Temp: "15"}, nil
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := fn(ctx)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got == nil || got.Temp != "15" {
			t.Fatalf("call %d: unexpected result %+v", i, got)
		}
		clock.t = clock.t.Add(100 * time.Second)
	}
	if calls != 1 {
		t.Fatalf("expected 1 underlying call within expiration, got %d", calls)
	}

	// 200s elapsed since the entry was stored; move past the window.
	clock.t = clock.t.Add(101 * time.Second)
	if _, err := fn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a fresh call after expiration, got %d calls", calls)
	}
}

func TestWrapExpiresExactlyAtBoundary(t *testing.T) {
	c, clock := newTestCache(10 * time.Second)

	calls := 0
	fn := Wrap(c, "k", func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	})

	ctx := context.Background()
	_, _ = fn(ctx)
	clock.t = clock.t.Add(10 * time.Second)
	got, _ := fn(ctx)
	if got != 2 || calls != 2 {
		t.Fatalf("entry must be stale once age equals expiration; got=%d calls=%d", got, calls)
	}
}

func TestWrapReplaysNilResult(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	calls := 0
	fn := Wrap(c, "get_weather_warning", func(ctx context.Context) (*reading, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return &reading{Temp: "20"}, nil
	})

	ctx := context.Background()
	first, _ := fn(ctx)
	second, _ := fn(ctx)
	if first != nil || second != nil {
		t.Fatalf("expected the stored nil result to be replayed, got %+v then %+v", first, second)
	}
	if calls != 1 {
		t.Fatalf("expected 1 underlying call, got %d", calls)
	}
}

func TestWrapDoesNotStoreErrors(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, time.Minute)
	boom := errors.New("connection reset")

	calls := 0
	fn := Wrap(c, "get_minutely_rain", func(ctx context.Context) (*reading, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &reading{Temp: "9"}, nil
	})

	ctx := context.Background()
	if _, err := fn(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected error to pass through, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("a failed call must leave no entry, store has %d", store.Len())
	}
	got, err := fn(ctx)
	if err != nil || got == nil || got.Temp != "9" {
		t.Fatalf("expected recomputation after error, got %+v, %v", got, err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected the successful result stored, store has %d", store.Len())
	}
	if calls != 2 {
		t.Fatalf("expected 2 underlying calls, got %d", calls)
	}
}

func TestWrapSeparatesKeys(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	calls := 0
	mk := func(loc string) Func[string] {
		return Wrap(c, Key("get_weather_forecast", loc), func(ctx context.Context) (string, error) {
			calls++
			return loc, nil
		})
	}

	ctx := context.Background()
	a, _ := mk("101260101")(ctx)
	b, _ := mk("101010100")(ctx)
	if a == b || calls != 2 {
		t.Fatalf("distinct keys must not share entries: a=%s b=%s calls=%d", a, b, calls)
	}
}

func TestExpiration(t *testing.T) {
	c := New(NewMemoryStore(), 300*time.Second)
	if c.Expiration() != 300*time.Second {
		t.Fatalf("Expiration = %v", c.Expiration())
	}
}

func TestKey(t *testing.T) {
	got := Key("get_weather_forecast", "101260101", 3)
	if got != "get_weather_forecast_101260101_3" {
		t.Fatalf("unexpected key %q", got)
	}
	if Key("get_life_indices") != "get_life_indices" {
		t.Fatalf("key without args must be the bare name")
	}
}
