package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := NewRedisStore(ctx, "redis://localhost:6379/0", time.Minute)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer s.Close()

	key := "test:" + t.Name()
	if _, err := s.Load(ctx, key+":missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	stored := Entry{Key: key, Value: []byte(`{"temp":"15"}`), StoredAt: time.Now().UTC().Truncate(time.Second)}
	if err := s.Save(ctx, stored); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got.Value) != string(stored.Value) || !got.StoredAt.Equal(stored.StoredAt) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, stored)
	}
}
