package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-notify/internal/retry"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func webhook(t *testing.T, handler func(w http.ResponseWriter, msg textMessage)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var msg textMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("decode body: %v", err)
		}
		handler(w, msg)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

var testPolicy = retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}

func TestSendAccepted(t *testing.T) {
	var got textMessage
	srv, calls := webhook(t, func(w http.ResponseWriter, msg textMessage) {
		got = msg
		_, _ = io.WriteString(w, `{"errcode":0,"errmsg":"ok"}`)
	})

	n := NewWeCom(srv.Client(), srv.URL, testPolicy)
	if !n.Send(context.Background(), "贵阳市天气信息\n\n实时天气:\n") {
		t.Fatalf("expected message to be accepted")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one post, got %d", calls.Load())
	}
	if got.MsgType != "text" || got.Text.Content != "贵阳市天气信息\n\n实时天气:\n" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
}

func TestSendRejectedIsNotRetried(t *testing.T) {
	srv, calls := webhook(t, func(w http.ResponseWriter, msg textMessage) {
		_, _ = io.WriteString(w, `{"errcode":93000,"errmsg":"invalid webhook url"}`)
	})

	n := NewWeCom(srv.Client(), srv.URL, testPolicy)
	if n.Send(context.Background(), "hello") {
		t.Fatalf("rejected message must report false")
	}
	if calls.Load() != 1 {
		t.Fatalf("rejection must not be retried, got %d posts", calls.Load())
	}
}

func TestSendRetriesTransportFaults(t *testing.T) {
	srv, calls := webhook(t, func(w http.ResponseWriter, msg textMessage) {
		w.WriteHeader(http.StatusBadGateway)
	})

	n := NewWeCom(srv.Client(), srv.URL, testPolicy)
	if n.Send(context.Background(), "hello") {
		t.Fatalf("unreachable webhook must report false")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestSendRecoversAfterFault(t *testing.T) {
	var first atomic.Bool
	first.Store(true)
	srv, calls := webhook(t, func(w http.ResponseWriter, msg textMessage) {
		if first.Swap(false) {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"errcode":0,"errmsg":"ok"}`)
	})

	n := NewWeCom(srv.Client(), srv.URL, testPolicy)
	if !n.Send(context.Background(), "hello") {
		t.Fatalf("expected delivery on the second attempt")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 posts, got %d", calls.Load())
	}
}

func TestSendWithoutErrcodeIsRejected(t *testing.T) {
	srv, calls := webhook(t, func(w http.ResponseWriter, msg textMessage) {
		_, _ = io.WriteString(w, `{"errmsg":"invalid webhook url"}`)
	})

	n := NewWeCom(srv.Client(), srv.URL, testPolicy)
	if n.Send(context.Background(), "hello") {
		t.Fatalf("a response without errcode must report false")
	}
	if calls.Load() != 1 {
		t.Fatalf("a response without errcode must not be retried, got %d posts", calls.Load())
	}
}
