package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestSend(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type=%s", ct)
		}
		e := Event{}
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			t.Errorf("decode: %v", err)
		}
		received <- e
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewService(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	want := Event{
		Reference:          "c6gq5q1l6hc3d2jvs1og",
		SenderAccountID:    1,
		RecipientAccountID: 2,
		Amount:             "50.01",
		Currency:           "GBP",
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.send(context.Background(), want); err != nil {
		t.Fatal(err)
	}

	got := <-received
	if got.Reference != want.Reference || got.Amount != want.Amount || got.Currency != want.Currency {
		t.Fatalf("got %+v", got)
	}
}

func TestSendRejectedByTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s, err := NewService(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.send(context.Background(), Event{Reference: "x"}); err == nil {
		t.Fatal("want error for 4xx response")
	}
}

// After five consecutive failures the breaker opens and stops hitting the
// target at all.
func TestBreakerOpens(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewService(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if err := s.send(context.Background(), Event{}); err == nil {
			t.Fatal("want error")
		}
	}

	err = s.send(context.Background(), Event{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("want ErrOpenState, got %v", err)
	}
	if n := atomic.LoadInt64(&hits); n != 5 {
		t.Fatalf("target hit %d times after breaker opened, want 5", n)
	}
}

func TestDisabledService(t *testing.T) {
	s, err := NewService("")
	if err != nil {
		t.Fatal(err)
	}

	// all no-ops, nothing blocks or panics
	s.Start(4)
	s.Enqueue(Event{Reference: "x"})
	s.Stop()

	var nilSvc *Service
	nilSvc.Enqueue(Event{})
	nilSvc.Stop()
}
