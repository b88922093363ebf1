package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, Logger: NewDiscardLogger()}

	calls := 0
	err := r.Do(context.Background(), "fetch-page", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, Logger: NewDiscardLogger()}
	sentinel := errors.New("503")

	calls := 0
	err := r.Do(context.Background(), "fetch-detail", func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, "fetch", func(context.Context) error {
			calls++
			return errors.New("timeout")
		})
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not stop after cancellation")
	}
}

func TestRetryBackoffSchedule(t *testing.T) {
	linear := &RetryConfig{BaseDelay: 5 * time.Second}
	exp := &RetryConfig{BaseDelay: 2 * time.Second, Exponential: true}

	tests := []struct {
		cfg     *RetryConfig
		attempt int
		want    time.Duration
	}{
		{linear, 1, 5 * time.Second},
		{linear, 2, 10 * time.Second},
		{exp, 1, 2 * time.Second},
		{exp, 3, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := tt.cfg.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v; want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRandomDurationBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := RandomDuration(2*time.Second, 5*time.Second)
		if d < 2*time.Second || d > 5*time.Second {
			t.Fatalf("RandomDuration out of range: %v", d)
		}
	}
	if d := RandomDuration(3*time.Second, time.Second); d != 3*time.Second {
		t.Errorf("inverted range should return min, got %v", d)
	}
}
