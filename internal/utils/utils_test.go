package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancelled wait must return immediately")
	}
	if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation for zero delay, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial time.Duration
		attempt int
		expect  time.Duration
	}{
		{name: "first attempt", initial: time.Second, attempt: 0, expect: time.Second},
		{name: "doubles", initial: time.Second, attempt: 3, expect: 8 * time.Second},
		{name: "capped", initial: time.Second, attempt: 20, expect: maxBackoff},
		{name: "no initial delay", initial: 0, attempt: 5, expect: 0},
		{name: "negative attempt", initial: time.Second, attempt: -1, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Backoff(tt.initial, tt.attempt); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "c1,c2", limit: 0, expect: ""},
		{name: "shorter than limit", input: "c1", limit: 10, expect: "c1"},
		{name: "truncated", input: "critique", limit: 4, expect: "crit..."},
		{name: "trimmed", input: "  c1  ", limit: 5, expect: "c1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestPreviewIDs(t *testing.T) {
	t.Parallel()

	if got := PreviewIDs([]string{"c1", "c2", "c3"}, 5); got != "c1,c2..." {
		t.Fatalf("unexpected preview: %q", got)
	}
	if got := PreviewIDs(nil, 5); got != "" {
		t.Fatalf("unexpected preview for no ids: %q", got)
	}
}
