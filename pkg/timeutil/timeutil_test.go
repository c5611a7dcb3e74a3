package timeutil

import (
	"context"
	"testing"
	"time"
)

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
	}{
		{
			name:      "multiple values returns maximum",
			durations: []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 200 * time.Millisecond},
			want:      500 * time.Millisecond,
		},
		{
			name:      "single value returns that value",
			durations: []time.Duration{300 * time.Millisecond},
			want:      300 * time.Millisecond,
		},
		{
			name:      "empty slice returns zero",
			durations: []time.Duration{},
			want:      0,
		},
		{
			name:      "negative durations handled correctly",
			durations: []time.Duration{-100 * time.Millisecond, 50 * time.Millisecond, -200 * time.Millisecond},
			want:      50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxDuration(tt.durations); got != tt.want {
				t.Errorf("MaxDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSecondsToDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    time.Duration
	}{
		{seconds: 0, want: 0},
		{seconds: -1, want: 0},
		{seconds: 1, want: time.Second},
		{seconds: 0.25, want: 250 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := SecondsToDuration(tt.seconds); got != tt.want {
			t.Errorf("SecondsToDuration(%v) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestManualClock_SleepAdvancesTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	if err := clock.Sleep(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(time.Second)

	if got := clock.Now().Sub(start); got != 4*time.Second {
		t.Errorf("elapsed = %v, want 4s", got)
	}
	sleeps := clock.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != 3*time.Second {
		t.Errorf("sleeps = %v, want [3s]", sleeps)
	}
}

func TestManualClock_SleepCancelled(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := clock.Sleep(ctx, time.Second); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !clock.Now().Equal(time.Unix(0, 0)) {
		t.Error("cancelled sleep must not advance the clock")
	}
}

func TestSystemClock_SleepRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := SystemClock{}.Sleep(ctx, time.Hour)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep did not return promptly after cancellation")
	}
}

func TestSystemClock_ZeroSleep(t *testing.T) {
	if err := (SystemClock{}).Sleep(context.Background(), 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
