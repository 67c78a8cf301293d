package resilience

import (
	"context"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualClock_Advance(t *testing.T) {
	c := NewManualClock(epoch)

	c.Advance(1500 * time.Millisecond)

	if got := c.Now(); !got.Equal(epoch.Add(1500 * time.Millisecond)) {
		t.Errorf("Now() = %v, want %v", got, epoch.Add(1500*time.Millisecond))
	}
}

func TestManualClock_SleepRecordsAndAdvances(t *testing.T) {
	c := NewManualClock(epoch)

	_ = c.Sleep(context.Background(), time.Second)
	_ = c.Sleep(context.Background(), 2*time.Second)

	sleeps := c.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != 2*time.Second {
		t.Errorf("Sleeps() = %v, want [1s 2s]", sleeps)
	}
	if got := c.Now(); !got.Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("Now() = %v, want epoch+3s", got)
	}
}

func TestManualClock_SleepCancelled(t *testing.T) {
	c := NewManualClock(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Sleep(ctx, time.Second); err != context.Canceled {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if len(c.Sleeps()) != 0 {
		t.Errorf("Sleeps() = %v, want none", c.Sleeps())
	}
}

func TestSystemClock_Sleep(t *testing.T) {
	c := SystemClock()

	start := time.Now()
	if err := c.Sleep(context.Background(), 5*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("Sleep() returned after %v, want >= 5ms", elapsed)
	}

	if err := c.Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) error = %v", err)
	}
}

func TestSystemClock_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := SystemClock().Sleep(ctx, time.Minute); err != context.Canceled {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
}
