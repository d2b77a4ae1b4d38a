// ABOUTME: Tests for the cue-wait count-in
// ABOUTME: Verifies tick counts, pulse order and interruption by stop
package practicesharp

import (
	"testing"
	"time"
)

func TestCueWaitPulses(t *testing.T) {
	const unit = 4 * time.Millisecond

	tests := []struct {
		name  string
		cue   time.Duration
		ticks int
	}{
		{"disabled", 0, 0},
		{"half second", 500 * time.Millisecond, 4},
		{"one second", time.Second, 4},
		{"three seconds", 3 * time.Second, 6},
		{"five and a half seconds", 5500 * time.Millisecond, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			stop := make(chan struct{})
			if !cueWait(tt.cue, unit, stop, func(tick int) { got = append(got, tick) }) {
				t.Fatal("expected cue wait to complete")
			}
			if len(got) != tt.ticks {
				t.Fatalf("expected %d pulses, got %d", tt.ticks, len(got))
			}
			for i, tick := range got {
				if tick != i+1 {
					t.Errorf("expected pulse %d to be %d, got %d", i, i+1, tick)
				}
			}
		})
	}
}

func TestCueWaitStop(t *testing.T) {
	stop := make(chan struct{})
	pulses := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(stop)
	}()

	start := time.Now()
	if cueWait(10*time.Second, time.Second, stop, func(int) { pulses++ }) {
		t.Fatal("expected cue wait to be interrupted")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected prompt return after stop, took %v", elapsed)
	}
	if pulses != 0 {
		t.Errorf("expected no pulses, got %d", pulses)
	}
}
