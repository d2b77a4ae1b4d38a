// ABOUTME: Count-in wait before each pass over the practice region
// ABOUTME: Whole-unit ticks followed by four quarter-unit ticks, each pulsing the caller
package practicesharp

import "time"

// cueWait counts in a cue of d, pulsing once per tick: floor(d)-1 ticks of
// one unit per whole second, then four ticks of a quarter unit. With a unit
// of one second the wait lasts about d. Returns false if stop closed first.
func cueWait(d, unit time.Duration, stop <-chan struct{}, pulse func(tick int)) bool {
	if d <= 0 || unit <= 0 {
		return true
	}

	tick := 0
	wait := func(step time.Duration) bool {
		timer := time.NewTimer(step)
		defer timer.Stop()
		select {
		case <-stop:
			return false
		case <-timer.C:
		}
		tick++
		if pulse != nil {
			pulse(tick)
		}
		return true
	}

	for i := int(d/time.Second) - 1; i > 0; i-- {
		if !wait(unit) {
			return false
		}
	}
	for i := 0; i < 4; i++ {
		if !wait(unit / 4) {
			return false
		}
	}
	return true
}
