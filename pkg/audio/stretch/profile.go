// ABOUTME: Time-stretch quality profiles
// ABOUTME: Named presets for sequence, seek window, overlap and anti-alias settings
package stretch

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profile tunes the stretch engine. Zero durations select automatic values
// derived from the tempo.
type Profile struct {
	Name           string
	UseAAFilter    bool
	AAFilterLength int
	Sequence       time.Duration
	SeekWindow     time.Duration
	Overlap        time.Duration
}

var (
	// DefaultProfile uses automatic sequence and seek window sizes
	DefaultProfile = Profile{
		Name:           "default",
		UseAAFilter:    true,
		AAFilterLength: 64,
	}

	// PracticeProfile favors smooth sustained instruments at slow tempos
	PracticeProfile = Profile{
		Name:           "practice",
		UseAAFilter:    true,
		AAFilterLength: 128,
		Sequence:       82 * time.Millisecond,
		SeekWindow:     28 * time.Millisecond,
		Overlap:        12 * time.Millisecond,
	}

	// SpeechProfile uses short sequences for spoken word
	SpeechProfile = Profile{
		Name:           "speech",
		UseAAFilter:    true,
		AAFilterLength: 64,
		Sequence:       40 * time.Millisecond,
		SeekWindow:     15 * time.Millisecond,
		Overlap:        8 * time.Millisecond,
	}
)

var profiles = map[string]Profile{
	DefaultProfile.Name:  DefaultProfile,
	PracticeProfile.Name: PracticeProfile,
	SpeechProfile.Name:   SpeechProfile,
}

// ProfileByName looks up a preset
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown stretch profile %q (available: %s)",
			name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames lists the preset names in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Automatic parameter ranges, interpolated linearly over tempo 0.5..2.0
const (
	autoTempoLow  = 0.5
	autoTempoHigh = 2.0

	autoSequenceLow  = 125.0 // ms at autoTempoLow
	autoSequenceHigh = 50.0  // ms at autoTempoHigh

	autoSeekLow  = 25.0
	autoSeekHigh = 15.0

	defaultOverlapMs = 8.0
)

func autoValue(tempo, atLow, atHigh float64) float64 {
	k := (atHigh - atLow) / (autoTempoHigh - autoTempoLow)
	v := atLow + k*(tempo-autoTempoLow)
	lo, hi := atHigh, atLow
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// engineParams are the tempo stage sizes in frames
type engineParams struct {
	sequence int
	seek     int
	overlap  int
}

func resolveParams(p Profile, tempo float64, sampleRate int) engineParams {
	ms := func(v float64) int {
		return int(v * float64(sampleRate) / 1000)
	}

	seqMs := autoValue(tempo, autoSequenceLow, autoSequenceHigh)
	if p.Sequence > 0 {
		seqMs = float64(p.Sequence) / float64(time.Millisecond)
	}
	seekMs := autoValue(tempo, autoSeekLow, autoSeekHigh)
	if p.SeekWindow > 0 {
		seekMs = float64(p.SeekWindow) / float64(time.Millisecond)
	}
	ovlMs := defaultOverlapMs
	if p.Overlap > 0 {
		ovlMs = float64(p.Overlap) / float64(time.Millisecond)
	}

	ep := engineParams{
		sequence: ms(seqMs),
		seek:     ms(seekMs),
		overlap:  ms(ovlMs),
	}
	if ep.overlap < 1 {
		ep.overlap = 1
	}
	if ep.sequence < 2*ep.overlap+1 {
		ep.sequence = 2*ep.overlap + 1
	}
	if ep.seek < 1 {
		ep.seek = 1
	}
	return ep
}
