// ABOUTME: Windowed-sinc low-pass FIR used as the transposer anti-alias filter
// ABOUTME: Streams interleaved blocks keeping history across calls
package stretch

import "math"

type firFilter struct {
	channels int
	taps     []float64
	history  []float32
	scratch  []float32
}

// newFIR builds a Hamming-windowed sinc low-pass with cutoff in cycles per
// sample (0 < cutoff <= 0.5)
func newFIR(length, channels int, cutoff float64) *firFilter {
	if length < 8 {
		length = 8
	}
	length &^= 7

	taps := make([]float64, length)
	mid := float64(length-1) / 2
	var sum float64
	for i := range taps {
		x := float64(i) - mid
		var sinc float64
		if x == 0 {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		window := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(length-1))
		taps[i] = sinc * window
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}

	return &firFilter{
		channels: channels,
		taps:     taps,
		history:  make([]float32, (length-1)*channels),
	}
}

func (f *firFilter) process(dst, in []float32) []float32 {
	ch := f.channels
	f.scratch = append(append(f.scratch[:0], f.history...), in...)
	frames := len(in) / ch

	for n := 0; n < frames; n++ {
		for c := 0; c < ch; c++ {
			var acc float64
			for k, h := range f.taps {
				acc += h * float64(f.scratch[(n+k)*ch+c])
			}
			dst = append(dst, float32(acc))
		}
	}

	copy(f.history, f.scratch[len(f.scratch)-len(f.history):])
	return dst
}

func (f *firFilter) reset() {
	for i := range f.history {
		f.history[i] = 0
	}
}
