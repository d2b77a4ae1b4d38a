// ABOUTME: Streaming linear resampler for converting audio sample rates
// ABOUTME: Carries interpolation state across blocks so block boundaries are seamless
package resample

// Resampler performs linear interpolation to convert between sample rates.
// Position and the last input frame carry over between calls, so feeding a
// signal in arbitrary block sizes produces the same output as one call.
type Resampler struct {
	channels int
	ratio    float64 // input frames consumed per output frame
	position float64 // fractional read position; 0 == lastFrame
	last     []float32
	primed   bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	r := &Resampler{
		channels: channels,
		last:     make([]float32, channels),
	}
	r.SetRates(inputRate, outputRate)
	return r
}

// NewWithRatio creates a resampler that consumes ratio input frames per output frame
func NewWithRatio(ratio float64, channels int) *Resampler {
	r := &Resampler{
		channels: channels,
		last:     make([]float32, channels),
	}
	r.SetRatio(ratio)
	return r
}

// SetRates changes the conversion rates, keeping the stream position
func (r *Resampler) SetRates(inputRate, outputRate int) {
	if inputRate <= 0 || outputRate <= 0 {
		r.ratio = 1
		return
	}
	r.ratio = float64(inputRate) / float64(outputRate)
}

// SetRatio sets input frames consumed per output frame directly
func (r *Resampler) SetRatio(ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	r.ratio = ratio
}

// Ratio returns input frames consumed per output frame
func (r *Resampler) Ratio() float64 {
	return r.ratio
}

// Resample appends the interpolated output for input to dst and returns it.
// input: interleaved samples at the input rate
func (r *Resampler) Resample(dst, input []float32) []float32 {
	ch := r.channels
	frames := len(input) / ch
	if frames == 0 {
		return dst
	}

	if !r.primed {
		copy(r.last, input[:ch])
		input = input[ch:]
		frames--
		r.primed = true
	}

	// Virtual frame 0 is r.last, frames 1..n are input.
	at := func(idx, c int) float32 {
		if idx == 0 {
			return r.last[c]
		}
		return input[(idx-1)*ch+c]
	}

	for {
		idx := int(r.position)
		if idx+1 > frames {
			break
		}

		frac := float32(r.position - float64(idx))
		for c := 0; c < ch; c++ {
			s1 := at(idx, c)
			s2 := at(idx+1, c)
			dst = append(dst, s1+(s2-s1)*frac)
		}

		r.position += r.ratio
	}

	if frames > 0 {
		copy(r.last, input[(frames-1)*ch:frames*ch])
		r.position -= float64(frames)
	}

	return dst
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0
	r.primed = false
	for i := range r.last {
		r.last[i] = 0
	}
}

// OutputSamplesNeeded returns an upper bound on the samples one Resample
// call produces from inputSamples samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames)/r.ratio) + 1
	return outputFrames * r.channels
}
