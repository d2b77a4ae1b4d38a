// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between different sample rates
// Package resample provides streaming audio sample rate conversion.
//
// Uses linear interpolation on interleaved float32 samples. State carries
// over between calls, so a stream may be fed in blocks of any size. The same
// resampler also serves as the pitch transposer of the stretch package.
//
// Example:
//
//	r := resample.New(48000, 44100, 2)
//	out = r.Resample(out[:0], block)
package resample
