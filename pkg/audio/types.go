// ABOUTME: Audio type definitions
// ABOUTME: Defines the engine PCM format and 16-bit <-> float32 sample conversion
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// Engine PCM format: every decode source is converted to this before
	// reaching the processing pipeline.
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultBitDepth   = 16
)

// Format describes a linear PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns the 16-bit stereo engine format at the given rate
func DefaultFormat(sampleRate int) Format {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return Format{
		SampleRate: sampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// BytesPerFrame returns the size of one interleaved frame in bytes
func (f Format) BytesPerFrame() int {
	return f.Channels * (f.BitDepth / 8)
}

// BytesPerSecond returns the byte rate of the stream
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.BytesPerFrame()
}

// FramesToDuration converts a frame count to a duration
func (f Format) FramesToDuration(frames int64) time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	return time.Duration(frames * int64(time.Second) / int64(f.SampleRate))
}

// DurationToFrames converts a duration to a frame count (rounded down)
func (f Format) DurationToFrames(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d) * int64(f.SampleRate) / int64(time.Second)
}

// BytesToDuration converts a byte count to a duration
func (f Format) BytesToDuration(n int) time.Duration {
	bpf := f.BytesPerFrame()
	if bpf == 0 {
		return 0
	}
	return f.FramesToDuration(int64(n / bpf))
}

// DurationToBytes converts a duration to a frame-aligned byte count
func (f Format) DurationToBytes(d time.Duration) int {
	return int(f.DurationToFrames(d)) * f.BytesPerFrame()
}

// Int16ToFloat32 converts a 16-bit sample to float32 in [-1, 1)
func Int16ToFloat32(sample int16) float32 {
	return float32(sample) / 32768.0
}

// Float32ToInt16 converts a float32 sample to 16-bit with clipping
func Float32ToInt16(sample float32) int16 {
	if sample >= 1 {
		return 32767
	}
	if sample <= -1 {
		return -32768
	}
	return int16(sample * 32768.0)
}

// DecodePCM16 converts little-endian 16-bit PCM bytes to float32 samples.
// Returns the number of samples written.
func DecodePCM16(dst []float32, src []byte) int {
	n := len(src) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = Int16ToFloat32(int16(binary.LittleEndian.Uint16(src[i*2:])))
	}
	return n
}

// EncodePCM16 converts float32 samples to little-endian 16-bit PCM bytes.
// Returns the number of bytes written.
func EncodePCM16(dst []byte, src []float32) int {
	n := len(src)
	if n > len(dst)/2 {
		n = len(dst) / 2
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(Float32ToInt16(src[i])))
	}
	return n * 2
}
