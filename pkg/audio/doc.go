// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the engine PCM Format and sample conversion functions
// Package audio provides fundamental audio types and utilities shared by the
// decode, dsp, stretch and output packages.
//
// Every decode source is normalized to the engine format (16-bit signed
// little-endian, stereo, DefaultSampleRate unless configured otherwise) so the
// processing pipeline only ever deals with one layout:
//
//	format := audio.DefaultFormat(44100)
//	floats := make([]float32, len(pcm)/2)
//	audio.DecodePCM16(floats, pcm)
//	// ... process ...
//	audio.EncodePCM16(pcm, floats)
package audio
