// ABOUTME: Per-block audio effects applied before time stretching
// ABOUTME: Provides a 3-band equalizer and the channel routing effect chain
// Package dsp implements the effect chain applied to every decoded block.
//
// The chain runs, per stereo frame and in this order: the 3-band equalizer
// (low shelf 250 Hz, peaking 1 kHz, high shelf 4 kHz), vocal suppression,
// input channel mode and the left/right swap. Samples are processed in place.
//
//	chain := dsp.NewChain(44100, 2)
//	chain.Configure(dsp.Settings{LowGainDB: 6, Mode: dsp.DualMono})
//	chain.Apply(samples, frames)
package dsp
