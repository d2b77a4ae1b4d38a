// ABOUTME: Time-stretch and pitch-shift engine
// ABOUTME: WSOLA tempo stage followed by a rate transposer with optional anti-alias FIR
// Package stretch changes playback speed and pitch independently.
//
// A Stretcher runs two stages. The tempo stage is a WSOLA (waveform
// similarity overlap-add) engine running at tempo/pitchRatio; the transposer
// resamples its output by pitchRatio = 2^(semitones/12), optionally through a
// windowed-sinc anti-alias filter. Net output length is input/tempo.
//
//	s := stretch.New(44100, 2)
//	s.SetTempo(0.75)
//	s.SetPitchSemitones(-2)
//	s.PutSamples(block)
//	n := s.ReceiveSamples(out) // frames; may be zero
//
// Output lags input: ReceiveSamples may return fewer frames than requested.
// Call Flush at the end of a region and Clear on seek.
package stretch
