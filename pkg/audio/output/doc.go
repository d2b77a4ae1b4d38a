// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Sink interface with oto, malgo and null implementations
// Package output provides pull-model audio sinks.
//
// A sink is initialized with an io.Reader and pulls 16-bit PCM from it on its
// own goroutine while playing. Backends: oto (default), malgo (miniaudio) and
// null, a clocked consumer for headless runs and tests.
//
// Example:
//
//	sink, err := output.New("oto", audio.DefaultFormat(44100))
//	err = sink.Init(queue)
//	err = sink.Play()
package output
