// ABOUTME: Practice player library API
// ABOUTME: Package documentation with a usage example
// Package practicesharp plays audio files for instrument practice.
//
// The Player decodes a file, runs it through an effect chain (equalizer,
// vocal suppression, channel routing) and a time stretch engine, and feeds
// the result to an audio output through a bounded buffer queue. Tempo,
// pitch, volume, effects and the loop region can change at any time while
// playing.
//
// Example:
//
//	p := practicesharp.New(practicesharp.Config{
//	    OnPlayTimeChange: func(d time.Duration) { fmt.Println(d) },
//	})
//	err := p.Initialize()
//	err = p.Load("/path/to/song.mp3")
//	p.SetTempo(0.75)
//	p.SetStartMarker(30 * time.Second)
//	p.SetEndMarker(45 * time.Second)
//	p.SetLoop(true)
//	err = p.Play()
//	defer p.Terminate()
package practicesharp
