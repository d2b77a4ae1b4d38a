// ABOUTME: Audio file decoding package
// ABOUTME: Provides the Source interface, an extension registry and per-format backends
// Package decode turns audio files into a seekable stream of engine PCM.
//
// Supports: MP3, WAV, AIFF, OGG Vorbis, FLAC and WMA (through ffmpeg).
//
// Every Source delivers 16-bit little-endian stereo at the requested engine
// rate regardless of the file's native format; mono is up-mixed, extra
// channels are dropped and the rate is converted with the streaming
// resampler.
//
// Example:
//
//	src, err := decode.Open("song.mp3", 44100)
//	if errors.Is(err, decode.ErrUnsupportedFormat) { ... }
//	defer src.Close()
//	src.Seek(30 * time.Second)
//	n, err := src.Read(buf)
package decode
