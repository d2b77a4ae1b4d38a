// ABOUTME: MP3 backend
// ABOUTME: Decodes MP3 files with go-mp3, which always outputs 16-bit stereo
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
	"github.com/pzkpfw38t/practicesharp/pkg/audio"
)

// go-mp3 output is always 16-bit stereo
const mp3BytesPerFrame = 4

type mp3Reader struct {
	file    *os.File
	decoder *mp3.Decoder
	buf     []byte
}

func openMP3(path string) (FrameReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to decode MP3: %v", ErrInvalidFile, err)
	}

	return &mp3Reader{file: f, decoder: decoder}, nil
}

func (r *mp3Reader) SampleRate() int { return r.decoder.SampleRate() }
func (r *mp3Reader) Channels() int   { return 2 }

func (r *mp3Reader) ReadFrames(dst []float32) (int, error) {
	need := len(dst) / 2 * mp3BytesPerFrame
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}
	buf := r.buf[:need]

	n, err := io.ReadFull(r.decoder, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("mp3 decode error: %w", err)
	}

	frames := n / mp3BytesPerFrame
	audio.DecodePCM16(dst, buf[:frames*mp3BytesPerFrame])

	if frames > 0 {
		return frames, nil
	}
	return 0, err
}

func (r *mp3Reader) SeekFrame(frame int64) error {
	if _, err := r.decoder.Seek(frame*mp3BytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("mp3 seek: %w", err)
	}
	return nil
}

func (r *mp3Reader) TotalFrames() int64 {
	return r.decoder.Length() / mp3BytesPerFrame
}

func (r *mp3Reader) Close() error {
	return r.file.Close()
}
