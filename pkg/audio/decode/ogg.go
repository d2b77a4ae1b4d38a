// ABOUTME: OGG Vorbis backend
// ABOUTME: Decodes Vorbis files with jfreymuth/oggvorbis
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

type oggReader struct {
	file   *os.File
	reader *oggvorbis.Reader
}

func openOgg(path string) (FrameReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OGG file: %w", err)
	}

	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to decode OGG: %v", ErrInvalidFile, err)
	}

	return &oggReader{file: f, reader: reader}, nil
}

func (r *oggReader) SampleRate() int { return r.reader.SampleRate() }
func (r *oggReader) Channels() int   { return r.reader.Channels() }

func (r *oggReader) ReadFrames(dst []float32) (int, error) {
	ch := r.reader.Channels()
	want := len(dst) / ch * ch

	// Read returns a value count, not frames
	n, err := r.reader.Read(dst[:want])
	frames := n / ch
	if err == io.EOF && frames > 0 {
		return frames, nil
	}
	if err != nil && err != io.EOF {
		return frames, fmt.Errorf("ogg decode error: %w", err)
	}
	return frames, err
}

func (r *oggReader) SeekFrame(frame int64) error {
	if err := r.reader.SetPosition(frame); err != nil {
		return fmt.Errorf("ogg seek: %w", err)
	}
	return nil
}

func (r *oggReader) TotalFrames() int64 {
	return r.reader.Length()
}

func (r *oggReader) Close() error {
	return r.file.Close()
}
