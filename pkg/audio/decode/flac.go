// ABOUTME: FLAC backend
// ABOUTME: Decodes FLAC files with mewkiz/flac, seeking through the stream's seek support
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

type flacReader struct {
	stream   *flac.Stream
	channels int
	scale    float32

	block *frame.Frame
	index int
}

func openFLAC(path string) (FrameReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.NewSeek(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to decode FLAC: %v", ErrInvalidFile, err)
	}

	info := stream.Info
	return &flacReader{
		stream:   stream,
		channels: int(info.NChannels),
		scale:    float32(int64(1) << (info.BitsPerSample - 1)),
	}, nil
}

func (r *flacReader) SampleRate() int { return int(r.stream.Info.SampleRate) }
func (r *flacReader) Channels() int   { return r.channels }

func (r *flacReader) nextBlock() error {
	block, err := r.stream.ParseNext()
	if err != nil {
		r.block = nil
		return err
	}
	r.block = block
	r.index = 0
	return nil
}

func (r *flacReader) ReadFrames(dst []float32) (int, error) {
	want := len(dst) / r.channels
	n := 0

	for n < want {
		if r.block == nil || r.index >= int(r.block.BlockSize) {
			if err := r.nextBlock(); err != nil {
				if err == io.EOF {
					if n > 0 {
						return n, nil
					}
					return 0, io.EOF
				}
				return n, fmt.Errorf("flac decode error: %w", err)
			}
		}

		for ; r.index < int(r.block.BlockSize) && n < want; r.index++ {
			for ch := 0; ch < r.channels; ch++ {
				dst[n*r.channels+ch] = float32(r.block.Subframes[ch].Samples[r.index]) / r.scale
			}
			n++
		}
	}
	return n, nil
}

func (r *flacReader) SeekFrame(target int64) error {
	actual, err := r.stream.Seek(uint64(target))
	if err != nil {
		return fmt.Errorf("flac seek: %w", err)
	}
	r.block = nil

	// Seek lands on the frame containing target; skip up to it.
	skip := target - int64(actual)
	for skip > 0 {
		if err := r.nextBlock(); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("flac seek: %w", err)
		}
		size := int64(r.block.BlockSize)
		if skip < size {
			r.index = int(skip)
			return nil
		}
		skip -= size
		r.index = int(size)
	}
	return nil
}

func (r *flacReader) TotalFrames() int64 {
	return int64(r.stream.Info.NSamples)
}

func (r *flacReader) Close() error {
	return r.stream.Close()
}
