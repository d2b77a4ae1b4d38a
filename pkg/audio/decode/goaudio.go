// ABOUTME: WAV and AIFF backends built on the go-audio decoders
// ABOUTME: Integer PCM normalized by bit depth; seeking reopens the file and skips frames
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmDecoder is the part of the go-audio wav and aiff decoders we use
type pcmDecoder interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type goAudioInfo struct {
	decoder    pcmDecoder
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	offset     int // 8-bit WAV is unsigned
}

// goAudioReader decodes a file through a go-audio decoder. The decoders
// cannot seek within PCM data, so SeekFrame reopens and discards.
type goAudioReader struct {
	path   string
	file   *os.File
	open   func(f *os.File) (goAudioInfo, error)
	info   goAudioInfo
	intBuf *goaudio.IntBuffer
	scale  float32
}

func newGoAudioReader(path string, open func(f *os.File) (goAudioInfo, error)) (*goAudioReader, error) {
	r := &goAudioReader{path: path, open: open}
	if err := r.reopen(); err != nil {
		return nil, err
	}
	r.scale = float32(int64(1) << (r.info.bitDepth - 1))
	return r, nil
}

func (r *goAudioReader) reopen() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", r.path, err)
	}

	info, err := r.open(f)
	if err != nil {
		f.Close()
		return err
	}
	if info.channels <= 0 || info.sampleRate <= 0 || info.bitDepth <= 0 {
		f.Close()
		return fmt.Errorf("%w: bad format %d Hz, %d channels, %d bit",
			ErrInvalidFile, info.sampleRate, info.channels, info.bitDepth)
	}

	r.file = f
	r.info = info
	r.intBuf = nil
	return nil
}

func (r *goAudioReader) SampleRate() int { return r.info.sampleRate }
func (r *goAudioReader) Channels() int   { return r.info.channels }

func (r *goAudioReader) ReadFrames(dst []float32) (int, error) {
	want := len(dst) / r.info.channels * r.info.channels
	if want == 0 {
		return 0, nil
	}

	if r.intBuf == nil || cap(r.intBuf.Data) < want {
		r.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: r.info.decoder.Format(),
		}
	}
	r.intBuf.Data = r.intBuf.Data[:want]

	n, err := r.info.decoder.PCMBuffer(r.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("pcm read: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		dst[i] = float32(r.intBuf.Data[i]-r.info.offset) / r.scale
	}
	return n / r.info.channels, nil
}

func (r *goAudioReader) SeekFrame(frame int64) error {
	if err := r.reopen(); err != nil {
		return err
	}

	scratch := make([]float32, readChunkFrames*r.info.channels)
	for frame > 0 {
		chunk := scratch
		if frame < readChunkFrames {
			chunk = scratch[:frame*int64(r.info.channels)]
		}
		n, err := r.ReadFrames(chunk)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		frame -= int64(n)
	}
	return nil
}

func (r *goAudioReader) TotalFrames() int64 { return r.info.frames }

func (r *goAudioReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func openWAV(path string) (FrameReader, error) {
	return newGoAudioReader(path, func(f *os.File) (goAudioInfo, error) {
		d := wav.NewDecoder(f)
		if !d.IsValidFile() {
			return goAudioInfo{}, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
		}

		// The data chunk size is exact; the riff duration counts headers
		if err := d.FwdToPCM(); err != nil {
			return goAudioInfo{}, fmt.Errorf("%w: wav data chunk: %w", ErrInvalidFile, err)
		}

		info := goAudioInfo{
			decoder:    d,
			sampleRate: int(d.SampleRate),
			channels:   int(d.NumChans),
			bitDepth:   int(d.BitDepth),
		}
		if frameBytes := int64(info.channels * info.bitDepth / 8); frameBytes > 0 {
			info.frames = d.PCMLen() / frameBytes
		}
		if info.bitDepth == 8 {
			info.offset = 128
		}
		return info, nil
	})
}

func openAIFF(path string) (FrameReader, error) {
	return newGoAudioReader(path, func(f *os.File) (goAudioInfo, error) {
		d := aiff.NewDecoder(f)
		if !d.IsValidFile() {
			return goAudioInfo{}, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
		}
		d.ReadInfo()

		return goAudioInfo{
			decoder:    d,
			sampleRate: d.SampleRate,
			channels:   int(d.NumChans),
			bitDepth:   int(d.BitDepth),
			frames:     int64(d.NumSampleFrames),
		}, nil
	})
}
