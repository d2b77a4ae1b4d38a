// ABOUTME: WMA backend that decodes through an ffmpeg subprocess
// ABOUTME: One dedicated OS-thread-locked worker goroutine owns the process; callers talk to it by message
package decode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pzkpfw38t/practicesharp/pkg/audio"
)

// ffmpeg is asked for fixed-format output; the stream resamples if the
// engine rate differs
const (
	ffmpegRate     = audio.DefaultSampleRate
	ffmpegChannels = 2
	ffmpegFrameLen = 4
)

type ffmpegOp int

const (
	opRead ffmpegOp = iota
	opSeek
	opClose
)

type ffmpegRequest struct {
	op    ffmpegOp
	dst   []float32
	frame int64
	reply chan ffmpegReply
}

type ffmpegReply struct {
	n   int
	err error
}

// ffmpegReader forwards every call to its worker goroutine
type ffmpegReader struct {
	requests chan ffmpegRequest
	done     chan struct{}
	total    int64
}

func openFFmpeg(path string) (FrameReader, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w (install with: brew install ffmpeg)", err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	r := &ffmpegReader{
		requests: make(chan ffmpegRequest),
		done:     make(chan struct{}),
	}
	if d, err := probeDuration(path); err == nil {
		r.total = int64(d) * ffmpegRate / int64(time.Second)
	}

	w := &ffmpegWorker{path: path}
	started := make(chan error, 1)
	go w.run(r.requests, r.done, started)
	if err := <-started; err != nil {
		return nil, err
	}
	return r, nil
}

// probeDuration asks ffprobe for the container duration
func probeDuration(path string) (time.Duration, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", bytes.TrimSpace(out), err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (r *ffmpegReader) call(req ffmpegRequest) ffmpegReply {
	req.reply = make(chan ffmpegReply, 1)
	select {
	case r.requests <- req:
	case <-r.done:
		return ffmpegReply{err: io.ErrClosedPipe}
	}
	return <-req.reply
}

func (r *ffmpegReader) SampleRate() int { return ffmpegRate }
func (r *ffmpegReader) Channels() int   { return ffmpegChannels }

func (r *ffmpegReader) ReadFrames(dst []float32) (int, error) {
	rep := r.call(ffmpegRequest{op: opRead, dst: dst})
	return rep.n, rep.err
}

func (r *ffmpegReader) SeekFrame(frame int64) error {
	return r.call(ffmpegRequest{op: opSeek, frame: frame}).err
}

func (r *ffmpegReader) TotalFrames() int64 { return r.total }

func (r *ffmpegReader) Close() error {
	err := r.call(ffmpegRequest{op: opClose}).err
	if err == io.ErrClosedPipe {
		return nil
	}
	return err
}

// ffmpegWorker owns the subprocess. Only its goroutine touches these fields.
type ffmpegWorker struct {
	path   string
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	buf    []byte
}

func (w *ffmpegWorker) run(requests <-chan ffmpegRequest, done chan<- struct{}, started chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)

	if err := w.start(0); err != nil {
		started <- err
		return
	}
	started <- nil

	for req := range requests {
		switch req.op {
		case opRead:
			n, err := w.read(req.dst)
			req.reply <- ffmpegReply{n: n, err: err}
		case opSeek:
			req.reply <- ffmpegReply{err: w.start(req.frame)}
		case opClose:
			w.kill()
			req.reply <- ffmpegReply{}
			return
		}
	}
}

func (w *ffmpegWorker) start(frame int64) error {
	w.kill()

	offset := float64(frame) / ffmpegRate
	cmd := exec.Command("ffmpeg",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(offset, 'f', 6, 64),
		"-i", w.path,
		"-f", "s16le",
		"-ar", strconv.Itoa(ffmpegRate),
		"-ac", strconv.Itoa(ffmpegChannels),
		"-")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	w.cmd = cmd
	w.stdout = stdout
	w.reader = bufio.NewReader(stdout)
	return nil
}

func (w *ffmpegWorker) read(dst []float32) (int, error) {
	need := len(dst) / ffmpegChannels * ffmpegFrameLen
	if cap(w.buf) < need {
		w.buf = make([]byte, need)
	}
	buf := w.buf[:need]

	n, err := io.ReadFull(w.reader, buf)
	frames := n / ffmpegFrameLen
	audio.DecodePCM16(dst, buf[:frames*ffmpegFrameLen])

	switch err {
	case nil:
		return frames, nil
	case io.EOF, io.ErrUnexpectedEOF:
		if frames > 0 {
			return frames, nil
		}
		return 0, io.EOF
	default:
		return frames, fmt.Errorf("ffmpeg read: %w", err)
	}
}

func (w *ffmpegWorker) kill() {
	if w.stdout != nil {
		w.stdout.Close()
		w.stdout = nil
	}
	if w.cmd != nil && w.cmd.Process != nil {
		w.cmd.Process.Kill()
		w.cmd.Wait()
	}
	w.cmd = nil
}
