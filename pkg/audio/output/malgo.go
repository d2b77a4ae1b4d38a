// ABOUTME: Malgo-based audio sink
// ABOUTME: Uses miniaudio via malgo; the device callback pulls PCM and applies software volume
package output

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/malgo"
	"github.com/pzkpfw38t/practicesharp/pkg/audio"
)

// Malgo sink implementation using malgo/miniaudio library
type Malgo struct {
	mu       sync.Mutex
	format   audio.Format
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	source   io.Reader
	volume   atomic.Uint64 // float64 bits
}

// NewMalgo creates a new Malgo sink
func NewMalgo(format audio.Format) *Malgo {
	m := &Malgo{format: format}
	m.volume.Store(math.Float64bits(1))
	return m
}

// Init opens the playback device. The device is started by Play.
func (m *Malgo) Init(source io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		m.closeDevice()
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("%w: malgo context: %v", ErrDeviceInit, err)
		}
		m.malgoCtx = ctx
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(m.format.Channels)
	deviceConfig.SampleRate = uint32(m.format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	m.source = source
	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			m.dataCallback(pOutput, frameCount)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("%w: playback device: %v", ErrDeviceInit, err)
	}
	m.device = device

	log.Info("Audio output initialized", "backend", "malgo",
		"sample_rate", m.format.SampleRate, "channels", m.format.Channels)
	return nil
}

// dataCallback is called by malgo to fill the device buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	n := int(frameCount) * m.format.BytesPerFrame()
	if n > len(pOutput) {
		n = len(pOutput)
	}
	buf := pOutput[:n]

	if _, err := m.source.Read(buf); err != nil {
		clear(buf)
		return
	}
	applyVolume(buf, math.Float64frombits(m.volume.Load()))
}

func (m *Malgo) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return ErrNotInitialized
	}
	if m.device.IsStarted() {
		return nil
	}
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

func (m *Malgo) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return ErrNotInitialized
	}
	if !m.device.IsStarted() {
		return nil
	}
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

func (m *Malgo) Stop() error {
	return m.Pause()
}

// Dispose releases the device and context
func (m *Malgo) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Warn("malgo context uninit error", "err", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() {
	if m.device == nil {
		return
	}
	if m.device.IsStarted() {
		if err := m.device.Stop(); err != nil {
			log.Warn("device stop error", "err", err)
		}
	}
	m.device.Uninit()
	m.device = nil
}

func (m *Malgo) SetVolume(volume float64) {
	m.volume.Store(math.Float64bits(clampVolume(volume)))
}
