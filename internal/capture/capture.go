// Package capture wraps PortAudio's stream lifecycle behind the capture
// driver contract spec §6 defines: device enumeration, open/start/stop/
// close, and a callback invoked on the capture thread with interleaved
// int16 samples. Modeled on the teacher's pattern of a thin Go-shaped
// wrapper around a foreign-backed library (sherpa-onnx, modernc.org/sqlite
// in the teacher; PortAudio's C bindings here), centralizing teardown in
// Close.
package capture

import (
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// DeviceInfo mirrors spec §6's enumerate() result fields.
type DeviceInfo struct {
	ID                 int
	Name               string
	MaxInputChannels   int
	MaxOutputChannels  int
	SupportedRates     []float64
	IsDefault          bool
}

// Callback is invoked on PortAudio's real-time capture thread with one
// block of interleaved int16 samples. Per spec §5, implementations must
// not allocate, block on I/O, or acquire long-held locks.
type Callback func(samples []int16)

// Device wraps one open PortAudio input stream.
type Device struct {
	stream *portaudio.Stream
	buffer []int16

	callback Callback
	active   atomic.Bool // cleared during Stop; consulted at callback entry
}

// Initialize brings up the PortAudio host API. Must be called once before
// Enumerate or Open, and Terminate called once at process exit.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("capture: initialize: %w", err)
	}
	return nil
}

// Terminate releases the PortAudio host API.
func Terminate() error {
	return portaudio.Terminate()
}

// Enumerate lists available audio devices, per spec §6.
func Enumerate() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("capture: enumerate: %w", err)
	}
	defaultIn, _ := portaudio.DefaultInputDevice()

	out := make([]DeviceInfo, 0, len(devices))
	for i, d := range devices {
		info := DeviceInfo{
			ID:                i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			SupportedRates:    []float64{d.DefaultSampleRate},
			IsDefault:         defaultIn != nil && d.Name == defaultIn.Name,
		}
		out = append(out, info)
	}
	return out, nil
}

// Open opens an input stream at sampleRate with channels input channels
// and framesPerBuffer frames per callback, on the device named by
// deviceID (-1 selects the PortAudio default input device). The core
// requires framesPerBuffer >= 1; the suppressor adapter (C4) tolerates any
// positive value by internally re-blocking to its own 10ms frame.
func Open(sampleRate, channels, framesPerBuffer, deviceID int) (*Device, error) {
	if framesPerBuffer < 1 {
		return nil, fmt.Errorf("capture: frames_per_buffer must be >= 1, got %d", framesPerBuffer)
	}

	var dev *portaudio.DeviceInfo
	var err error
	if deviceID < 0 {
		dev, err = portaudio.DefaultInputDevice()
	} else {
		var devices []*portaudio.DeviceInfo
		devices, err = portaudio.Devices()
		if err == nil {
			if deviceID >= len(devices) {
				return nil, fmt.Errorf("capture: device id %d out of range", deviceID)
			}
			dev = devices[deviceID]
		}
	}
	if err != nil {
		return nil, fmt.Errorf("capture: resolving device: %w", err)
	}

	d := &Device{buffer: make([]int16, framesPerBuffer*channels)}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, d.onPortAudioCallback)
	if err != nil {
		return nil, fmt.Errorf("capture: open stream: %w", err)
	}
	d.stream = stream
	return d, nil
}

// onPortAudioCallback is the real function PortAudio invokes; it consults
// the active flag before forwarding to the user callback, per spec §9's
// "real-time callback with lifecycle flag" design note. No allocation
// occurs here: d.buffer is pre-sized at Open time.
func (d *Device) onPortAudioCallback(in []int16) {
	if !d.active.Load() {
		return
	}
	if d.callback != nil {
		d.callback(in)
	}
}

// Start begins streaming, invoking callback on the capture thread for
// every block until Stop is called.
func (d *Device) Start(callback Callback) error {
	d.callback = callback
	d.active.Store(true)
	if err := d.stream.Start(); err != nil {
		d.active.Store(false)
		return fmt.Errorf("capture: start: %w", err)
	}
	return nil
}

// Stop signals the stream to stop and drains outstanding callbacks before
// returning, satisfying the capture driver contract that no new callback
// may begin after Stop returns (spec §5's sole cancellation primitive).
func (d *Device) Stop() error {
	d.active.Store(false)
	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("capture: stop: %w", err)
	}
	return nil
}

// Close releases the stream's resources. The device must not be reused
// after Close.
func (d *Device) Close() error {
	if err := d.stream.Close(); err != nil {
		return fmt.Errorf("capture: close: %w", err)
	}
	return nil
}
