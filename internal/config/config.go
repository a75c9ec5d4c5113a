// Package config holds the typed configuration surface spec §6 describes:
// capture/pipeline parameters, VAD preset selection, and ASR kernel
// options. Follows the teacher's asr.Config shape (internal/asr/config.go):
// a plain struct, a DefaultConfig constructor, and a Validate method
// naming the first invalid field.
package config

import (
	"fmt"

	"github.com/naozine/voxengine/internal/segmenter"
)

// Config is the full recognized configuration surface (spec §6 table),
// covering capture, the DSP chain, the VAD segmenter, and the ASR kernel.
type Config struct {
	// Capture / pipeline
	Rate            int
	Channels        int
	FramesPerBuffer int
	DeviceID        int // -1 selects the default input device

	// DSP chain (C3)
	EnableHPF  bool
	HPFCutoff  float64
	EnableNorm bool
	TargetLevel float64

	// Neural suppressor (C4)
	EnableSuppress     bool
	SuppressModelPath  string  // Silero VAD ONNX file; only consulted by onnxruntime-tagged builds
	SuppressThreshold  float64

	// VAD segmenter (C5)
	VADPreset   string
	VADAdaptive bool

	// ASR front-end (C6)
	ASRModelPath  string
	ASRLanguage   string
	ASRThreads    int
	ASRTranslate  bool
	ASRModelSize  string

	// Output
	OutputFormat string // plain|srt|vtt
	OutputDir    string
	DBPath       string
}

// supportedSuppressRates is the capture rate set Validate accepts when the
// suppressor is enabled (spec §4.4: rate in {24000, 44100, 48000}).
// suppress.Adapter itself accepts any positive rate, so this is the only
// rate check.
var supportedSuppressRates = map[int]bool{24000: true, 44100: true, 48000: true}

// DefaultConfig returns a config mirroring the teacher's own "balanced"
// recording defaults: 48kHz mono capture, HPF+normalize+suppress all
// enabled, balanced VAD preset, plain-text output.
func DefaultConfig() Config {
	return Config{
		Rate:            48000,
		Channels:        1,
		FramesPerBuffer: 256,
		DeviceID:        -1,

		EnableHPF:   true,
		HPFCutoff:   80.0,
		EnableNorm:  true,
		TargetLevel: 0.3,

		EnableSuppress:    true,
		SuppressThreshold: 0.5,

		VADPreset:   "balanced",
		VADAdaptive: false,

		ASRThreads:   2,
		ASRLanguage:  "auto",
		ASRModelSize: "",

		OutputFormat: "plain",
		OutputDir:    ".",
		DBPath:       "voxengine.db",
	}
}

// Validate checks every field the pipeline depends on, returning a wrapped
// error naming the first invalid field it finds.
func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("config: rate must be positive, got %d", c.Rate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("config: channels must be positive, got %d", c.Channels)
	}
	if c.FramesPerBuffer < 1 {
		return fmt.Errorf("config: frames_per_buffer must be >= 1, got %d", c.FramesPerBuffer)
	}
	if c.EnableSuppress {
		if !supportedSuppressRates[c.Rate] {
			return fmt.Errorf("config: rate %d unsupported by suppressor (must be 24000, 44100, or 48000)", c.Rate)
		}
		if c.Channels > 2 {
			return fmt.Errorf("config: channels %d unsupported by suppressor (must be 1 or 2)", c.Channels)
		}
	}
	if c.EnableHPF && c.HPFCutoff <= 0 {
		return fmt.Errorf("config: hpf_cutoff must be positive, got %f", c.HPFCutoff)
	}
	if c.EnableNorm && (c.TargetLevel <= 0 || c.TargetLevel > 1) {
		return fmt.Errorf("config: target_level must be in (0, 1], got %f", c.TargetLevel)
	}
	switch c.VADPreset {
	case "very_sensitive", "sensitive", "balanced", "conservative", "very_conservative", "":
	default:
		return fmt.Errorf("config: unrecognized vad_preset %q", c.VADPreset)
	}
	switch c.OutputFormat {
	case "plain", "srt", "vtt":
	default:
		return fmt.Errorf("config: unrecognized output_format %q", c.OutputFormat)
	}
	if c.ASRThreads < 0 {
		return fmt.Errorf("config: asr_threads must be >= 0, got %d", c.ASRThreads)
	}
	return nil
}

// SegmenterConfig resolves VADPreset/VADAdaptive into a segmenter.Config,
// scaling MaxSegmentSamples to the configured capture rate
// (segmenter.DefaultConfig is scaled for a nominal 48kHz mono rate).
func (c *Config) SegmenterConfig() segmenter.Config {
	p := segmenter.PresetParamsFor(segmenter.ParsePreset(c.VADPreset))
	return segmenter.Config{
		SpeechThreshold:   p.SpeechThreshold,
		MinSpeechFrames:   p.MinSpeechFrames,
		MinSilenceFrames:  p.MinSilenceFrames,
		MaxSegmentSamples: 30 * c.Rate * c.Channels,
		Adaptive:          c.VADAdaptive,
		AdaptiveBeta:      0.05,
		AdaptiveDelta:     0.1,
		AdaptiveMin:       0.1,
		AdaptiveMax:       0.9,
	}
}
