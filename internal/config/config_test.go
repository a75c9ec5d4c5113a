package config

import (
	"testing"

	"github.com/naozine/voxengine/internal/segmenter"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.Rate = 0 }},
		{"zero channels", func(c *Config) { c.Channels = 0 }},
		{"zero frames per buffer", func(c *Config) { c.FramesPerBuffer = 0 }},
		{"suppress unsupported rate", func(c *Config) { c.Rate = 16000 }},
		{"suppress too many channels", func(c *Config) { c.Channels = 3 }},
		{"negative hpf cutoff", func(c *Config) { c.HPFCutoff = -1 }},
		{"target level out of range", func(c *Config) { c.TargetLevel = 1.5 }},
		{"unknown vad preset", func(c *Config) { c.VADPreset = "extreme" }},
		{"unknown output format", func(c *Config) { c.OutputFormat = "pdf" }},
		{"negative asr threads", func(c *Config) { c.ASRThreads = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

func TestSegmenterConfigScalesToRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = 24000
	cfg.Channels = 2
	sc := cfg.SegmenterConfig()
	want := 30 * 24000 * 2
	if sc.MaxSegmentSamples != want {
		t.Errorf("MaxSegmentSamples = %d, want %d", sc.MaxSegmentSamples, want)
	}
}

func TestSegmenterConfigRejectsInvalidPresetSilently(t *testing.T) {
	// ParsePreset falls back to Balanced for unrecognized names; Validate is
	// responsible for rejecting them before SegmenterConfig is ever called.
	cfg := DefaultConfig()
	cfg.VADPreset = "extreme"
	sc := cfg.SegmenterConfig()
	want := segmenter.PresetParamsFor(segmenter.Balanced).SpeechThreshold
	if sc.SpeechThreshold != want {
		t.Errorf("SpeechThreshold = %v, want %v (Balanced fallback)", sc.SpeechThreshold, want)
	}
}
