package pipeline

import (
	"testing"

	"github.com/naozine/voxengine/internal/config"
	"github.com/naozine/voxengine/internal/suppress"
)

func TestNewBuildsChainAccordingToConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	p, err := New(cfg, suppress.NewStubEngine(cfg.Rate/100))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(p.chain.Processors()) != 3 {
		t.Fatalf("chain has %d processors, want 3 (hpf, normalizer, suppressor)", len(p.chain.Processors()))
	}
}

func TestNewSkipsDisabledStages(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EnableHPF = false
	cfg.EnableNorm = false
	cfg.EnableSuppress = false

	p, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(p.chain.Processors()) != 0 {
		t.Fatalf("chain has %d processors, want 0", len(p.chain.Processors()))
	}
	if p.SuppressorActive() {
		t.Error("SuppressorActive() = true with suppression disabled")
	}
}

func TestProcessBlockEmitsSegmentsViaCallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rate = 48000
	cfg.Channels = 1
	cfg.VADPreset = "very_sensitive"

	p, err := New(cfg, suppress.NewStubEngine(cfg.Rate/100))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Initialize(cfg.Rate, cfg.Channels); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var segments [][]int16
	p.OnSegment(func(samples []int16, rate, channels int) {
		segments = append(segments, samples)
		if rate != cfg.Rate || channels != cfg.Channels {
			t.Errorf("segment callback rate/channels = %d/%d, want %d/%d", rate, channels, cfg.Rate, cfg.Channels)
		}
	})

	// StubEngine toggles speech on every StubToggleInterval calls at a
	// frame size of Rate/100; feed enough 480-sample blocks to cross several
	// toggle boundaries and force at least one segment to completion.
	block := make([]int16, 480)
	for i := 0; i < suppress.StubToggleInterval*3; i++ {
		p.ProcessBlock(block)
	}
	p.Flush()

	if len(segments) == 0 {
		t.Error("no segments emitted across a full speech/silence toggle cycle")
	}
}

func TestResetClearsChainAndSegmenterState(t *testing.T) {
	cfg := config.DefaultConfig()
	p, err := New(cfg, suppress.NewStubEngine(cfg.Rate/100))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Initialize(cfg.Rate, cfg.Channels); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	p.ProcessBlock(make([]int16, 480))
	p.Reset() // must not panic
}
