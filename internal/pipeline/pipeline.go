// Package pipeline assembles the chain, suppressor, and segmenter into the
// single orchestrator the capture callback and file-processing path both
// drive, resolving design note 1 (spec §9): the suppressor adapter is held
// under its concrete type so its VAD scalar can be read back after each
// chain Process call, alongside the Processor interface the chain itself
// uses.
package pipeline

import (
	"fmt"

	"github.com/naozine/voxengine/internal/chain"
	"github.com/naozine/voxengine/internal/config"
	"github.com/naozine/voxengine/internal/dsp"
	"github.com/naozine/voxengine/internal/segmenter"
	"github.com/naozine/voxengine/internal/suppress"
)

// SegmentCallback receives one fully accumulated speech segment (C5 output)
// and the (rate, channels) it was captured at.
type SegmentCallback func(samples []int16, rate, channels int)

// Pipeline drives C2 (chain) -> C3 (HPF, normalizer) -> C4 (suppressor)
// -> C5 (segmenter) over successive capture blocks, per spec §2's data
// flow table.
type Pipeline struct {
	cfg config.Config

	chain      *chain.Chain
	suppressor *suppress.Adapter // concrete type: see package doc
	segmenter  *segmenter.Segmenter

	rate     int
	channels int
}

// New builds an uninitialized Pipeline from cfg. engine selects the neural
// suppressor's backing Engine; pass suppress.NewNullEngine(frameSize) to
// disable suppression even when cfg.EnableSuppress is true (passthrough
// mode, spec §4.4).
func New(cfg config.Config, engine suppress.Engine) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := chain.New()
	var adapter *suppress.Adapter

	if cfg.EnableHPF {
		if err := c.Add(dsp.NewHighPassFilter(cfg.HPFCutoff)); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	if cfg.EnableNorm {
		if err := c.Add(dsp.NewGainNormalizer(cfg.TargetLevel)); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	if cfg.EnableSuppress {
		if engine == nil {
			engine = suppress.NewNullEngine(cfg.Rate / 100)
		}
		adapter = suppress.NewAdapter(engine)
		if err := c.Add(adapter); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	var onSeg segmenter.Callback
	seg := segmenter.New(cfg.SegmenterConfig(), nil)

	p := &Pipeline{cfg: cfg, chain: c, suppressor: adapter, segmenter: seg}
	_ = onSeg
	return p, nil
}

// OnSegment installs the callback invoked whenever the segmenter completes
// a speech segment. Must be called before ProcessBlock.
func (p *Pipeline) OnSegment(cb SegmentCallback) {
	p.segmenter = segmenter.New(p.cfg.SegmenterConfig(), func(samples []int16) {
		if cb != nil {
			cb(samples, p.rate, p.channels)
		}
	})
}

// Initialize propagates (rate, channels) to the chain. Must succeed before
// ProcessBlock is called.
func (p *Pipeline) Initialize(rate, channels int) error {
	if err := p.chain.Initialize(rate, channels); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	p.rate = rate
	p.channels = channels
	return nil
}

// ProcessBlock runs one capture block through the chain in place, then
// feeds (block, suppressor VAD scalar) to the segmenter. If no suppressor
// is configured, every block is treated as speech (vad = 1.0), matching
// the "no VAD gating without a suppressor" expectation: downstream callers
// that disable C4 get a segmenter that accumulates everything.
func (p *Pipeline) ProcessBlock(samples []int16) {
	p.chain.Process(samples)

	vad := float32(1.0)
	if p.suppressor != nil {
		vad = averageVAD(p.suppressor.LastVAD())
	}
	if p.segmenter != nil {
		p.segmenter.ProcessBlock(samples, vad)
	}
}

// Flush drains any in-progress segment (spec §5: must be called after
// capture stop).
func (p *Pipeline) Flush() {
	if p.segmenter != nil {
		p.segmenter.Flush()
	}
}

// Reset clears the chain and segmenter state without discarding the
// pipeline's configuration.
func (p *Pipeline) Reset() {
	p.chain.Reset()
	if p.segmenter != nil {
		p.segmenter.Reset()
	}
}

// SuppressorActive reports whether a real (non-passthrough) suppressor is
// linked, resolving Open Question 3 at the orchestrator level too.
func (p *Pipeline) SuppressorActive() bool {
	return p.suppressor != nil && p.suppressor.Active()
}

func averageVAD(perChannel []float32) float32 {
	if len(perChannel) == 0 {
		return 0
	}
	var sum float32
	for _, v := range perChannel {
		sum += v
	}
	return sum / float32(len(perChannel))
}
