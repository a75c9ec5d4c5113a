// Package chain implements the in-place audio processor chain: an ordered
// sequence of Processor stages applied to a shared interleaved int16 block.
package chain

import "fmt"

// Processor is a single in-place DSP stage. Initialize must succeed before
// Process is called; Process never fails once initialized, and Reset clears
// internal state without requiring re-initialization.
type Processor interface {
	// Initialize prepares the processor for the given sample rate and
	// channel count. It must pre-allocate everything Process will need.
	Initialize(sampleRate, channels int) error

	// Process modifies samples in place. len(samples) is always an integral
	// multiple of the channel count passed to Initialize.
	Process(samples []int16)

	// Reset clears internal state as if freshly initialized, without
	// requiring another call to Initialize.
	Reset()

	// Name identifies the stage for logging and diagnostics.
	Name() string
}

// Chain holds an ordered, insertion-significant sequence of Processors and a
// single (sampleRate, channels) configuration shared by all of them.
type Chain struct {
	processors  []Processor
	sampleRate  int
	channels    int
	initialized bool
}

// New returns an empty, uninitialized chain.
func New() *Chain {
	return &Chain{}
}

// Add appends a processor to the chain. It is only valid while the chain is
// uninitialized; the order of Add calls is the order processing occurs in.
func (c *Chain) Add(p Processor) error {
	if c.initialized {
		return fmt.Errorf("chain: cannot add processor %q to an initialized chain", p.Name())
	}
	c.processors = append(c.processors, p)
	return nil
}

// Processors returns the chain's processors in processing order. Callers
// needing a concrete processor's side outputs (e.g. a suppressor's VAD
// scalar) should keep the reference they passed to Add rather than relying
// on this accessor's ordering across mutation.
func (c *Chain) Processors() []Processor {
	out := make([]Processor, len(c.processors))
	copy(out, c.processors)
	return out
}

// Initialize propagates (sampleRate, channels) to every processor in
// insertion order. If any processor fails, the processors already
// initialized are reset and the chain remains uninitialized.
func (c *Chain) Initialize(sampleRate, channels int) error {
	if c.initialized {
		return fmt.Errorf("chain: already initialized, call Reset first")
	}
	for i, p := range c.processors {
		if err := p.Initialize(sampleRate, channels); err != nil {
			for j := 0; j < i; j++ {
				c.processors[j].Reset()
			}
			return fmt.Errorf("chain: initializing %q: %w", p.Name(), err)
		}
	}
	c.sampleRate = sampleRate
	c.channels = channels
	c.initialized = true
	return nil
}

// Process runs every processor's Process in sequence over the same buffer.
// The chain must be initialized first; Process itself is infallible.
func (c *Chain) Process(samples []int16) {
	for _, p := range c.processors {
		p.Process(samples)
	}
}

// Reset clears every processor's internal state and marks the chain
// uninitialized, permitting a subsequent Initialize with new parameters.
func (c *Chain) Reset() {
	for _, p := range c.processors {
		p.Reset()
	}
	c.initialized = false
	c.sampleRate = 0
	c.channels = 0
}

// Initialized reports whether Initialize has succeeded since the last Reset.
func (c *Chain) Initialized() bool {
	return c.initialized
}

// SampleRate returns the chain's configured sample rate, valid only when
// Initialized reports true.
func (c *Chain) SampleRate() int {
	return c.sampleRate
}

// Channels returns the chain's configured channel count, valid only when
// Initialized reports true.
func (c *Chain) Channels() int {
	return c.channels
}
