package suppress

import (
	"fmt"

	"github.com/naozine/voxengine/internal/pcm"
)

// Adapter re-blocks the chain's variable-size interleaved int16 pipeline
// into an Engine's fixed frame size, deinterleaves per channel, and
// publishes one voice-activity scalar per channel after every fixed-frame
// boundary it crosses. Implements chain.Processor.
type Adapter struct {
	engine Engine

	sampleRate int
	channels   int
	frameSize  int // Engine.FrameSize(), in samples per channel

	states []State

	// accum holds not-yet-processed interleaved int16 samples carried over
	// from the previous Process call. Process appends the whole incoming
	// block before draining full frames, so between calls it holds fewer
	// than frameSize samples per channel.
	accum []int16

	floatIn   pcm.FloatScratch
	floatOut  pcm.FloatScratch
	perChanIn [][]float32

	lastVAD []float32
}

// NewAdapter wraps engine. A nil engine is invalid; use NewNullEngine for
// the build-time-disabled passthrough case instead.
func NewAdapter(engine Engine) *Adapter {
	return &Adapter{engine: engine}
}

func (a *Adapter) Name() string { return "suppress" }

// Active reports whether a real suppressor is linked, resolving the
// passthrough-vs-linked distinction: NullEngine reports false, every other
// Engine (including StubEngine) reports true.
func (a *Adapter) Active() bool {
	_, isNull := a.engine.(*NullEngine)
	return !isNull
}

func (a *Adapter) Initialize(sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("suppress: adapter: invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("suppress: adapter: invalid channel count %d", channels)
	}

	frameSize := a.engine.FrameSize()
	if frameSize <= 0 {
		return fmt.Errorf("suppress: adapter: engine reports invalid frame size %d", frameSize)
	}

	states := make([]State, 0, channels)
	for c := 0; c < channels; c++ {
		st, err := a.engine.Create()
		if err != nil {
			for _, prior := range states {
				a.engine.Destroy(prior)
			}
			return fmt.Errorf("suppress: adapter: create channel %d state: %w", c, err)
		}
		states = append(states, st)
	}

	a.sampleRate = sampleRate
	a.channels = channels
	a.frameSize = frameSize
	a.states = states
	a.accum = a.accum[:0]
	a.perChanIn = make([][]float32, channels)
	a.lastVAD = make([]float32, channels)
	return nil
}

// LastVAD returns the most recently published voice-activity probability of
// each channel, one entry per channel; the adapter does not average them
// (internal/pipeline does). Valid only after at least one
// complete fixed frame has been processed; zero-valued beforehand.
func (a *Adapter) LastVAD() []float32 {
	return a.lastVAD
}

// Process re-blocks samples (interleaved, a.channels wide) into whole
// fixed frames, running one Engine inference per channel per frame, and
// writes each processed frame back over the positions of samples it came
// from. Any remainder shorter than a full frame is carried over to the next
// call in accum, per spec §8 scenario 4 (residue retained, not discarded).
func (a *Adapter) Process(samples []int16) {
	if a.channels == 0 || a.frameSize == 0 {
		return
	}

	carried := len(a.accum)
	a.accum = append(a.accum, samples...)

	frameInterleavedLen := a.frameSize * a.channels
	consumed := 0
	for len(a.accum)-consumed >= frameInterleavedLen {
		frame := a.accum[consumed : consumed+frameInterleavedLen]
		a.processFrame(frame)
		for i, v := range frame {
			if j := consumed - carried + i; j >= 0 {
				samples[j] = v
			}
		}
		consumed += frameInterleavedLen
	}

	remaining := len(a.accum) - consumed
	if consumed > 0 {
		copy(a.accum[:remaining], a.accum[consumed:])
		a.accum = a.accum[:remaining]
	}

	// The part of a frame that was carried over from an earlier call has
	// already left the chain and is not written anywhere; the trailing
	// residue of this block is left in samples unprocessed.
}

// processFrame deinterleaves one whole fixed frame, runs it through the
// engine per channel, reinterleaves the (possibly suppressed) result back
// in place, and records each channel's VAD scalar in lastVAD.
func (a *Adapter) processFrame(frame []int16) {
	floatFrame := a.floatIn.Get(len(frame))
	pcm.Int16ToFloat(floatFrame, frame)

	outFrame := a.floatOut.Get(len(frame))

	var vadSum float32
	for c := 0; c < a.channels; c++ {
		chanIn := a.perChanIn[c]
		if cap(chanIn) < a.frameSize {
			chanIn = make([]float32, a.frameSize)
		}
		chanIn = chanIn[:a.frameSize]
		for i := 0; i < a.frameSize; i++ {
			chanIn[i] = floatFrame[i*a.channels+c]
		}
		a.perChanIn[c] = chanIn

		chanOut := chanIn // in-place: Engine implementations treat this as safe
		prob, err := a.engine.ProcessFixedFrame(a.states[c], chanOut, chanIn)
		if err != nil {
			// A failing inference falls back to passthrough for this frame
			// rather than corrupting the pipeline; the VAD scalar for this
			// channel holds its previous value.
			copy(chanOut, chanIn)
			prob = a.lastVAD[c]
		}
		a.lastVAD[c] = prob
		vadSum += prob

		for i := 0; i < a.frameSize; i++ {
			outFrame[i*a.channels+c] = chanOut[i]
		}
	}
	_ = vadSum // per-channel values are authoritative; an overall average is
	// derivable by the caller from LastVAD() when a single scalar is wanted.

	pcm.FloatToInt16(frame, outFrame)
}

// Reset destroys and recreates every channel's engine state, discarding any
// carried-over residue. If recreation fails partway through, previously
// recreated states are rolled back (destroyed) and the adapter is left
// uninitialized, matching Chain's own rollback-on-failure contract.
func (a *Adapter) Reset() {
	for _, st := range a.states {
		a.engine.Destroy(st)
	}
	a.accum = a.accum[:0]

	newStates := make([]State, 0, a.channels)
	for c := 0; c < a.channels; c++ {
		st, err := a.engine.Create()
		if err != nil {
			for _, prior := range newStates {
				a.engine.Destroy(prior)
			}
			a.states = nil
			a.channels = 0
			return
		}
		newStates = append(newStates, st)
	}
	a.states = newStates
	for i := range a.lastVAD {
		a.lastVAD[i] = 0
	}
}
