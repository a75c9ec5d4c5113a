// Package suppress implements the neural-suppressor adapter (C4): it
// re-blocks the variable-size interleaved int16 pipeline into the neural
// engine's fixed 10ms frame, deinterleaves per channel, and publishes a
// per-block voice-activity scalar.
package suppress

// State is an opaque per-channel handle returned by Engine.Create. Adapter
// never inspects it; it is passed back verbatim to ProcessFixedFrame and
// Destroy.
type State interface{}

// Engine is the neural engine interface consumed by C4 (spec §6). A single
// Engine instance is shared across all channels; per-channel memory lives
// in the State values it hands out.
type Engine interface {
	// Create allocates a new per-channel state. Returns an error if the
	// underlying resource (model session, tensors) cannot be acquired.
	Create() (State, error)

	// ProcessFixedFrame runs one fixed-frame inference. in and out are both
	// exactly FrameSize() samples; in-place use (out identical to in) is
	// permitted. Returns the frame's voice-activity probability in [0, 1].
	ProcessFixedFrame(state State, out, in []float32) (float32, error)

	// Destroy releases a state acquired from Create. Safe to call once per
	// Create result; the engine does not need to tolerate double-destroy.
	Destroy(state State)

	// FrameSize reports the fixed frame size, in samples, this engine
	// requires per ProcessFixedFrame call.
	FrameSize() int
}

// StubEngine is a deterministic test double: it performs no suppression
// (in is copied to out unchanged) and toggles a fixed speech/silence
// pattern every StubToggleInterval calls, adapted from the reference
// plugin's stub VAD double.
type StubEngine struct {
	frameSize int
}

// StubToggleInterval is the number of ProcessFixedFrame calls between
// toggling the stub's reported speech/silence state.
const StubToggleInterval = 50

// StubConfidence is the fixed confidence value StubEngine reports.
const StubConfidence = 0.42

// NewStubEngine returns a StubEngine using the given fixed frame size.
func NewStubEngine(frameSize int) *StubEngine {
	return &StubEngine{frameSize: frameSize}
}

func (e *StubEngine) FrameSize() int { return e.frameSize }

type stubState struct {
	counter int
}

func (e *StubEngine) Create() (State, error) {
	return &stubState{}, nil
}

func (e *StubEngine) ProcessFixedFrame(state State, out, in []float32) (float32, error) {
	st := state.(*stubState)
	copy(out, in)
	st.counter++
	speaking := (st.counter/StubToggleInterval)%2 == 1
	if speaking {
		return StubConfidence, nil
	}
	return 0, nil
}

func (e *StubEngine) Destroy(State) {}

// NullEngine is the passthrough build described in spec §4.4: initialize
// succeeds trivially, process is a no-op, and the VAD scalar is fixed at
// 0.0. It differs from StubEngine in being the "no suppressor linked at
// all" case rather than a suppressor deterministically exercising its
// call contract; Adapter surfaces this distinction via Active().
type NullEngine struct {
	frameSize int
}

// NewNullEngine returns the build-time-disabled passthrough engine.
func NewNullEngine(frameSize int) *NullEngine {
	return &NullEngine{frameSize: frameSize}
}

func (e *NullEngine) FrameSize() int { return e.frameSize }

func (e *NullEngine) Create() (State, error) { return struct{}{}, nil }

func (e *NullEngine) ProcessFixedFrame(_ State, out, in []float32) (float32, error) {
	copy(out, in)
	return 0, nil
}

func (e *NullEngine) Destroy(State) {}
