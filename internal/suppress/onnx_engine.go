//go:build onnxruntime

package suppress

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/naozine/voxengine/internal/pcm"
)

// sileroWindowSamples and sileroStateSize match Silero VAD v5's fixed ONNX
// graph shape: a 512-sample window at 16kHz and a [2,1,128] hidden state.
// These are independent of the adapter's own fixed_frame_samples (derived
// from the capture rate per spec §4.4); ONNXEngine internally resamples
// each incoming fixed frame to 16kHz and accumulates toward a full Silero
// window, publishing the most recently computed probability until one
// completes (mirroring the "VAD scalar carries over" rule spec §5 states
// for the adapter's own fixed-frame boundary, applied one level deeper).
const (
	sileroWindowSamples = 512
	sileroStateSize     = 128
	sileroNativeRate    = 16000
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// ONNXEngine runs Silero VAD v5 via direct ONNX Runtime bindings. It
// produces a voice-activity probability only; it does not itself suppress
// noise, since no noise-suppression (as opposed to voice-activity-only)
// ONNX graph was available to ground this engine on. Adapter treats the
// returned VAD probability the same regardless of which Engine produced it.
type ONNXEngine struct {
	session *ort.AdvancedSession

	inputTensor  *ort.Tensor[float32]
	stateTensor  *ort.Tensor[float32]
	srTensor     *ort.Tensor[int64]
	outputTensor *ort.Tensor[float32]
	stateNTensor *ort.Tensor[float32]

	nativeRate int
	frameSize  int
	threshold  float64
}

// NewONNXEngine loads modelPath (a Silero VAD ONNX file) and returns an
// Engine sized for nativeRate's fixed_frame_samples = nativeRate/100.
func NewONNXEngine(modelPath string, nativeRate int, threshold float64) (*ONNXEngine, error) {
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("suppress: onnx: %w", ortInitErr)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, sileroWindowSamples))
	if err != nil {
		return nil, fmt.Errorf("suppress: onnx: create input tensor: %w", err)
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroStateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("suppress: onnx: create state tensor: %w", err)
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{sileroNativeRate})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, fmt.Errorf("suppress: onnx: create sr tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, fmt.Errorf("suppress: onnx: create output tensor: %w", err)
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroStateSize))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("suppress: onnx: create stateN tensor: %w", err)
	}

	clearFloat32(stateTensor.GetData())
	clearFloat32(stateNTensor.GetData())

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return nil, fmt.Errorf("suppress: onnx: create session: %w", err)
	}

	return &ONNXEngine{
		session:      session,
		inputTensor:  inputTensor,
		stateTensor:  stateTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		stateNTensor: stateNTensor,
		nativeRate:   nativeRate,
		frameSize:    nativeRate / 100,
		threshold:    threshold,
	}, nil
}

func (e *ONNXEngine) FrameSize() int { return e.frameSize }

type onnxState struct {
	hidden    []float32
	pending   []float32 // accumulated, resampled-to-16kHz samples
	lastProb  float32
	hasHidden bool
}

func (e *ONNXEngine) Create() (State, error) {
	return &onnxState{
		hidden:  make([]float32, 2*sileroStateSize),
		pending: make([]float32, 0, sileroWindowSamples*2),
	}, nil
}

// ProcessFixedFrame resamples the fixed frame (at the adapter's capture
// rate) down to 16kHz, accumulates it, and runs one Silero inference per
// complete 512-sample window produced. in is copied unmodified to out: this
// engine reports voice activity only.
func (e *ONNXEngine) ProcessFixedFrame(state State, out, in []float32) (float32, error) {
	st := state.(*onnxState)
	copy(out, in)

	resampledLen := pcm.ResampleLen(len(in), e.nativeRate, sileroNativeRate)
	resampled := make([]float32, resampledLen)
	pcm.Resample(resampled, in, e.nativeRate, sileroNativeRate)
	st.pending = append(st.pending, resampled...)

	for len(st.pending) >= sileroWindowSamples {
		window := st.pending[:sileroWindowSamples]
		prob, err := e.infer(st, window)
		if err != nil {
			return 0, err
		}
		st.pending = st.pending[sileroWindowSamples:]
		st.lastProb = prob
	}

	return st.lastProb, nil
}

func (e *ONNXEngine) infer(st *onnxState, window []float32) (float32, error) {
	copy(e.inputTensor.GetData(), window)
	copy(e.stateTensor.GetData(), st.hidden)

	if err := e.session.Run(); err != nil {
		return 0, fmt.Errorf("suppress: onnx: inference: %w", err)
	}

	prob := e.outputTensor.GetData()[0]
	copy(st.hidden, e.stateNTensor.GetData())
	st.hasHidden = true
	return prob, nil
}

func (e *ONNXEngine) Destroy(state State) {
	// Per-channel state here is plain Go memory (no foreign handles); the
	// shared session and tensors are released once via Close, not per
	// channel, since only one ONNX session backs every channel's state.
	_ = state
}

// Close releases the shared ONNX Runtime session and tensors. Must be
// called once, after every channel's State has been discarded.
func (e *ONNXEngine) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	for _, t := range []interface{ Destroy() }{e.inputTensor, e.stateTensor, e.srTensor, e.outputTensor, e.stateNTensor} {
		t.Destroy()
	}
	return nil
}

func clearFloat32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
