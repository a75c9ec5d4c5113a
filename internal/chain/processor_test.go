package chain

import "testing"

type recordingProcessor struct {
	name         string
	initErr      error
	initCalls    int
	processCalls int
	resetCalls   int
	rate         int
	channels     int
}

func (r *recordingProcessor) Initialize(sampleRate, channels int) error {
	r.initCalls++
	r.rate = sampleRate
	r.channels = channels
	return r.initErr
}

func (r *recordingProcessor) Process(samples []int16) {
	r.processCalls++
	for i := range samples {
		samples[i]++
	}
}

func (r *recordingProcessor) Reset() {
	r.resetCalls++
}

func (r *recordingProcessor) Name() string { return r.name }

func TestChainProcessInOrder(t *testing.T) {
	c := New()
	a := &recordingProcessor{name: "a"}
	b := &recordingProcessor{name: "b"}
	if err := c.Add(a); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if err := c.Add(b); err != nil {
		t.Fatalf("Add b: %v", err)
	}

	if err := c.Initialize(48000, 1); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if a.rate != 48000 || a.channels != 1 {
		t.Fatalf("processor a not initialized with chain config: %+v", a)
	}

	samples := []int16{0, 0, 0}
	c.Process(samples)
	for i, s := range samples {
		if s != 2 {
			t.Errorf("sample %d = %d, want 2 (each processor increments once)", i, s)
		}
	}
	if a.processCalls != 1 || b.processCalls != 1 {
		t.Errorf("expected one Process call per processor, got a=%d b=%d", a.processCalls, b.processCalls)
	}
}

func TestChainAddAfterInitializeFails(t *testing.T) {
	c := New()
	if err := c.Initialize(48000, 1); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := c.Add(&recordingProcessor{name: "late"}); err == nil {
		t.Fatal("expected error adding a processor to an initialized chain")
	}
}

func TestChainInitializeFailureResetsPriorProcessors(t *testing.T) {
	c := New()
	first := &recordingProcessor{name: "first"}
	failing := &recordingProcessor{name: "failing", initErr: errInit}
	_ = c.Add(first)
	_ = c.Add(failing)

	if err := c.Initialize(48000, 2); err == nil {
		t.Fatal("expected Initialize to fail")
	}
	if c.Initialized() {
		t.Fatal("chain reports initialized after a failed Initialize")
	}
	if first.resetCalls != 1 {
		t.Errorf("expected the already-initialized processor to be reset, resetCalls=%d", first.resetCalls)
	}
}

func TestChainResetAllowsReinitialize(t *testing.T) {
	c := New()
	p := &recordingProcessor{name: "p"}
	_ = c.Add(p)
	_ = c.Initialize(44100, 2)
	c.Reset()
	if c.Initialized() {
		t.Fatal("expected chain to report uninitialized after Reset")
	}
	if err := c.Initialize(48000, 1); err != nil {
		t.Fatalf("re-Initialize after Reset: %v", err)
	}
	if c.SampleRate() != 48000 || c.Channels() != 1 {
		t.Errorf("chain config not updated after re-Initialize: rate=%d channels=%d", c.SampleRate(), c.Channels())
	}
}

var errInit = &initError{}

type initError struct{}

func (*initError) Error() string { return "init failed" }
