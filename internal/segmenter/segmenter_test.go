package segmenter

import "testing"

func blockOf(value int16) []int16 {
	return []int16{value}
}

// TestSegmenterScenarioFive reproduces spec §8 scenario 5 exactly: VAD
// sequence [0.1,0.1,0.9,0.9,0.9,0.9,0.1,0.1,0.1,0.1,0.1] with
// speech_threshold=0.5, min_speech_frames=3, min_silence_frames=5, each
// block represented by a single distinguishable sample so the emitted
// segment's composition can be checked directly.
func TestSegmenterScenarioFive(t *testing.T) {
	vadSeq := []float32{0.1, 0.1, 0.9, 0.9, 0.9, 0.9, 0.1, 0.1, 0.1, 0.1, 0.1}

	var emitted [][]int16
	s := New(Config{
		SpeechThreshold:   0.5,
		MinSpeechFrames:   3,
		MinSilenceFrames:  5,
		MaxSegmentSamples: 1000,
	}, func(samples []int16) {
		emitted = append(emitted, samples)
	})

	for i, vad := range vadSeq {
		block := blockOf(int16(i + 1)) // block N carries value N (1-indexed)
		s.ProcessBlock(block, vad)

		switch i + 1 {
		case 4: // after frame 4, still Silent (only 2 consecutive speech frames)
			if s.State() != Silent {
				t.Fatalf("after frame 4, state = %v, want Silent", s.State())
			}
		case 5: // 3rd consecutive speech frame: transitions to Speech
			if s.State() != Speech {
				t.Fatalf("after frame 5, state = %v, want Speech", s.State())
			}
		}
	}

	if len(emitted) != 1 {
		t.Fatalf("emitted %d segments, want 1", len(emitted))
	}

	want := []int16{3, 4, 5, 6, 7, 8, 9, 10, 11}
	got := emitted[0]
	if len(got) != len(want) {
		t.Fatalf("segment = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment = %v, want %v", got, want)
		}
	}

	if s.State() != Silent {
		t.Errorf("final state = %v, want Silent", s.State())
	}
}

func TestSegmenterSilentCaptureEmitsNothing(t *testing.T) {
	var emitted int
	s := New(Config{
		SpeechThreshold:   0.5,
		MinSpeechFrames:   3,
		MinSilenceFrames:  5,
		MaxSegmentSamples: 48000,
	}, func([]int16) { emitted++ })

	for i := 0; i < 100; i++ {
		s.ProcessBlock(make([]int16, 480), 0.0)
	}
	s.Flush()

	if emitted != 0 {
		t.Errorf("emitted %d segments for all-silent input, want 0", emitted)
	}
}

func TestSegmenterMaxSegmentSamplesEmitsAtThreshold(t *testing.T) {
	var emittedLens []int
	s := New(Config{
		SpeechThreshold:   0.5,
		MinSpeechFrames:   1,
		MinSilenceFrames:  100, // never reached in this test
		MaxSegmentSamples: 10,
	}, func(samples []int16) { emittedLens = append(emittedLens, len(samples)) })

	block := make([]int16, 5)
	for i := 0; i < 3; i++ {
		s.ProcessBlock(block, 0.9)
	}

	// Two blocks of 5 reach the 10-sample cap exactly and emit; a third
	// block immediately starts a new in-progress segment (min_speech_frames
	// is 1 here), so the state at the end is Speech, not Silent.
	if len(emittedLens) != 1 {
		t.Fatalf("emitted %d segments, want 1 (cap reached mid-speech)", len(emittedLens))
	}
	if emittedLens[0] != 10 {
		t.Errorf("emitted segment length = %d, want exactly 10 (cap, not after)", emittedLens[0])
	}
	if s.State() != Speech {
		t.Errorf("state after cap-triggered emit and a fresh block = %v, want Speech", s.State())
	}
}

func TestSegmenterFlushEmitsInProgressSegment(t *testing.T) {
	var emitted [][]int16
	s := New(Config{
		SpeechThreshold:   0.5,
		MinSpeechFrames:   1,
		MinSilenceFrames:  5,
		MaxSegmentSamples: 1000,
	}, func(samples []int16) { emitted = append(emitted, samples) })

	s.ProcessBlock([]int16{1, 2, 3}, 0.9)
	if s.State() != Speech {
		t.Fatalf("state = %v, want Speech", s.State())
	}
	s.Flush()

	if len(emitted) != 1 || len(emitted[0]) != 3 {
		t.Fatalf("emitted = %v, want one 3-sample segment", emitted)
	}
	if s.State() != Silent {
		t.Errorf("state after Flush = %v, want Silent", s.State())
	}
}

func TestSegmenterResetDropsInProgressSegmentWithoutEmitting(t *testing.T) {
	var emitted int
	s := New(Config{
		SpeechThreshold:   0.5,
		MinSpeechFrames:   1,
		MinSilenceFrames:  5,
		MaxSegmentSamples: 1000,
	}, func([]int16) { emitted++ })

	s.ProcessBlock([]int16{1, 2, 3}, 0.9)
	if s.State() != Speech {
		t.Fatalf("state = %v, want Speech", s.State())
	}
	s.Reset()

	if emitted != 0 {
		t.Errorf("Reset emitted %d segments, want 0 (hard reset, not flush)", emitted)
	}
	if s.State() != Silent {
		t.Errorf("state after Reset = %v, want Silent", s.State())
	}
}

func TestSegmenterAdaptiveThresholdTracksRunningMean(t *testing.T) {
	s := New(Config{
		Adaptive:          true,
		AdaptiveBeta:      0.5,
		AdaptiveDelta:     0.1,
		AdaptiveMin:       0.1,
		AdaptiveMax:       0.9,
		MinSpeechFrames:   1,
		MinSilenceFrames:  1,
		MaxSegmentSamples: 1000,
	}, func([]int16) {})

	// Running mean starts at 0; a low, steady VAD floor should raise the
	// effective threshold enough that the same floor no longer reads as
	// speech, while a block well above it still does.
	for i := 0; i < 10; i++ {
		s.ProcessBlock([]int16{0}, 0.05)
	}
	if s.State() == Speech {
		t.Fatalf("adapted to noise floor but still reports Speech")
	}
	s.ProcessBlock([]int16{0}, 0.9)
	if s.State() != Speech {
		t.Errorf("state after strong speech block = %v, want Speech", s.State())
	}
}
