package asr

import (
	"strings"
	"testing"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

func TestTranscribeBufferBeforeInitIsError(t *testing.T) {
	r := New()
	_, err := r.TranscribeBuffer([]int16{1, 2, 3, 4}, 16000, 1)
	if err == nil {
		t.Fatal("expected error transcribing before init")
	}
	if r.LastError() == "" {
		t.Error("LastError not set after failed transcribe")
	}
}

func TestTranscribeBufferEmptyInputShortCircuits(t *testing.T) {
	r := &Recognizer{initialized: true}
	segments, err := r.TranscribeBuffer(nil, 16000, 1)
	if err != nil {
		t.Fatalf("empty input returned error: %v", err)
	}
	if segments != nil {
		t.Errorf("empty input returned %v, want nil segments", segments)
	}
	if r.LastError() != "" {
		t.Errorf("LastError = %q after empty-input short-circuit, want cleared", r.LastError())
	}
}

func TestFormatPlainJoinsWithSpaces(t *testing.T) {
	segs := []Segment{{Text: "hello"}, {Text: "world"}}
	got := FormatPlain(segs)
	if got != "hello world" {
		t.Errorf("FormatPlain = %q, want %q", got, "hello world")
	}
}

func TestFormatSRTTimestamps(t *testing.T) {
	segs := []Segment{{Text: "hi", StartMs: 1500, EndMs: 2750}}
	out := FormatSRT(segs)
	if !strings.Contains(out, "00:00:01,500 --> 00:00:02,750") {
		t.Errorf("FormatSRT = %q, missing expected time range", out)
	}
	if !strings.HasPrefix(out, "1\n") {
		t.Errorf("FormatSRT = %q, want index line first", out)
	}
}

func TestFormatVTTHeaderAndDotSeparator(t *testing.T) {
	segs := []Segment{{Text: "hi", StartMs: 1500, EndMs: 2750}}
	out := FormatVTT(segs)
	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Errorf("FormatVTT = %q, want WEBVTT header", out)
	}
	if !strings.Contains(out, "00:00:01.500 --> 00:00:02.750") {
		t.Errorf("FormatVTT = %q, missing expected time range", out)
	}
}

func TestTokensToSegmentsGroupsWithinGap(t *testing.T) {
	result := &sherpa.OfflineRecognizerResult{
		Tokens:     []string{"a", "b", "c"},
		Timestamps: []float32{0.0, 0.1, 1.0}, // 0.85s gap between the end of "b" and the start of "c" exceeds 0.5s threshold
		Durations:  []float32{0.05, 0.05, 0.05},
	}
	segments := tokensToSegments(result)

	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2 (gap should split)", len(segments))
	}
	if segments[0].Text != "ab" {
		t.Errorf("first segment text = %q, want %q", segments[0].Text, "ab")
	}
	if segments[1].Text != "c" {
		t.Errorf("second segment text = %q, want %q", segments[1].Text, "c")
	}
}
