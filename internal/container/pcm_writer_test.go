package container

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPCMWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	w, err := OpenPCMWriter(path, 16000, 1)
	if err != nil {
		t.Fatalf("OpenPCMWriter: %v", err)
	}

	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(i - 800)
	}
	n, err := w.WriteSamples(samples)
	if err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if n != len(samples) {
		t.Errorf("WriteSamples returned %d, want %d", n, len(samples))
	}
	if w.SamplesWritten() != int64(len(samples)) {
		t.Errorf("SamplesWritten() = %d, want %d", w.SamplesWritten(), len(samples))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output wav file is empty")
	}
}

func TestFlacWriterClampsCompressionLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.flac")
	w, err := OpenFlacWriter(path, 48000, 1, 99)
	if err != nil {
		t.Fatalf("OpenFlacWriter: %v", err)
	}
	if w.compressionLevel != 8 {
		t.Errorf("compressionLevel = %d, want clamped to 8", w.compressionLevel)
	}
	w.tmp.Close()
	os.Remove(w.tmpPath)
}
