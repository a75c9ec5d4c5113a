// Package container implements the two writer contracts spec §6 defines:
// a lossless PCM-in-RIFF writer and a compressed-lossless framed writer.
// Both consume processed sample blocks from the chain and are out of the
// core's scope as abstractions, but concrete implementations are needed
// to exercise C2's output end-to-end.
package container

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCMWriter writes interleaved int16 samples as a standard PCM-in-RIFF
// (.wav) file: 4-byte chunk headers, little-endian sizes, PCM format code,
// per spec §6. Backed by github.com/go-audio/wav rather than a hand-rolled
// header (see DESIGN.md for why this is preferred over stdlib
// encoding/binary here).
type PCMWriter struct {
	file    *os.File
	encoder *wav.Encoder
	format  *audio.Format
	written int64
}

// OpenPCMWriter creates (or truncates) path and prepares it for 16-bit PCM
// writes at the given rate/channels.
func OpenPCMWriter(path string, rate, channels int) (*PCMWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("container: pcm: create %q: %w", path, err)
	}
	enc := wav.NewEncoder(f, rate, 16, channels, 1) // 1 = WAVE_FORMAT_PCM
	return &PCMWriter{
		file:    f,
		encoder: enc,
		format:  &audio.Format{NumChannels: channels, SampleRate: rate},
	}, nil
}

// WriteSamples appends interleaved int16 samples, returning the number of
// samples written. Bits-per-sample is fixed at 16 (spec §6).
func (w *PCMWriter) WriteSamples(samples []int16) (int, error) {
	buf := &audio.IntBuffer{
		Format:         w.format,
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}
	if err := w.encoder.Write(buf); err != nil {
		return 0, fmt.Errorf("container: pcm: write: %w", err)
	}
	w.written += int64(len(samples))
	return len(samples), nil
}

// Close finalizes the RIFF header (go-audio/wav backpatches chunk sizes on
// close) and closes the underlying file.
func (w *PCMWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		return fmt.Errorf("container: pcm: close encoder: %w", err)
	}
	return w.file.Close()
}

// SamplesWritten reports the cumulative sample count written so far.
func (w *PCMWriter) SamplesWritten() int64 { return w.written }
