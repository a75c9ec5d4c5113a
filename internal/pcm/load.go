package pcm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the input container/codec extensions
// Load-and-convert accepts. Matches the set the teacher's ffmpeg-based
// converter recognizes.
var SupportedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
	".webm": true,
	".opus": true,
}

// targetSampleRate is the ASR front-end's required input rate (C6 §4.6).
const targetSampleRate = 16000

// checkSupportedExtension rejects unrecognized container/codec extensions
// before ever invoking ffmpeg, matching the teacher's IsSupportedFormat gate
// (spec §4.1: "fails on unrecognized file extensions").
func checkSupportedExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !SupportedExtensions[ext] {
		return fmt.Errorf("pcm: unsupported file extension %q for %s", ext, path)
	}
	return nil
}

// LoadAndConvert decodes path via an external container/codec decoder
// (ffmpeg) and returns float mono samples at 16 kHz, ready for the ASR
// front-end. It fails on unrecognized extensions and unreadable files.
//
// Decoding, downmix, and resampling to 16 kHz are delegated to ffmpeg in a
// single invocation (matching the teacher's converter.go, which always
// shells out rather than decoding containers in-process); this function
// therefore does not itself need C1's DownmixToMono/Resample helpers, which
// remain available for callers operating on already-decoded raw PCM (e.g.
// the capture-time pipeline).
func LoadAndConvert(path string) ([]float32, error) {
	if err := checkSupportedExtension(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pcm: load %q: %w", path, err)
	}

	cmd := exec.Command("ffmpeg",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", targetSampleRate),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pcm: stdout pipe for %q: %w", path, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("pcm: starting decoder for %q: %w", path, err)
	}

	raw, readErr := io.ReadAll(bufio.NewReader(stdout))
	waitErr := cmd.Wait()
	if waitErr != nil {
		return nil, fmt.Errorf("pcm: decoding %q: %w", path, waitErr)
	}
	if readErr != nil {
		return nil, fmt.Errorf("pcm: reading decoded audio for %q: %w", path, readErr)
	}

	samples := BytesToInt16(raw)
	floats := make([]float32, len(samples))
	Int16ToFloat(floats, samples)
	return floats, nil
}

// LoadAtRate decodes path the same way LoadAndConvert does, but targets an
// arbitrary (rate, channels) pair instead of the ASR front-end's fixed
// 16kHz mono. Callers that want to run a file through the full C2-C5
// pipeline (HPF, normalizer, suppressor, segmenter) before transcription
// use this instead of LoadAndConvert, since the suppressor only accepts a
// fixed set of rates (spec §4.4) that does not include 16kHz.
func LoadAtRate(path string, rate, channels int) ([]int16, error) {
	if err := checkSupportedExtension(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pcm: load %q: %w", path, err)
	}

	cmd := exec.Command("ffmpeg",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", rate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "error",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pcm: stdout pipe for %q: %w", path, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("pcm: starting decoder for %q: %w", path, err)
	}

	raw, readErr := io.ReadAll(bufio.NewReader(stdout))
	waitErr := cmd.Wait()
	if waitErr != nil {
		return nil, fmt.Errorf("pcm: decoding %q: %w", path, waitErr)
	}
	if readErr != nil {
		return nil, fmt.Errorf("pcm: reading decoded audio for %q: %w", path, readErr)
	}

	return BytesToInt16(raw), nil
}

// BytesToInt16 reinterprets a little-endian byte buffer (as produced by
// ffmpeg's s16le output) as signed 16-bit samples.
func BytesToInt16(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return out
}
