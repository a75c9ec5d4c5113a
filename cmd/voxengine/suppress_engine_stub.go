//go:build !onnxruntime

package main

import (
	"github.com/naozine/voxengine/internal/config"
	"github.com/naozine/voxengine/internal/suppress"
)

// defaultSuppressEngine picks the neural-suppressor engine backing C4 for a
// build without ONNX Runtime linked in: a deterministic stub that still
// produces a speech/silence VAD signal (0 or suppress.StubConfidence) for
// the segmenter to act on, rather than the always-passthrough NullEngine
// (whose VAD is always 0, which would leave the segmenter unable to detect
// speech). Only presets whose speech threshold is at or below
// StubConfidence count the stub's speech phases as speech. Returns nil when
// suppression is disabled.
func defaultSuppressEngine(cfg config.Config) suppress.Engine {
	if !cfg.EnableSuppress {
		return nil
	}
	return suppress.NewStubEngine(cfg.Rate / 100)
}
