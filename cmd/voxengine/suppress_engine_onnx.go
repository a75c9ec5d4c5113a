//go:build onnxruntime

package main

import (
	"log"

	"github.com/naozine/voxengine/internal/config"
	"github.com/naozine/voxengine/internal/suppress"
)

// defaultSuppressEngine picks the neural-suppressor engine backing C4 for an
// onnxruntime-linked build: Silero VAD via suppress.ONNXEngine when a model
// path is configured, degrading to the deterministic stub (spec §7 kind 4:
// corrupt processor state passthrough) when no model path is set or the
// ONNX session fails to load, so the segmenter still receives a real
// speech/silence signal rather than silently falling back to the
// always-passthrough NullEngine.
func defaultSuppressEngine(cfg config.Config) suppress.Engine {
	if !cfg.EnableSuppress {
		return nil
	}
	if cfg.SuppressModelPath == "" {
		log.Printf("voxengine: onnxruntime build but no --suppress-model given, using stub VAD engine")
		return suppress.NewStubEngine(cfg.Rate / 100)
	}
	engine, err := suppress.NewONNXEngine(cfg.SuppressModelPath, cfg.Rate, cfg.SuppressThreshold)
	if err != nil {
		log.Printf("voxengine: loading onnx suppressor %s: %v, falling back to stub VAD engine", cfg.SuppressModelPath, err)
		return suppress.NewStubEngine(cfg.Rate / 100)
	}
	return engine
}
