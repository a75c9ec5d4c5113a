package dsp

import (
	"fmt"
	"math"
)

// DefaultTargetLevel is the default RMS target the gain normalizer drives
// toward, on the [-1, 1] float scale.
const DefaultTargetLevel = 0.3

const (
	rmsSilenceEpsilon = 1e-4
	gainMin           = 0.1
	gainMax           = 10.0
	attackSeconds     = 0.1
	releaseSeconds    = 0.3
)

// GainNormalizer tracks a smoothed gain driving the short-term block RMS
// toward a configured target level. Implements chain.Processor.
type GainNormalizer struct {
	targetLevel float64

	sampleRate int
	channels   int
	gain       float64
}

// NewGainNormalizer returns a normalizer targeting the given RMS level in
// (0, 1]. A non-positive target falls back to DefaultTargetLevel.
func NewGainNormalizer(targetLevel float64) *GainNormalizer {
	if targetLevel <= 0 {
		targetLevel = DefaultTargetLevel
	}
	return &GainNormalizer{targetLevel: targetLevel}
}

func (n *GainNormalizer) Name() string { return "normalize" }

func (n *GainNormalizer) Initialize(sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("dsp: normalizer: invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("dsp: normalizer: invalid channel count %d", channels)
	}
	n.sampleRate = sampleRate
	n.channels = channels
	n.gain = 1.0
	return nil
}

// Process computes the block's RMS, smooths the gain toward the instantaneous
// desired gain with asymmetric attack/release time constants, and applies
// the smoothed gain to every sample with saturation.
func (n *GainNormalizer) Process(samples []int16) {
	if len(samples) == 0 || n.sampleRate == 0 {
		return
	}

	var sumSquares float64
	for _, s := range samples {
		x := float64(s) / 32768.0
		sumSquares += x * x
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))

	if rms > rmsSilenceEpsilon {
		desired := clamp(n.targetLevel/rms, gainMin, gainMax)

		tau := releaseSeconds
		if desired < n.gain {
			tau = attackSeconds
		}
		frames := len(samples) / n.channels
		blockDuration := float64(frames) / float64(n.sampleRate)
		k := 1 - math.Exp(-blockDuration/tau)
		n.gain += k * (desired - n.gain)
	}

	for i, s := range samples {
		samples[i] = saturateInt16(float64(s) * n.gain)
	}
}

// Reset restores unity gain.
func (n *GainNormalizer) Reset() {
	n.gain = 1.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
