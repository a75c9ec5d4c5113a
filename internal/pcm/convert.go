// Package pcm implements the sample-format and sample-rate conversions the
// rest of the pipeline shares: int16/float conversion, channel downmix, and
// linear-interpolation resampling. Functions here hold no state of their
// own; callers own and grow their own scratch buffers.
package pcm

import "math"

// Int16ToFloat converts interleaved signed 16-bit samples to floats in
// [-1.0, 1.0). dst must be at least len(src) long; only dst[:len(src)] is
// written.
func Int16ToFloat(dst []float32, src []int16) {
	for i, s := range src {
		dst[i] = float32(s) / 32768.0
	}
}

// FloatToInt16 converts floats to saturating, truncated int16 samples. Values
// are clamped to [-1.0, 1.0] before scaling by 32767.0; the asymmetric scale
// keeps round-trip error within one LSB.
func FloatToInt16(dst []int16, src []float32) {
	for i, s := range src {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		dst[i] = int16(s * 32767.0)
	}
}

// DownmixStereoToMono averages left/right pairs in an interleaved stereo
// buffer into a mono buffer. len(dst) must be len(src)/2.
func DownmixStereoToMono(dst []float32, src []float32) {
	n := len(src) / 2
	for i := 0; i < n; i++ {
		dst[i] = (src[2*i] + src[2*i+1]) / 2.0
	}
}

// DownmixToMono averages an N-channel interleaved frame down to mono.
// channels must be >= 1; when channels == 1 it is a straight copy.
func DownmixToMono(dst []float32, src []float32, channels int) {
	if channels <= 1 {
		copy(dst, src)
		return
	}
	frames := len(src) / channels
	inv := float32(1.0) / float32(channels)
	for f := 0; f < frames; f++ {
		var sum float32
		base := f * channels
		for c := 0; c < channels; c++ {
			sum += src[base+c]
		}
		dst[f] = sum * inv
	}
}

// Resample performs linear-interpolation resampling from rate inRate to
// rate outRate. len(dst) determines the number of output samples produced;
// the caller computes the expected output length from the desired duration.
// No anti-aliasing filter is applied: callers requiring fidelity above
// 0.45*outRate must band-limit upstream.
func Resample(dst []float32, src []float32, inRate, outRate int) {
	if len(src) == 0 || len(dst) == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	ratio := float64(inRate) / float64(outRate)
	last := len(src) - 1
	for i := range dst {
		pos := float64(i) * ratio
		idx := int(math.Floor(pos))
		frac := float32(pos - math.Floor(pos))
		if idx >= last {
			dst[i] = src[last]
			continue
		}
		dst[i] = src[idx]*(1-frac) + src[idx+1]*frac
	}
}

// ResampleLen returns the output sample count that covers the same duration
// as inLen samples at inRate when resampled to outRate.
func ResampleLen(inLen, inRate, outRate int) int {
	if inRate == outRate {
		return inLen
	}
	return int(math.Round(float64(inLen) * float64(outRate) / float64(inRate)))
}
