package segmenter

// Preset names one of the five sensitivity levels spec §4.5 requires,
// ordered from quickest-to-trigger to slowest-to-trigger.
type Preset int

const (
	VerySensitive Preset = iota
	Sensitive
	Balanced
	Conservative
	VeryConservative
)

func (p Preset) String() string {
	switch p {
	case VerySensitive:
		return "very_sensitive"
	case Sensitive:
		return "sensitive"
	case Balanced:
		return "balanced"
	case Conservative:
		return "conservative"
	case VeryConservative:
		return "very_conservative"
	default:
		return "unknown"
	}
}

// ParsePreset maps the config surface's vad_preset string (spec §6) to a
// Preset. Unrecognized values fall back to Balanced.
func ParsePreset(name string) Preset {
	switch name {
	case "very_sensitive":
		return VerySensitive
	case "sensitive":
		return Sensitive
	case "conservative":
		return Conservative
	case "very_conservative":
		return VeryConservative
	default:
		return Balanced
	}
}

// PresetParams is the (speech_threshold, min_speech_frames,
// min_silence_frames) triple a preset resolves to, per spec §4.5.
type PresetParams struct {
	SpeechThreshold  float64
	MinSpeechFrames  int
	MinSilenceFrames int
}

// PresetParamsFor resolves a Preset to concrete parameters. Lower
// thresholds and shorter hysteresis windows trigger on quieter, briefer
// speech at the cost of more false starts from background noise; higher
// thresholds and longer windows trade responsiveness for precision.
func PresetParamsFor(p Preset) PresetParams {
	switch p {
	case VerySensitive:
		return PresetParams{SpeechThreshold: 0.2, MinSpeechFrames: 2, MinSilenceFrames: 4}
	case Sensitive:
		return PresetParams{SpeechThreshold: 0.35, MinSpeechFrames: 2, MinSilenceFrames: 5}
	case Conservative:
		return PresetParams{SpeechThreshold: 0.65, MinSpeechFrames: 4, MinSilenceFrames: 6}
	case VeryConservative:
		return PresetParams{SpeechThreshold: 0.8, MinSpeechFrames: 5, MinSilenceFrames: 8}
	case Balanced:
		fallthrough
	default:
		return PresetParams{SpeechThreshold: 0.5, MinSpeechFrames: 3, MinSilenceFrames: 5}
	}
}
