package asr

import (
	"fmt"
	"os"
	"path/filepath"
)

// ModelKind distinguishes the two sherpa-onnx offline model families the
// configuration surface's asr_model_size option selects between.
type ModelKind int

const (
	// KindTransducer is an encoder/decoder/joiner transducer model (e.g.
	// ReazonSpeech), selected when a joiner file is present.
	KindTransducer ModelKind = iota
	// KindWhisper is an encoder/decoder Whisper-family model with a
	// language/task pair instead of a joiner.
	KindWhisper
)

// Config holds the ASR kernel configuration resolved from a model
// directory and the config surface's asr_* options (spec §6).
type Config struct {
	ModelPath string
	Kind      ModelKind

	EncoderPath string
	DecoderPath string
	JoinerPath  string
	TokensPath  string

	NumThreads int
	SampleRate int

	Language  string // asr_language; ignored for KindTransducer
	Translate bool   // asr_translate; ignored for KindTransducer
}

// whisperCandidates builds the filename search order for one Whisper
// encoder/decoder role, narrowed to modelSize's prefix when non-empty.
func whisperCandidates(modelSize, role string) []string {
	sizes := []string{"large-v3", "large-v2", "turbo"}
	if modelSize != "" {
		sizes = []string{modelSize}
	}
	var out []string
	for _, size := range sizes {
		out = append(out, fmt.Sprintf("%s-%s.int8.onnx", size, role), fmt.Sprintf("%s-%s.onnx", size, role))
	}
	return append(out, role+".int8.onnx", role+".onnx")
}

// NewConfig auto-detects a model in modelDir: a transducer (encoder +
// decoder + joiner) is preferred when a joiner file is present; otherwise
// the directory is searched for a Whisper-family encoder/decoder pair
// matching asr_model_size (or any known size when empty).
func NewConfig(modelDir string, numThreads int, language string, translate bool, modelSize string) (*Config, error) {
	if numThreads <= 0 {
		numThreads = 2
	}

	cfg := &Config{
		ModelPath:  modelDir,
		NumThreads: numThreads,
		SampleRate: targetSampleRate,
		Language:   language,
		Translate:  translate,
	}

	joinerPath := findModelFile(modelDir, []string{
		"joiner-epoch-99-avg-1.int8.onnx", "joiner.int8.onnx",
		"joiner-epoch-99-avg-1.onnx", "joiner.onnx",
	})
	if joinerPath != "" {
		cfg.Kind = KindTransducer
		cfg.JoinerPath = joinerPath
		cfg.EncoderPath = findModelFile(modelDir, []string{
			"encoder-epoch-99-avg-1.int8.onnx", "encoder.int8.onnx",
			"encoder-epoch-99-avg-1.onnx", "encoder.onnx",
		})
		cfg.DecoderPath = findModelFile(modelDir, []string{
			"decoder-epoch-99-avg-1.onnx", "decoder.onnx",
		})
		cfg.TokensPath = findModelFile(modelDir, []string{"tokens.txt"})
		return cfg, cfg.Validate()
	}

	cfg.Kind = KindWhisper
	cfg.EncoderPath = findModelFile(modelDir, whisperCandidates(modelSize, "encoder"))
	cfg.DecoderPath = findModelFile(modelDir, whisperCandidates(modelSize, "decoder"))
	cfg.TokensPath = findModelFile(modelDir, []string{"tokens.txt", "large-v3-tokens.txt", "large-v2-tokens.txt"})
	return cfg, cfg.Validate()
}

// Validate checks that every model file the selected Kind requires exists.
func (c *Config) Validate() error {
	required := map[string]string{
		"encoder": c.EncoderPath,
		"decoder": c.DecoderPath,
		"tokens":  c.TokensPath,
	}
	if c.Kind == KindTransducer {
		required["joiner"] = c.JoinerPath
	}
	for name, path := range required {
		if path == "" {
			return fmt.Errorf("asr: %s model not found under %s", name, c.ModelPath)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("asr: %s file not found: %s", name, path)
		}
	}
	return nil
}

func findModelFile(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
