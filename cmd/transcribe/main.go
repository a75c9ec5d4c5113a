// Command transcribe is the minimal single-file ASR front-end CLI: decode,
// transcribe, format. It exercises C6 directly, without C2-C5's DSP/VAD
// pipeline, for quick model smoke-testing against an already-clean
// recording. Uses the stdlib flag package rather than kong, per this
// module's "simple core CLI" ambient-stack convention; cmd/voxengine is the
// full kong-based batch/live entrypoint.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/naozine/voxengine/internal/asr"
)

func main() {
	var (
		inputFile  = flag.String("i", "", "Input audio file")
		outputFile = flag.String("o", "", "Output file (default: stdout)")
		format     = flag.String("format", "text", "Output format: text, srt, vtt")
		modelDir   = flag.String("model", "", "Model directory path")
		numThreads = flag.Int("threads", 2, "Number of threads for inference")
		language   = flag.String("language", "auto", "Language hint (Whisper models only)")
		translate  = flag.Bool("translate", false, "Translate to English (Whisper models only)")
		modelSize  = flag.String("model-size", "", "Preferred Whisper model size (e.g. large-v3)")
		verbose    = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i <file> -model <dir> [options]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inputFile == "" || *modelDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -i and -model are required")
		flag.Usage()
		os.Exit(1)
	}
	if _, err := os.Stat(*inputFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: input file not found: %s\n", *inputFile)
		os.Exit(1)
	}
	switch *format {
	case "text", "srt", "vtt":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format %q (must be text, srt, or vtt)\n", *format)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Loading model from: %s\n", *modelDir)
	}
	config, err := asr.NewConfig(*modelDir, *numThreads, *language, *translate, *modelSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load model config: %v\n", err)
		os.Exit(1)
	}

	recognizer := asr.New()
	if err := recognizer.Init(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize recognizer: %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	if *verbose {
		fmt.Fprintf(os.Stderr, "Transcribing: %s\n", *inputFile)
	}
	segments, err := recognizer.TranscribeFile(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: transcription failed: %v\n", err)
		os.Exit(1)
	}

	var output string
	switch *format {
	case "srt":
		output = asr.FormatSRT(segments)
	case "vtt":
		output = asr.FormatVTT(segments)
	default:
		output = asr.FormatPlain(segments)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write output file: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Output written to: %s\n", *outputFile)
		}
		return
	}
	fmt.Println(output)
}
