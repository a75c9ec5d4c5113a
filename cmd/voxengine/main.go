// Command voxengine is the batch/live entrypoint wiring C1-C6 into one
// invocation: capture or file decode, the C2-C5 pipeline, the C6 ASR
// front-end, and subtitle emission. Grounded on linuxmatters-jivetalking's
// cmd/jivetalking/main.go: a kong CLI struct, a background goroutine doing
// the real work while a Bubbletea program renders its progress.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/naozine/voxengine/internal/asr"
	"github.com/naozine/voxengine/internal/capture"
	"github.com/naozine/voxengine/internal/cliui"
	"github.com/naozine/voxengine/internal/config"
	"github.com/naozine/voxengine/internal/container"
	"github.com/naozine/voxengine/internal/pcm"
	"github.com/naozine/voxengine/internal/pipeline"
	"github.com/naozine/voxengine/internal/storage"
	"github.com/naozine/voxengine/internal/ui"
	"github.com/naozine/voxengine/internal/worker"
)

// version is set via ldflags at build time.
var version = "dev"

// CLI defines voxengine's command-line surface (spec §6/§11.5).
type CLI struct {
	Version bool `short:"v" help:"Show version information"`

	Record   bool          `help:"Capture from the microphone instead of processing input files"`
	Duration time.Duration `help:"Recording duration for --record (0 = until interrupted)" default:"0"`
	Device   int           `help:"Input device id (-1 selects the system default)" default:"-1"`

	Model     string `help:"Path to the ASR model directory"`
	Language  string `help:"ASR language hint (Whisper models only)" default:"auto"`
	Translate bool   `help:"Translate to English instead of transcribing (Whisper models only)"`
	ModelSize string `name:"model-size" help:"Whisper model size to prefer when auto-detecting (e.g. large-v3)"`
	Threads   int    `help:"ASR kernel thread count" default:"2"`

	VADPreset  string `name:"vad-preset" help:"Segmenter sensitivity preset" default:"balanced"`
	NoSuppress bool   `name:"no-suppress" help:"Disable the neural suppressor (every block is then treated as speech)"`

	SuppressModel     string  `name:"suppress-model" help:"Path to a Silero VAD ONNX file (onnxruntime builds only; falls back to a stub engine when unset)"`
	SuppressThreshold float64 `name:"suppress-threshold" help:"Threshold passed to the ONNX suppressor, which stores it without applying it (the --vad-preset threshold decides speech)" default:"0.5"`

	Format    string `help:"Subtitle output format" enum:"plain,srt,vtt" default:"plain"`
	OutputDir string `name:"output-dir" help:"Directory for transcripts and staged segments" default:"."`
	DBPath    string `name:"db" help:"Path to the job-tracking SQLite database" default:"voxengine.db"`

	Files []string `arg:"" name:"files" help:"Audio files to transcribe" type:"existingfile" optional:""`
}

func main() {
	_ = godotenv.Load()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("voxengine"),
		kong.Description("Low-latency offline voice processing engine"),
		kong.UsageOnError(),
	)

	if cli.Version {
		cliui.PrintVersion(version)
		os.Exit(0)
	}
	if !cli.Record && len(cli.Files) == 0 {
		cliui.PrintError("no input files specified (or pass --record to capture from the microphone)")
		kctx.PrintUsage(false)
		os.Exit(1)
	}
	if cli.Model == "" {
		cliui.PrintError("--model is required")
		kctx.PrintUsage(false)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	cfg.DeviceID = cli.Device
	cfg.VADPreset = cli.VADPreset
	cfg.EnableSuppress = !cli.NoSuppress
	cfg.SuppressModelPath = cli.SuppressModel
	cfg.SuppressThreshold = cli.SuppressThreshold
	cfg.ASRModelPath = cli.Model
	cfg.ASRLanguage = cli.Language
	cfg.ASRThreads = cli.Threads
	cfg.ASRTranslate = cli.Translate
	cfg.ASRModelSize = cli.ModelSize
	cfg.OutputFormat = cli.Format
	cfg.OutputDir = cli.OutputDir
	cfg.DBPath = cli.DBPath

	if err := cfg.Validate(); err != nil {
		cliui.PrintError(err.Error())
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		cliui.PrintError(fmt.Sprintf("creating output directory: %v", err))
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		cliui.PrintError(err.Error())
		os.Exit(1)
	}
	defer db.Close()
	jobRepo := storage.NewJobRepository(db)

	asrConfig, err := asr.NewConfig(cfg.ASRModelPath, cfg.ASRThreads, cfg.ASRLanguage, cfg.ASRTranslate, cfg.ASRModelSize)
	if err != nil {
		cliui.PrintError(err.Error())
		os.Exit(1)
	}
	recognizer := asr.New()
	if err := recognizer.Init(asrConfig); err != nil {
		cliui.PrintError(err.Error())
		os.Exit(1)
	}
	defer recognizer.Close()

	w := worker.New(jobRepo, recognizer)
	results := newResultRouter()
	w.OnResult(results.route)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	names := cli.Files
	if cli.Record {
		names = []string{"microphone"}
	}
	model := ui.NewModel(names)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		var runErr error
		if cli.Record {
			runErr = runRecord(ctx, cfg, w, results, program, cli.Duration)
		} else {
			runErr = runFiles(ctx, cfg, w, results, program, cli.Files)
		}
		if runErr != nil {
			cliui.PrintError(runErr.Error())
		}
		program.Send(ui.AllCompleteMsg{})
	}()

	if _, err := program.Run(); err != nil {
		cliui.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// resultRouter fans worker.Results out to whichever goroutine is currently
// waiting on a given job id, since runFiles/runRecord submit many jobs and
// must each only observe the ones they personally enqueued.
type resultRouter struct {
	in      chan worker.Result
	waiters map[int64]chan worker.Result
	add     chan waiterReq
}

type waiterReq struct {
	id int64
	ch chan worker.Result
}

func newResultRouter() *resultRouter {
	r := &resultRouter{
		in:      make(chan worker.Result, 64),
		waiters: make(map[int64]chan worker.Result),
		add:     make(chan waiterReq),
	}
	go r.loop()
	return r
}

func (r *resultRouter) loop() {
	for {
		select {
		case req := <-r.add:
			r.waiters[req.id] = req.ch
		case res := <-r.in:
			if ch, ok := r.waiters[res.Job.ID]; ok {
				ch <- res
				delete(r.waiters, res.Job.ID)
			}
		}
	}
}

func (r *resultRouter) route(res worker.Result) {
	r.in <- res
}

// await registers a wait for jobID and blocks until its result arrives.
func (r *resultRouter) await(jobID int64) worker.Result {
	ch := make(chan worker.Result, 1)
	r.add <- waiterReq{id: jobID, ch: ch}
	return <-ch
}

// segmentJob is one speech segment (C5 output) staged to disk and pending
// transcription.
type segmentJob struct {
	samples []int16
	startMs int64
}

// runFiles decodes each input file through the full C2-C5 pipeline at
// cfg.Rate, submits every detected speech segment to the worker, and writes
// one subtitle file per input once all of its segments have transcribed.
func runFiles(ctx context.Context, cfg config.Config, w *worker.Worker, results *resultRouter, program *tea.Program, files []string) error {
	for i, path := range files {
		program.Send(ui.ProgressMsg{Index: i, Stage: ui.StageCapturing, Progress: 0})

		segments, err := decodeAndSegment(cfg, path)
		if err != nil {
			program.Send(ui.FileCompleteMsg{Index: i, Err: err})
			continue
		}

		program.Send(ui.ProgressMsg{Index: i, Stage: ui.StageTranscribing, Progress: 0.3, Segments: len(segments)})

		segDir := filepath.Join(cfg.OutputDir, "segments")
		if err := os.MkdirAll(segDir, 0755); err != nil {
			program.Send(ui.FileCompleteMsg{Index: i, Err: err})
			continue
		}

		var transcript []asr.Segment
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for si, seg := range segments {
			segPath := filepath.Join(segDir, fmt.Sprintf("%s_%03d.wav", base, si))
			if err := stageSegment(segPath, seg.samples, cfg.Rate, cfg.Channels); err != nil {
				program.Send(ui.FileCompleteMsg{Index: i, Err: err})
				continue
			}

			jobID, err := w.Submit(ctx, segPath, worker.Job{
				Samples:  seg.samples,
				Rate:     cfg.Rate,
				Channels: cfg.Channels,
				StartMs:  seg.startMs,
			}, storage.JobPriorityBatch)
			if err != nil {
				program.Send(ui.FileCompleteMsg{Index: i, Err: err})
				continue
			}

			res := results.await(jobID)
			if res.Err != nil {
				continue
			}
			for _, s := range res.Segments {
				s.StartMs += int(seg.startMs)
				s.EndMs += int(seg.startMs)
				transcript = append(transcript, s)
			}
			program.Send(ui.ProgressMsg{Index: i, Stage: ui.StageTranscribing, Progress: 0.3 + 0.6*float64(si+1)/float64(len(segments)), Segments: len(segments)})
		}

		program.Send(ui.ProgressMsg{Index: i, Stage: ui.StageWriting, Progress: 0.95, Segments: len(segments)})
		if err := writeTranscript(cfg, base, transcript); err != nil {
			program.Send(ui.FileCompleteMsg{Index: i, Err: err})
			continue
		}
		program.Send(ui.FileCompleteMsg{Index: i})
	}
	return nil
}

// runRecord captures from the microphone for duration (or until ctx is
// cancelled, when duration is 0) and transcribes the speech segments the
// pipeline detects as they complete.
func runRecord(ctx context.Context, cfg config.Config, w *worker.Worker, results *resultRouter, program *tea.Program, duration time.Duration) error {
	if err := capture.Initialize(); err != nil {
		return err
	}
	defer capture.Terminate()

	dev, err := capture.Open(cfg.Rate, cfg.Channels, cfg.FramesPerBuffer, cfg.DeviceID)
	if err != nil {
		return err
	}
	defer dev.Close()

	pl, err := pipeline.New(cfg, defaultSuppressEngine(cfg))
	if err != nil {
		return err
	}
	if err := pl.Initialize(cfg.Rate, cfg.Channels); err != nil {
		return err
	}

	var elapsedSamples int64
	var jobIDs []int64
	segDir := filepath.Join(cfg.OutputDir, "segments")
	if err := os.MkdirAll(segDir, 0755); err != nil {
		return err
	}

	pl.OnSegment(func(samples []int16, rate, channels int) {
		startMs := (elapsedSamples - int64(len(samples))) * 1000 / int64(rate*channels)
		segPath := filepath.Join(segDir, fmt.Sprintf("live_%d.wav", len(jobIDs)))
		if err := stageSegment(segPath, samples, rate, channels); err != nil {
			return
		}
		id, err := w.Submit(ctx, segPath, worker.Job{Samples: samples, Rate: rate, Channels: channels, StartMs: startMs}, 0)
		if err == nil {
			jobIDs = append(jobIDs, id)
		}
	})

	if err := dev.Start(func(samples []int16) {
		elapsedSamples += int64(len(samples))
		pl.ProcessBlock(samples)
	}); err != nil {
		return err
	}

	if duration > 0 {
		select {
		case <-time.After(duration):
		case <-ctx.Done():
		}
	} else {
		<-ctx.Done()
	}

	if err := dev.Stop(); err != nil {
		return err
	}
	pl.Flush()

	var transcript []asr.Segment
	for _, id := range jobIDs {
		res := results.await(id)
		if res.Err != nil {
			continue
		}
		transcript = append(transcript, res.Segments...)
	}
	program.Send(ui.ProgressMsg{Index: 0, Stage: ui.StageWriting, Progress: 0.95, Segments: len(jobIDs)})
	if err := writeTranscript(cfg, "recording", transcript); err != nil {
		program.Send(ui.FileCompleteMsg{Index: 0, Err: err})
		return err
	}
	program.Send(ui.FileCompleteMsg{Index: 0})
	return nil
}

// decodeAndSegment decodes path at cfg.Rate/cfg.Channels and runs it through
// a fresh C2-C5 pipeline in FramesPerBuffer-sized chunks, emulating the
// streaming capture path exactly so the same segmenter/suppressor behavior
// applies to recorded files.
func decodeAndSegment(cfg config.Config, path string) ([]segmentJob, error) {
	samples, err := pcm.LoadAtRate(path, cfg.Rate, cfg.Channels)
	if err != nil {
		return nil, err
	}

	pl, err := pipeline.New(cfg, defaultSuppressEngine(cfg))
	if err != nil {
		return nil, err
	}
	if err := pl.Initialize(cfg.Rate, cfg.Channels); err != nil {
		return nil, err
	}

	var out []segmentJob
	var elapsed int64
	pl.OnSegment(func(seg []int16, rate, channels int) {
		out = append(out, segmentJob{samples: seg, startMs: (elapsed - int64(len(seg))) * 1000 / int64(rate*channels)})
	})

	blockLen := cfg.FramesPerBuffer * cfg.Channels
	for off := 0; off < len(samples); off += blockLen {
		end := off + blockLen
		if end > len(samples) {
			end = len(samples)
		}
		elapsed += int64(end - off)
		pl.ProcessBlock(samples[off:end])
	}
	pl.Flush()

	return out, nil
}

func stageSegment(path string, samples []int16, rate, channels int) error {
	pw, err := container.OpenPCMWriter(path, rate, channels)
	if err != nil {
		return err
	}
	if _, err := pw.WriteSamples(samples); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}

func writeTranscript(cfg config.Config, base string, segments []asr.Segment) error {
	var body, ext string
	switch cfg.OutputFormat {
	case "srt":
		body, ext = asr.FormatSRT(segments), "srt"
	case "vtt":
		body, ext = asr.FormatVTT(segments), "vtt"
	default:
		body, ext = asr.FormatPlain(segments), "txt"
	}
	outPath := filepath.Join(cfg.OutputDir, base+"."+ext)
	return os.WriteFile(outPath, []byte(body), 0644)
}

