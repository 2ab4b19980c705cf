package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/clonetts/internal/models"
	"github.com/nikhilbhutani/clonetts/internal/tts"
)

// Job is one resolved synthesis invocation. Exactly one of Text and InputPath
// is normally set; when both are, Text wins and InputPath is only validated.
type Job struct {
	ID         uuid.UUID `json:"id"` // stable across retries of a queued job
	Text       string    `json:"text,omitempty"`
	InputPath  string    `json:"input_path,omitempty"`
	SpeakerWAV string    `json:"speaker_wav"`
	Language   string    `json:"language"`
	OutputPath string    `json:"output_path"`
}

// AudioCache stores synthesized audio by content key.
type AudioCache interface {
	GetAudio(ctx context.Context, key string) ([]byte, bool, error)
	SetAudio(ctx context.Context, key string, audio []byte) error
}

// Recorder persists the outcome of each run.
type Recorder interface {
	Record(ctx context.Context, run models.SynthesisRun) error
}

// Option configures optional Runner collaborators.
type Option func(*Runner)

// WithCache serves repeated requests from c instead of the synthesizer.
func WithCache(c AudioCache) Option { return func(r *Runner) { r.cache = c } }

// WithRecorder records every attempt, successful or not, with rec.
func WithRecorder(rec Recorder) Option { return func(r *Runner) { r.recorder = rec } }

// Runner validates inputs, dispatches to a Synthesizer and persists the audio.
type Runner struct {
	synth    tts.Synthesizer
	cache    AudioCache
	recorder Recorder
}

// NewRunner creates a Runner around synth. Without options it neither caches
// nor records runs.
func NewRunner(synth tts.Synthesizer, opts ...Option) *Runner {
	r := &Runner{synth: synth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backend returns the name of the underlying synthesizer.
func (r *Runner) Backend() string { return r.synth.Name() }

// Run executes job. Every failure is a *tts.Error; on failure the output path
// is left untouched.
func (r *Runner) Run(ctx context.Context, job Job) (*tts.SynthesisResult, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	start := time.Now()

	res, textLen, err := r.run(ctx, job)
	elapsed := time.Since(start)
	if res != nil {
		res.Duration = elapsed
	}

	r.record(ctx, job, res, textLen, err, elapsed)
	return res, err
}

func (r *Runner) run(ctx context.Context, job Job) (*tts.SynthesisResult, int, error) {
	if job.OutputPath == "" {
		return nil, 0, tts.NewError(tts.KindInvalidInput, "Pass -o/--output.", nil, "output path is empty")
	}

	var checks []FileCheck
	if job.InputPath != "" {
		checks = append(checks, FileCheck{Path: job.InputPath, Label: "Input text file", Knob: InputKnob})
	}
	checks = append(checks, FileCheck{Path: job.SpeakerWAV, Label: "Speaker WAV file", Knob: SpeakerKnob})
	if err := ValidateFiles(checks...); err != nil {
		return nil, 0, err
	}

	text, source := job.Text, "text"
	if text == "" && job.InputPath != "" {
		var err error
		if text, err = LoadText(job.InputPath); err != nil {
			return nil, 0, err
		}
		source = fmt.Sprintf("file '%s'", job.InputPath)
	}
	if err := ValidateText(text, source); err != nil {
		return nil, 0, err
	}

	req := tts.SynthesisRequest{
		Text:       text,
		SpeakerWAV: job.SpeakerWAV,
		Language:   job.Language,
		OutputPath: job.OutputPath,
	}

	key := r.cacheKey(req)
	if audio, ok := r.lookup(ctx, key); ok {
		if err := WriteAudio(job.OutputPath, audio); err != nil {
			return nil, len(text), err
		}
		return &tts.SynthesisResult{
			Audio:       audio,
			ContentType: "audio/wav",
			Backend:     r.synth.Name(),
			OutputPath:  job.OutputPath,
			Cached:      true,
		}, len(text), nil
	}

	res, err := r.synth.Synthesize(ctx, req)
	if err != nil {
		return nil, len(text), err
	}
	if err := WriteAudio(job.OutputPath, res.Audio); err != nil {
		return nil, len(text), err
	}
	res.OutputPath = job.OutputPath

	r.store(ctx, key, res.Audio)
	return res, len(text), nil
}

// cacheKey hashes everything that determines the audio, including the
// reference audio contents so a replaced speaker file misses.
func (r *Runner) cacheKey(req tts.SynthesisRequest) string {
	if r.cache == nil {
		return ""
	}
	speaker, err := os.ReadFile(req.SpeakerWAV)
	if err != nil {
		slog.Warn("cache disabled for run, cannot hash reference audio", "error", err)
		return ""
	}
	speakerSum := sha256.Sum256(speaker)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%x", r.synth.Name(), req.Language, req.Text, speakerSum)
	return "clonetts:audio:" + hex.EncodeToString(h.Sum(nil))
}

func (r *Runner) lookup(ctx context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}
	audio, ok, err := r.cache.GetAudio(ctx, key)
	if err != nil {
		slog.Warn("audio cache lookup failed", "error", err)
		return nil, false
	}
	if ok {
		slog.Info("audio cache hit", "key", key, "bytes", len(audio))
	}
	return audio, ok
}

func (r *Runner) store(ctx context.Context, key string, audio []byte) {
	if key == "" {
		return
	}
	if err := r.cache.SetAudio(ctx, key, audio); err != nil {
		slog.Warn("audio cache store failed", "error", err)
	}
}

func (r *Runner) record(ctx context.Context, job Job, res *tts.SynthesisResult, textLen int, runErr error, elapsed time.Duration) {
	if r.recorder == nil {
		return
	}

	run := models.SynthesisRun{
		ID:         uuid.New(),
		JobID:      job.ID,
		Backend:    r.synth.Name(),
		Language:   job.Language,
		SpeakerWAV: job.SpeakerWAV,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
		TextLength: textLen,
		Status:     models.RunStatusSucceeded,
		LatencyMs:  int(elapsed.Milliseconds()),
	}
	if res != nil {
		run.AudioBytes = len(res.Audio)
		run.Cached = res.Cached
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.ErrorKind = string(tts.KindOf(runErr))
		run.ErrorMessage = runErr.Error()
	}

	if err := r.recorder.Record(ctx, run); err != nil {
		slog.Warn("failed to record synthesis run", "run_id", run.ID, "job_id", job.ID, "error", err)
	}
}
