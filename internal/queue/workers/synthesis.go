package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/clonetts/internal/queue"
	"github.com/nikhilbhutani/clonetts/internal/tts"
	"github.com/nikhilbhutani/clonetts/internal/webhook"
	"github.com/nikhilbhutani/clonetts/internal/workflow"
)

type JobRunner interface {
	Run(ctx context.Context, job workflow.Job) (*tts.SynthesisResult, error)
}

// Notifier is told about every finished job.
type Notifier interface {
	Notify(ctx context.Context, ev webhook.Event) error
}

type SynthesisWorker struct {
	runner   JobRunner
	notifier Notifier
}

func NewSynthesisWorker(runner JobRunner) *SynthesisWorker {
	return &SynthesisWorker{runner: runner}
}

// WithNotifier enables job completion webhooks.
func (w *SynthesisWorker) WithNotifier(n Notifier) *SynthesisWorker {
	w.notifier = n
	return w
}

func (w *SynthesisWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.SynthesisRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job ID: %v: %w", err, asynq.SkipRetry)
	}

	slog.Info("running synthesis job", "job_id", jobID, "output_path", payload.OutputPath)

	res, err := w.runner.Run(ctx, workflow.Job{
		ID:         jobID,
		Text:       payload.Text,
		InputPath:  payload.InputPath,
		SpeakerWAV: payload.SpeakerWAV,
		Language:   payload.Language,
		OutputPath: payload.OutputPath,
	})
	if err != nil {
		kind := tts.KindOf(err)
		slog.Error("synthesis job failed", "job_id", jobID, "kind", kind, "error", err)
		w.notify(ctx, webhook.Event{
			Event:      webhook.EventSynthesisFailed,
			JobID:      payload.JobID,
			OutputPath: payload.OutputPath,
			ErrorKind:  string(kind),
			Error:      err.Error(),
		})
		// A missing file or bad input fails the same way on every attempt.
		if kind == tts.KindFileNotFound || kind == tts.KindInvalidInput {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	slog.Info("synthesis job completed", "job_id", jobID, "output_path", res.OutputPath, "bytes", len(res.Audio), "cached", res.Cached)
	w.notify(ctx, webhook.Event{
		Event:      webhook.EventSynthesisCompleted,
		JobID:      payload.JobID,
		OutputPath: res.OutputPath,
		Backend:    res.Backend,
		AudioBytes: len(res.Audio),
		Cached:     res.Cached,
	})
	return nil
}

func (w *SynthesisWorker) notify(ctx context.Context, ev webhook.Event) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.Notify(ctx, ev); err != nil {
		slog.Warn("job webhook not delivered", "job_id", ev.JobID, "event", ev.Event, "error", err)
	}
}
