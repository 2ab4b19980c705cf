package workers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/clonetts/internal/models"
	"github.com/nikhilbhutani/clonetts/internal/queue"
	"github.com/nikhilbhutani/clonetts/internal/tts"
	"github.com/nikhilbhutani/clonetts/internal/webhook"
	"github.com/nikhilbhutani/clonetts/internal/workflow"
)

type fakeRunner struct {
	jobs []workflow.Job
	err  error
}

func (f *fakeRunner) Run(_ context.Context, job workflow.Job) (*tts.SynthesisResult, error) {
	f.jobs = append(f.jobs, job)
	if f.err != nil {
		return nil, f.err
	}
	return &tts.SynthesisResult{Audio: []byte("RIFF"), OutputPath: job.OutputPath}, nil
}

func newTask(t *testing.T, payload queue.SynthesisRunPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(queue.TypeSynthesisRun, data)
}

func TestSynthesisWorker_ProcessTask(t *testing.T) {
	id := uuid.New()
	runner := &fakeRunner{}
	w := NewSynthesisWorker(runner)

	err := w.ProcessTask(context.Background(), newTask(t, queue.SynthesisRunPayload{
		JobID:      id.String(),
		InputPath:  "/data/article.txt",
		SpeakerWAV: "/data/ref.wav",
		Language:   "it",
		OutputPath: "/data/article.wav",
	}))
	require.NoError(t, err)

	require.Len(t, runner.jobs, 1)
	job := runner.jobs[0]
	assert.Equal(t, id, job.ID)
	assert.Equal(t, "/data/article.txt", job.InputPath)
	assert.Equal(t, "/data/ref.wav", job.SpeakerWAV)
	assert.Equal(t, "it", job.Language)
	assert.Equal(t, "/data/article.wav", job.OutputPath)
}

func TestSynthesisWorker_ProcessTask_BadPayload(t *testing.T) {
	runner := &fakeRunner{}
	w := NewSynthesisWorker(runner)

	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeSynthesisRun, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = w.ProcessTask(context.Background(), newTask(t, queue.SynthesisRunPayload{JobID: "not-a-uuid"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	assert.Empty(t, runner.jobs)
}

func TestSynthesisWorker_ProcessTask_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{"missing file", tts.NewError(tts.KindFileNotFound, "", nil, "Speaker WAV file not found at: /x"), true},
		{"empty text", tts.NewError(tts.KindInvalidInput, "", nil, "input text is empty"), true},
		{"server down", tts.NewError(tts.KindConnection, "", nil, "could not connect"), false},
		{"server error", &tts.Error{Kind: tts.KindHTTPStatus, Message: "status 500", StatusCode: 500}, false},
		{"unclassified", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewSynthesisWorker(&fakeRunner{err: tt.err})
			err := w.ProcessTask(context.Background(), newTask(t, queue.SynthesisRunPayload{JobID: uuid.NewString()}))
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

type fakeNotifier struct {
	events []webhook.Event
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, ev webhook.Event) error {
	f.events = append(f.events, ev)
	return f.err
}

func TestSynthesisWorker_Notifies(t *testing.T) {
	id := uuid.NewString()
	notifier := &fakeNotifier{}
	w := NewSynthesisWorker(&fakeRunner{}).WithNotifier(notifier)

	require.NoError(t, w.ProcessTask(context.Background(), newTask(t, queue.SynthesisRunPayload{JobID: id, OutputPath: "/out.wav"})))
	require.Len(t, notifier.events, 1)
	assert.Equal(t, webhook.EventSynthesisCompleted, notifier.events[0].Event)
	assert.Equal(t, id, notifier.events[0].JobID)
	assert.Equal(t, "/out.wav", notifier.events[0].OutputPath)
	assert.Equal(t, 4, notifier.events[0].AudioBytes)

	failing := NewSynthesisWorker(&fakeRunner{err: tts.NewError(tts.KindInference, "", nil, "CUDA error")}).WithNotifier(notifier)
	require.Error(t, failing.ProcessTask(context.Background(), newTask(t, queue.SynthesisRunPayload{JobID: id})))
	require.Len(t, notifier.events, 2)
	assert.Equal(t, webhook.EventSynthesisFailed, notifier.events[1].Event)
	assert.Equal(t, string(tts.KindInference), notifier.events[1].ErrorKind)
}

func TestSynthesisWorker_NotifierErrorIsNotFatal(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	w := NewSynthesisWorker(&fakeRunner{}).WithNotifier(notifier)

	assert.NoError(t, w.ProcessTask(context.Background(), newTask(t, queue.SynthesisRunPayload{JobID: uuid.NewString()})))
	assert.Len(t, notifier.events, 1)
}

type flakySynth struct {
	failures int
	calls    int
}

func (f *flakySynth) Name() string { return "flaky" }

func (f *flakySynth) Synthesize(_ context.Context, _ tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, tts.NewError(tts.KindConnection, "", nil, "could not connect to the TTS server")
	}
	return &tts.SynthesisResult{Audio: []byte("RIFF"), Backend: f.Name()}, nil
}

type runLog struct {
	runs []models.SynthesisRun
}

func (l *runLog) Record(_ context.Context, run models.SynthesisRun) error {
	l.runs = append(l.runs, run)
	return nil
}

func TestSynthesisWorker_RetryRecordsEachAttempt(t *testing.T) {
	dir := t.TempDir()
	speaker := filepath.Join(dir, "ref.wav")
	require.NoError(t, os.WriteFile(speaker, []byte("RIFFref"), 0o644))

	log := &runLog{}
	runner := workflow.NewRunner(&flakySynth{failures: 1}, workflow.WithRecorder(log))
	w := NewSynthesisWorker(runner)

	jobID := uuid.New()
	task := newTask(t, queue.SynthesisRunPayload{
		JobID:      jobID.String(),
		Text:       "Hello again.",
		SpeakerWAV: speaker,
		Language:   "en",
		OutputPath: filepath.Join(dir, "out.wav"),
	})

	err := w.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))

	require.NoError(t, w.ProcessTask(context.Background(), task))

	require.Len(t, log.runs, 2)
	assert.Equal(t, jobID, log.runs[0].JobID)
	assert.Equal(t, jobID, log.runs[1].JobID)
	assert.NotEqual(t, log.runs[0].ID, log.runs[1].ID)
	assert.Equal(t, models.RunStatusFailed, log.runs[0].Status)
	assert.Equal(t, models.RunStatusSucceeded, log.runs[1].Status)
}
