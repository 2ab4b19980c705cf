package models

import (
	"time"

	"github.com/google/uuid"
)

// SynthesisRun is one attempt at a job. Queued jobs that are retried share a
// JobID and get a new ID per attempt.
type SynthesisRun struct {
	ID           uuid.UUID `json:"id" db:"id"`
	JobID        uuid.UUID `json:"job_id" db:"job_id"`
	Backend      string    `json:"backend" db:"backend"`
	Language     string    `json:"language" db:"language"`
	SpeakerWAV   string    `json:"speaker_wav" db:"speaker_wav"`
	InputPath    string    `json:"input_path,omitempty" db:"input_path"`
	OutputPath   string    `json:"output_path" db:"output_path"`
	TextLength   int       `json:"text_length" db:"text_length"`
	Status       string    `json:"status" db:"status"`
	ErrorKind    string    `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage string    `json:"error_message,omitempty" db:"error_message"`
	AudioBytes   int       `json:"audio_bytes" db:"audio_bytes"`
	Cached       bool      `json:"cached" db:"cached"`
	LatencyMs    int       `json:"latency_ms" db:"latency_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)
