package tts

import (
	"context"
	"time"
)

// Backend names accepted by NewSynthesizer.
const (
	BackendServer = "server"
	BackendLocal  = "local"
	BackendOpenAI = "openai"
)

// SynthesisRequest holds the parameters for one voice-cloned synthesis.
type SynthesisRequest struct {
	Text       string `json:"text"`
	SpeakerWAV string `json:"speaker_wav"`
	Language   string `json:"language"`
	OutputPath string `json:"output_path"`
}

// SynthesisResult holds the generated audio and where it was persisted.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
	Backend     string
	OutputPath  string
	Duration    time.Duration
	Cached      bool
}

// Synthesizer is the capability interface implemented by every TTS backend.
// Implementations return the audio bytes; persisting them is the caller's job.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}
