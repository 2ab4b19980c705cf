package tts

import (
	"fmt"

	"github.com/nikhilbhutani/clonetts/internal/config"
)

// NewSynthesizer builds the backend selected by cfg.Backend.
func NewSynthesizer(cfg config.TTSConfig) (Synthesizer, error) {
	switch cfg.Backend {
	case BackendServer, "":
		return NewServerClient(ServerConfig{URL: cfg.ServerURL}), nil
	case BackendLocal:
		return NewLocalModel(LocalModelConfig{
			BinPath: cfg.LocalBin,
			Model:   cfg.Model,
			Device:  cfg.Device,
		}), nil
	case BackendOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai backend requires OPENAI_API_KEY")
		}
		return NewOpenAISpeech(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Voice:   cfg.OpenAIVoice,
		}), nil
	default:
		return nil, fmt.Errorf("unknown tts backend: %s", cfg.Backend)
	}
}
