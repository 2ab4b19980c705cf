package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"syscall"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI speech backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default: the SDK's https://api.openai.com/v1
	Model   string // default: "tts-1"
	Voice   string // default: "alloy"
}

// OpenAISpeech synthesizes with OpenAI's hosted voices. It has no voice
// cloning: the reference audio is validated by the workflow but not sent.
type OpenAISpeech struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAISpeech creates an OpenAISpeech with defaults applied.
func NewOpenAISpeech(cfg OpenAIConfig) *OpenAISpeech {
	if cfg.Model == "" {
		cfg.Model = string(openai.TTSModel1)
	}
	if cfg.Voice == "" {
		cfg.Voice = string(openai.VoiceAlloy)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAISpeech{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (o *OpenAISpeech) Name() string { return "openai-tts" }

func (o *OpenAISpeech) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if req.SpeakerWAV != "" {
		slog.Warn("openai backend does not clone voices, reference audio ignored", "speaker_wav", req.SpeakerWAV, "voice", o.cfg.Voice)
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.cfg.Model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(o.cfg.Voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, NewError(KindTransport, "", err, "read openai audio")
	}

	return &SynthesisResult{
		Audio:       audio,
		ContentType: "audio/wav",
		Backend:     o.Name(),
	}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return NewError(KindConnection, "Check TTS_OPENAI_BASE_URL and network access.", err, "could not connect to the OpenAI API")
	}
	return NewError(KindTransport, "", err, "openai speech request")
}

func statusError(code int, body string) *Error {
	hint := ""
	if code == http.StatusUnauthorized {
		hint = "Set OPENAI_API_KEY to a valid key."
	}
	return &Error{
		Kind:       KindHTTPStatus,
		Message:    fmt.Sprintf("openai speech request failed with status code %d", code),
		Hint:       hint,
		StatusCode: code,
		Body:       Snippet(body, serverBodySnippet),
	}
}
