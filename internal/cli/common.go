package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/clonetts/internal/config"
	"github.com/nikhilbhutani/clonetts/internal/tts"
	"github.com/nikhilbhutani/clonetts/internal/workflow"
)

const (
	defaultLocalOutput  = "xtts_output.wav"
	defaultRemoteOutput = "api_output.wav"

	previewChars = 40
)

// reportedError marks a failure whose diagnostic has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// synthOptions are the flags shared by every command that synthesizes audio.
type synthOptions struct {
	speaker   string
	language  string
	device    string
	backend   string
	serverURL string
	output    string
}

func (o *synthOptions) addFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&o.speaker, "speaker", "s", "", "Path to the reference speaker WAV file (env TTS_SPEAKER_WAV, default "+config.DefaultSpeakerWAV+")")
	fs.StringVarP(&o.language, "language", "l", "", "Language code, e.g. en, es, fr (env TTS_LANGUAGE, default en)")
	fs.StringVarP(&o.device, "device", "d", "", "Compute device for the local model: cuda or cpu (env TTS_DEVICE, default autodetect)")
	fs.StringVarP(&o.backend, "backend", "b", "", "Synthesis backend: server, local or openai (env TTS_BACKEND, default server)")
	fs.StringVar(&o.serverURL, "server-url", "", "TTS server endpoint (env TTS_SERVER_URL, default "+tts.DefaultServerURL+")")
	fs.StringVarP(&o.output, "output", "o", "", "Output WAV path")
}

// apply overlays explicitly set flags on cfg. Unset flags never override the
// environment, even when their zero value would be valid.
func (o *synthOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("speaker") {
		cfg.TTS.SpeakerWAV = o.speaker
	}
	if fs.Changed("language") {
		cfg.TTS.Language = o.language
	}
	if fs.Changed("device") {
		cfg.TTS.Device = o.device
	}
	if fs.Changed("backend") {
		cfg.TTS.Backend = strings.ToLower(strings.TrimSpace(o.backend))
	}
	if fs.Changed("server-url") {
		cfg.TTS.ServerURL = o.serverURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.TTS.Backend == tts.BackendLocal && cfg.TTS.Device == "" {
		cfg.TTS.Device = tts.DetectDevice()
	}
	return nil
}

// defaultOutput is the output path used by commands without an input file.
func defaultOutput(backend string) string {
	if backend == tts.BackendLocal {
		return defaultLocalOutput
	}
	return defaultRemoteOutput
}

// preflight runs the file checks before anything slow is printed or loaded.
func preflight(inputPath, speaker string) error {
	var checks []workflow.FileCheck
	if inputPath != "" {
		checks = append(checks, workflow.FileCheck{Path: inputPath, Label: "Input text file", Knob: workflow.InputKnob})
	}
	checks = append(checks, workflow.FileCheck{Path: speaker, Label: "Speaker WAV file", Knob: workflow.SpeakerKnob})
	return workflow.ValidateFiles(checks...)
}

// warnVenv prints a notice when the local runtime is used outside the
// expected virtual environment.
func warnVenv(w io.Writer, cfg *config.Config) {
	if cfg.TTS.Backend != tts.BackendLocal || cfg.TTS.Venv == "" {
		return
	}
	venv := os.Getenv("VIRTUAL_ENV")
	if strings.Contains(venv, cfg.TTS.Venv) {
		return
	}
	fmt.Fprintf(w, "WARNING: You do not appear to be in the '%s' virtual environment.\n", cfg.TTS.Venv)
	fmt.Fprintln(w, "Activate it first so the Coqui TTS runtime and its dependencies are on PATH.")
}

// announce prints the pre-synthesis banner for the selected backend.
func announce(w io.Writer, cfg *config.Config, text string) {
	switch cfg.TTS.Backend {
	case tts.BackendLocal:
		fmt.Fprintf(w, "Loading %s onto device: %s...\n", cfg.TTS.Model, cfg.TTS.Device)
	case tts.BackendOpenAI:
		fmt.Fprintf(w, "Sending request to OpenAI (%s, voice %s)...\n", cfg.TTS.OpenAIModel, cfg.TTS.OpenAIVoice)
	default:
		if text != "" {
			fmt.Fprintf(w, "Sending request for: '%s...'\n", tts.Snippet(text, previewChars))
		} else {
			fmt.Fprintf(w, "Sending request to %s...\n", cfg.TTS.ServerURL)
		}
	}
	fmt.Fprintf(w, "Using speaker: %s (language %s)\n", cfg.TTS.SpeakerWAV, cfg.TTS.Language)
}

func reportSuccess(w io.Writer, res *tts.SynthesisResult) {
	path := res.OutputPath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if res.Cached {
		fmt.Fprintf(w, "SUCCESS: Audio saved to %s (from cache)\n", path)
		return
	}
	fmt.Fprintf(w, "SUCCESS: Audio saved to %s\n", path)
	slog.Info("synthesis completed", "backend", res.Backend, "bytes", len(res.Audio), "duration", res.Duration)
}

// reportFailure prints the diagnostic for err and returns it marked as
// reported, so Execute does not print it a second time.
func reportFailure(w io.Writer, err error) error {
	var te *tts.Error
	if !errors.As(err, &te) {
		fmt.Fprintf(w, "ERROR: %v\n", err)
		return &reportedError{err: err}
	}

	switch te.Kind {
	case tts.KindModelLoad, tts.KindInference:
		fmt.Fprintf(w, "FATAL RUNTIME ERROR during generation: %v\n", te)
	case tts.KindHTTPStatus:
		fmt.Fprintf(w, "ERROR: %s\n", te.Message)
		if te.Body != "" {
			fmt.Fprintf(w, "Server response: %s...\n", te.Body)
		}
	default:
		fmt.Fprintf(w, "ERROR: %v\n", te)
	}
	if te.Hint != "" {
		fmt.Fprintln(w, te.Hint)
	}
	return &reportedError{err: err}
}
