package tts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultModel    = "tts_models/multilingual/multi-dataset/xtts_v2"
	DefaultLocalBin = "tts"

	stderrSnippet = 500
)

// LocalModelConfig holds configuration for the local Coqui TTS runtime.
type LocalModelConfig struct {
	BinPath string // default: "tts"
	Model   string // default: DefaultModel
	Device  string // "cuda", "cpu"; empty means DetectDevice()
}

// LocalModel synthesizes speech by running the Coqui TTS runtime as a
// subprocess. The runtime loads the model onto the device and writes a WAV
// file, which is read back and removed.
type LocalModel struct {
	cfg LocalModelConfig
}

// NewLocalModel creates a LocalModel with defaults applied.
func NewLocalModel(cfg LocalModelConfig) *LocalModel {
	if cfg.BinPath == "" {
		cfg.BinPath = DefaultLocalBin
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Device == "" {
		cfg.Device = DetectDevice()
	}
	return &LocalModel{cfg: cfg}
}

func (l *LocalModel) Name() string { return "local-xtts" }

// Device returns the compute device the model is run on.
func (l *LocalModel) Device() string { return l.cfg.Device }

// Model returns the model identifier passed to the runtime.
func (l *LocalModel) Model() string { return l.cfg.Model }

func (l *LocalModel) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	bin, err := l.load()
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "clonetts-local-*")
	if err != nil {
		return nil, NewError(KindWrite, "", err, "create runtime work dir")
	}
	defer os.RemoveAll(workDir)
	outPath := filepath.Join(workDir, "output.wav")

	args := []string{
		"--model_name", l.cfg.Model,
		"--text", req.Text,
		"--speaker_wav", req.SpeakerWAV,
		"--language_idx", req.Language,
		"--out_path", outPath,
		"--device", l.cfg.Device,
	}
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Info("running local model", "model", l.cfg.Model, "device", l.cfg.Device, "text_length", len(req.Text))
	start := time.Now()

	if err := cmd.Run(); err != nil {
		return nil, NewError(KindInference,
			"Model execution failed. Check CUDA status or VRAM availability.",
			err, "runtime error during generation (stderr: %s)", Snippet(strings.TrimSpace(stderr.String()), stderrSnippet))
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, NewError(KindInference,
			"Verify the reference audio path and file format.",
			err, "runtime exited cleanly but produced no audio")
	}

	slog.Info("local model finished", "elapsed", time.Since(start), "bytes", len(audio))

	return &SynthesisResult{
		Audio:       audio,
		ContentType: "audio/wav",
		Backend:     l.Name(),
	}, nil
}

// load resolves the runtime binary; a missing runtime is a model-load failure.
func (l *LocalModel) load() (string, error) {
	bin, err := exec.LookPath(l.cfg.BinPath)
	if err != nil {
		return "", NewError(KindModelLoad,
			fmt.Sprintf("Install the Coqui TTS runtime (pip install TTS) in the active environment or set TTS_LOCAL_BIN (current: %s).", l.cfg.BinPath),
			err, "could not load model %s", l.cfg.Model)
	}
	return bin, nil
}

// DetectDevice returns "cuda" when an NVIDIA driver is visible and "cpu" otherwise.
func DetectDevice() string {
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return "cuda"
	}
	return "cpu"
}
