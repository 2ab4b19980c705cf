package tts

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime writes an executable shell script standing in for the Coqui
// runtime and returns its path.
func fakeRuntime(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtime is a shell script")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "tts")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > \"" + filepath.Join(dir, "args.txt") + "\"\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

const writeOutput = `out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --out_path) out="$2"; shift ;;
  esac
  shift
done
printf 'RIFFlocal' > "$out"
`

func TestLocalModel_Synthesize(t *testing.T) {
	bin := fakeRuntime(t, writeOutput)
	model := NewLocalModel(LocalModelConfig{BinPath: bin, Device: "cpu"})

	res, err := model.Synthesize(context.Background(), SynthesisRequest{
		Text:       "Bonjour.",
		SpeakerWAV: "ref.wav",
		Language:   "fr",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFlocal"), res.Audio)
	assert.Equal(t, "local-xtts", res.Backend)

	args, err := os.ReadFile(filepath.Join(filepath.Dir(bin), "args.txt"))
	require.NoError(t, err)
	got := strings.Split(strings.TrimSpace(string(args)), "\n")
	assert.Subset(t, got, []string{"--model_name", DefaultModel, "--text", "Bonjour.", "--speaker_wav", "ref.wav", "--language_idx", "fr", "--device", "cpu"})
}

func TestLocalModel_Synthesize_RuntimeFailure(t *testing.T) {
	bin := fakeRuntime(t, "echo 'CUDA out of memory' >&2\nexit 1\n")
	model := NewLocalModel(LocalModelConfig{BinPath: bin, Device: "cuda"})

	_, err := model.Synthesize(context.Background(), SynthesisRequest{Text: "hi", SpeakerWAV: "ref.wav", Language: "en"})
	require.Error(t, err)

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindInference, te.Kind)
	assert.Contains(t, te.Message, "CUDA out of memory")
	assert.Contains(t, te.Hint, "VRAM")
}

func TestLocalModel_Synthesize_NoOutput(t *testing.T) {
	bin := fakeRuntime(t, "exit 0\n")
	model := NewLocalModel(LocalModelConfig{BinPath: bin, Device: "cpu"})

	_, err := model.Synthesize(context.Background(), SynthesisRequest{Text: "hi", SpeakerWAV: "ref.wav", Language: "en"})
	assert.Equal(t, KindInference, KindOf(err))
}

func TestLocalModel_Synthesize_MissingRuntime(t *testing.T) {
	model := NewLocalModel(LocalModelConfig{BinPath: filepath.Join(t.TempDir(), "no-such-tts"), Device: "cpu"})

	_, err := model.Synthesize(context.Background(), SynthesisRequest{Text: "hi", SpeakerWAV: "ref.wav", Language: "en"})
	require.Error(t, err)
	assert.Equal(t, KindModelLoad, KindOf(err))
	assert.Contains(t, HintOf(err), "TTS_LOCAL_BIN")
}

func TestNewLocalModel_Defaults(t *testing.T) {
	model := NewLocalModel(LocalModelConfig{})

	assert.Equal(t, DefaultLocalBin, model.cfg.BinPath)
	assert.Equal(t, DefaultModel, model.Model())
	assert.Contains(t, []string{"cuda", "cpu"}, model.Device())
}
