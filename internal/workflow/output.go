package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikhilbhutani/clonetts/internal/tts"
)

// DeriveOutputPath replaces the extension of input with .wav, keeping the
// directory. An input with no directory component yields a bare file name.
func DeriveOutputPath(input string) string {
	dir, file := filepath.Split(input)
	base := strings.TrimSuffix(file, filepath.Ext(file))
	if base == "" {
		// dotfiles such as ".notes" have no extension to strip
		base = file
	}
	if dir == "" {
		return base + ".wav"
	}
	return filepath.Join(dir, base+".wav")
}

// WriteAudio persists data at path through a temp file in the same directory,
// so a failed write never leaves a partial file behind. The parent directory
// must already exist.
func WriteAudio(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".clonetts-*.part")
	if err != nil {
		return tts.NewError(tts.KindWrite, fmt.Sprintf("Make sure the directory %s exists and is writable.", dir),
			err, "could not write audio to %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return tts.NewError(tts.KindWrite, "", err, "could not write audio to %s", path)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return tts.NewError(tts.KindWrite, "", err, "could not write audio to %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return tts.NewError(tts.KindWrite, "", err, "could not write audio to %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return tts.NewError(tts.KindWrite, "", err, "could not write audio to %s", path)
	}
	return nil
}
