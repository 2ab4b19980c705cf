package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nikhilbhutani/clonetts/internal/tts"
)

// Knob descriptions used in validation hints.
const (
	SpeakerKnob = "-s/--speaker or TTS_SPEAKER_WAV"
	InputKnob   = "the input_file argument"
)

// FileCheck names a local file that must exist before any synthesis work.
type FileCheck struct {
	Path  string
	Label string // e.g. "Speaker WAV file"
	Knob  string // flag or env var that controls Path
}

// ValidateFiles checks each file in order and returns the first failure as a
// KindFileNotFound error. Nothing is retried: a missing file is a
// configuration error.
func ValidateFiles(checks ...FileCheck) error {
	for _, c := range checks {
		if c.Path == "" {
			return tts.NewError(tts.KindFileNotFound,
				fmt.Sprintf("Set %s.", c.Knob), nil, "%s path is empty", c.Label)
		}
		info, err := os.Stat(c.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return tts.NewError(tts.KindFileNotFound,
					fmt.Sprintf("Please ensure the file is available or point %s at it.", c.Knob),
					nil, "%s not found at: %s", c.Label, c.Path)
			}
			return tts.NewError(tts.KindFileNotFound,
				fmt.Sprintf("Check permissions or point %s at a readable file.", c.Knob),
				err, "%s not accessible at: %s", c.Label, c.Path)
		}
		if !info.Mode().IsRegular() {
			return tts.NewError(tts.KindFileNotFound,
				fmt.Sprintf("Point %s at a regular file.", c.Knob),
				nil, "%s at %s is not a regular file", c.Label, c.Path)
		}
	}
	return nil
}

// ValidateText rejects empty or whitespace-only synthesis text.
func ValidateText(text, source string) error {
	if strings.TrimSpace(text) == "" {
		return tts.NewError(tts.KindInvalidInput, "Provide non-empty text to synthesize.", nil,
			"input %s is empty", source)
	}
	return nil
}
