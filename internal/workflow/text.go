package workflow

import (
	"errors"

	"github.com/nikhilbhutani/clonetts/internal/tts"
	"github.com/nikhilbhutani/clonetts/pkg/textextract"
)

// LoadText reads the synthesis text from an input file.
func LoadText(path string) (string, error) {
	extracted, err := textextract.ExtractFile(path)
	if err != nil {
		hint := "Check that the file is a readable text, PDF or DOCX document."
		if errors.Is(err, textextract.ErrInvalidEncoding) {
			hint = "Save the input file as UTF-8 text."
		}
		return "", tts.NewError(tts.KindInvalidInput, hint, err, "could not read input file")
	}
	return extracted.Content, nil
}
