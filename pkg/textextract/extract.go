package textextract

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for file extensions with no extractor.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrInvalidEncoding is returned for plain text that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("text is not valid UTF-8")

type ExtractedText struct {
	Content string
	Pages   int
	Type    string
}

// ExtractFile opens path and extracts its text based on the file extension.
// Anything other than a PDF or DOCX document is read as UTF-8 plain text.
func ExtractFile(path string) (*ExtractedText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf", ".docx":
		return Extract(f, info.Size(), ext)
	default:
		return extractPlain(f, info.Size())
	}
}

func Extract(data io.ReaderAt, size int64, fileType string) (*ExtractedText, error) {
	switch strings.ToLower(fileType) {
	case ".pdf", "pdf", "application/pdf":
		return extractPDF(data, size)
	case ".docx", "docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return extractDOCX(data, size)
	case ".txt", "txt", "text/plain", ".md", "md", "text/markdown":
		return extractPlain(data, size)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}
}

// SupportedTypes lists the extensions with a dedicated extractor. ExtractFile
// reads any other file as plain text.
func SupportedTypes() []string {
	return []string{".txt", ".md", ".pdf", ".docx"}
}

func extractPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read PDF page %d: %w", i, err)
		}
		buf.WriteString(strings.TrimSpace(text))
		buf.WriteString("\n")
	}

	return &ExtractedText{
		Content: strings.TrimSpace(buf.String()),
		Pages:   numPages,
		Type:    "pdf",
	}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read document.xml: %w", err)
		}

		return &ExtractedText{
			Content: docxText(string(content)),
			Pages:   1,
			Type:    "docx",
		}, nil
	}

	return nil, fmt.Errorf("open DOCX: word/document.xml not found")
}

func extractPlain(data io.ReaderAt, size int64) (*ExtractedText, error) {
	buf := make([]byte, size)
	n, err := data.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(buf[:n]) {
		return nil, ErrInvalidEncoding
	}

	return &ExtractedText{
		Content: strings.TrimSpace(strings.TrimPrefix(string(buf[:n]), "\ufeff")),
		Pages:   1,
		Type:    "txt",
	}, nil
}

// docxText strips WordprocessingML tags, keeping one line per paragraph.
func docxText(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")

	var result strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	lines := strings.Split(result.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
