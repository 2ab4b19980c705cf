package textextract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Plain(t *testing.T) {
	data := "\n  Hello, world.\nSecond line.  \n"
	got, err := Extract(strings.NewReader(data), int64(len(data)), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.\nSecond line.", got.Content)
	assert.Equal(t, "txt", got.Type)
}

func TestExtract_DOCX(t *testing.T) {
	doc := buildDOCX(t, `<w:document><w:body>`+
		`<w:p><w:r><w:t>First</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph.</w:t></w:r></w:p>`+
		`<w:p></w:p>`+
		`<w:p><w:r><w:t>Second   paragraph.</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	got, err := Extract(bytes.NewReader(doc), int64(len(doc)), ".docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", got.Content)
	assert.Equal(t, "docx", got.Type)
}

func TestExtract_DOCXWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "docx")
	assert.Error(t, err)
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract(strings.NewReader("x"), 1, ".odt")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()

	noExt := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(noExt, []byte("plain words"), 0o644))
	got, err := ExtractFile(noExt)
	require.NoError(t, err)
	assert.Equal(t, "plain words", got.Content)

	empty := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	got, err = ExtractFile(empty)
	require.NoError(t, err)
	assert.Empty(t, got.Content)

	_, err = ExtractFile(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractFile_UnknownExtensionReadsPlainText(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"chapter.text", "notes.rst", "script.srt", "server.log"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("Hello world.\n"), 0o644))

		got, err := ExtractFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, "Hello world.", got.Content, name)
		assert.Equal(t, "txt", got.Type, name)
	}
}

func TestExtractFile_UppercaseDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "REPORT.DOCX")
	doc := buildDOCX(t, `<w:document><w:body><w:p><w:r><w:t>Upper.</w:t></w:r></w:p></w:body></w:document>`)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	got, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Upper.", got.Content)
}

func TestExtract_PlainInvalidUTF8(t *testing.T) {
	data := "caf\xe9"
	_, err := Extract(strings.NewReader(data), int64(len(data)), ".txt")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestExtract_PlainStripsBOM(t *testing.T) {
	data := "\ufeffHello."
	got, err := Extract(strings.NewReader(data), int64(len(data)), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello.", got.Content)
}
