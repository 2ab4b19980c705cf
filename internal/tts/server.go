package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"syscall"
)

const (
	DefaultServerURL = "http://127.0.0.1:5002/api/tts"

	// Server error bodies are usually stack traces; only the head is useful.
	serverBodySnippet = 200
)

// ServerConfig holds configuration for the local TTS HTTP server backend.
type ServerConfig struct {
	URL string // default: DefaultServerURL
}

// ServerClient synthesizes speech by posting the reference audio and text to a
// locally running TTS server.
type ServerClient struct {
	cfg        ServerConfig
	httpClient *http.Client
}

// NewServerClient creates a ServerClient. Inference on the server can take
// minutes for long text, so the client sets no timeout; cancel through ctx.
func NewServerClient(cfg ServerConfig) *ServerClient {
	if cfg.URL == "" {
		cfg.URL = DefaultServerURL
	}
	return &ServerClient{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

func (c *ServerClient) Name() string { return "xtts-server" }

// Synthesize sends one multipart request and returns the response body verbatim.
func (c *ServerClient) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	body, contentType, err := buildServerForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, body)
	if err != nil {
		return nil, NewError(KindTransport, "", err, "create request for %s", c.cfg.URL)
	}
	httpReq.Header.Set("Content-Type", contentType)

	slog.Debug("posting synthesis request", "url", c.cfg.URL, "text_length", len(req.Text), "language", req.Language)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, NewError(KindConnection,
				fmt.Sprintf("Ensure the TTS server (tts-server --model_name ... --use_cuda) is running at %s and is not blocked by a firewall.", c.cfg.URL),
				err, "could not connect to the TTS server")
		}
		return nil, NewError(KindTransport, "", err, "tts server request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindTransport, "", err, "read tts server response")
	}

	if resp.StatusCode != http.StatusOK {
		snippet := Snippet(string(data), serverBodySnippet)
		return nil, &Error{
			Kind:       KindHTTPStatus,
			Message:    fmt.Sprintf("API call failed with status code %d", resp.StatusCode),
			Hint:       "The server may be failing to read the audio encoding, or the text is too long.",
			StatusCode: resp.StatusCode,
			Body:       snippet,
		}
	}

	return &SynthesisResult{
		Audio:       data,
		ContentType: "audio/wav",
		Backend:     c.Name(),
	}, nil
}

// buildServerForm encodes text, language and the speaker_wav file part. The
// reference audio is closed before returning, whatever the outcome.
func buildServerForm(req SynthesisRequest) (*bytes.Buffer, string, error) {
	f, err := os.Open(req.SpeakerWAV)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", NewError(KindFileNotFound, "Please ensure your reference audio is available.", err,
				"reference file not found at %s", req.SpeakerWAV)
		}
		return nil, "", NewError(KindInvalidInput, "", err, "open reference audio %s", req.SpeakerWAV)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("text", req.Text); err != nil {
		return nil, "", NewError(KindTransport, "", err, "write text field")
	}
	if err := mw.WriteField("language", req.Language); err != nil {
		return nil, "", NewError(KindTransport, "", err, "write language field")
	}

	// CreateFormFile hardcodes application/octet-stream; the server expects audio/wav.
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="speaker_wav"; filename="%s"`, escapeQuotes(filepath.Base(req.SpeakerWAV))))
	h.Set("Content-Type", "audio/wav")
	fw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", NewError(KindTransport, "", err, "create speaker_wav part")
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", NewError(KindInvalidInput, "", err, "read reference audio %s", req.SpeakerWAV)
	}

	if err := mw.Close(); err != nil {
		return nil, "", NewError(KindTransport, "", err, "close multipart writer")
	}

	return &body, mw.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '\\' || r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
