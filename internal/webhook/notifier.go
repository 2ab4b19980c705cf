package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	EventSynthesisCompleted = "synthesis.completed"
	EventSynthesisFailed    = "synthesis.failed"
)

// Event is the JSON body posted for a finished queued job.
type Event struct {
	Event      string `json:"event"`
	JobID      string `json:"job_id"`
	OutputPath string `json:"output_path"`
	Backend    string `json:"backend,omitempty"`
	AudioBytes int    `json:"audio_bytes,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Notifier posts job events to a single configured URL.
type Notifier struct {
	url        string
	secret     string
	httpClient *http.Client
}

func NewNotifier(url, secret string) *Notifier {
	return &Notifier{
		url:    url,
		secret: secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify delivers ev once. Delivery failures are logged and returned; callers
// treat them as non-fatal.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().Unix()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Webhook-Event", ev.Event)
	httpReq.Header.Set("X-Webhook-ID", ev.JobID)
	if n.secret != "" {
		httpReq.Header.Set("X-Webhook-Signature", Sign(payload, n.secret))
	}

	resp, err := n.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("webhook delivery failed", "error", err, "job_id", ev.JobID)
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Warn("webhook received non-success response", "status", resp.StatusCode, "job_id", ev.JobID)
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the X-Webhook-Signature value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
