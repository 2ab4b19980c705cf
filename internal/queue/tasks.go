package queue

const (
	TypeSynthesisRun = "synthesis:run"

	// Model inference owns the GPU; jobs go through one queue.
	QueueSynthesis = "synthesis"
)

type SynthesisRunPayload struct {
	JobID      string `json:"job_id"`
	Text       string `json:"text,omitempty"`
	InputPath  string `json:"input_path,omitempty"`
	SpeakerWAV string `json:"speaker_wav"`
	Language   string `json:"language"`
	OutputPath string `json:"output_path"`
}
