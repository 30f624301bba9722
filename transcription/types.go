package transcription

import "io"

// Request holds parameters for a transcription call. Audio is streamed to
// the backend rather than read from disk so the caller controls where the
// bytes come from (local storage, an upload buffer, a test fixture).
type Request struct {
	// Filename is the original name of the audio file, used for the
	// multipart form part.
	Filename string
	// Audio is the audio content to transcribe.
	Audio io.Reader
	// Language is the expected language of the audio (e.g. "en").
	Language string
	// Model is the transcription model to use.
	Model string
}

// Result holds the outcome of a transcription call.
type Result struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Segments contains time-aligned transcript segments.
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
}
