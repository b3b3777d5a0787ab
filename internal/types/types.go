package types

import "time"

// Job status constants
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// MaxLinks is the most source videos one job may reference
const MaxLinks = 10

// Job represents one video generation request
type Job struct {
	ID    string
	Text  string
	Links []string
}

// Word is a single transcribed word with its visibility window
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment represents a timestamped segment of transcription
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// Transcript is the word-timed output of the transcriber
type Transcript struct {
	Text     string
	Language string
	Duration float64
	Segments []Segment
}

// WordCount returns the total number of words across all segments
func (t *Transcript) WordCount() int {
	count := 0
	for _, seg := range t.Segments {
		count += len(seg.Words)
	}
	return count
}

// JobRecord is one row of job history
type JobRecord struct {
	JobID       string    `json:"job_id"`
	Prompt      string    `json:"prompt"`
	LinkCount   int       `json:"link_count"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	DurationSec float64   `json:"duration_seconds"`
	OutputBytes int64     `json:"output_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
