package types

import "time"

// TranscriptionEvent is one ASR result delivered to the engine. Immutable
// once constructed; consumed exactly once.
type TranscriptionEvent struct {
	Transcript string    `json:"transcript"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
}
