// Package decisionlog writes the append-only JSONL audit log, one object per
// processed transcription event. Writes go through a buffered channel and a
// single writer goroutine so file I/O never runs inside the engine's critical
// section. Sink failures are counted and dropped, never surfaced to callers.
package decisionlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Record is one decision log entry. Field names and order match the wire
// format consumed by downstream tooling; never rename them.
type Record struct {
	EventID       string   `json:"event_id"`
	TimestampISO  string   `json:"timestamp_iso"`
	AgentSpeaking bool     `json:"agent_speaking"`
	Transcript    string   `json:"transcript"`
	Tokens        []string `json:"tokens"`
	Confidence    float64  `json:"confidence"`
	Action        string   `json:"action"`
	Reason        string   `json:"reason"`
	DurationMS    float64  `json:"duration_ms"`
}

const queueDepth = 256

// Writer appends records to a JSONL file. Append never blocks: if the queue
// is full the record is dropped and counted. Close drains the queue, flushes,
// and is safe to call more than once.
type Writer struct {
	log zerolog.Logger

	mu     sync.Mutex
	closed bool

	ch   chan Record
	done chan struct{}

	f  *os.File
	bw *bufio.Writer
}

// Open creates (or appends to) the log file at path, creating parent
// directories as needed.
func Open(path string, log zerolog.Logger) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("decisionlog: create dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("decisionlog: open %s: %w", path, err)
	}
	w := &Writer{
		log:  log.With().Str("component", "decisionlog").Logger(),
		ch:   make(chan Record, queueDepth),
		done: make(chan struct{}),
		f:    f,
		bw:   bufio.NewWriter(f),
	}
	go w.run()
	return w, nil
}

func (w *Writer) run() {
	defer close(w.done)
	for rec := range w.ch {
		line, err := json.Marshal(rec)
		if err != nil {
			metricWriteErrors.Inc()
			w.log.Error().Err(err).Str("event_id", rec.EventID).Msg("marshal record")
			continue
		}
		if _, err := w.bw.Write(append(line, '\n')); err != nil {
			metricWriteErrors.Inc()
			w.log.Error().Err(err).Msg("write record")
			continue
		}
		metricRecords.Inc()
	}
	if err := w.bw.Flush(); err != nil {
		w.log.Error().Err(err).Msg("flush on close")
	}
}

// Append enqueues a record for writing. No-op after Close; drops (and counts)
// when the queue is full rather than blocking the caller.
func (w *Writer) Append(rec Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		metricDrops.Inc()
		return
	}
	select {
	case w.ch <- rec:
	default:
		metricDrops.Inc()
	}
}

// Close drains buffered records, flushes, and closes the file. Idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()

	<-w.done
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("decisionlog: close: %w", err)
	}
	return nil
}
