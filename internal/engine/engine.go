// Package engine orchestrates interrupt decisions: it snapshots conversation
// state and word lists, classifies the transcript, applies the stop side
// effect, and records every decision.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bargein/interrupt/internal/classify"
	"bargein/interrupt/internal/decisionlog"
	"bargein/interrupt/internal/state"
	"bargein/interrupt/internal/text"
	"bargein/interrupt/internal/types"
	"bargein/interrupt/internal/wordlist"
)

var (
	// ErrClosed is returned by every operation once shutdown has begun.
	ErrClosed = errors.New("engine closed")

	ErrEmptyWordList = errors.New("word list is empty after normalization")
	ErrBadThreshold  = errors.New("confidence threshold must be within [0,1]")
)

// Agent is the external collaborator whose speech gets cut off on INTERRUPT.
type Agent interface {
	StopSpeaking(ctx context.Context) error
}

// DecisionSink receives one record per processed event. Append must not
// block; Close flushes whatever the sink buffers.
type DecisionSink interface {
	Append(decisionlog.Record)
	Close() error
}

// InterruptCallback observes INTERRUPT decisions before the event call
// returns. Panics are recovered and logged, never propagated.
type InterruptCallback func(ev types.TranscriptionEvent, dec classify.Decision)

// Config is the engine's construction-time input. Word lists and threshold
// are validated up front; malformed configuration fails here, not at first use.
type Config struct {
	IgnoredWords        []string
	CommandWords        []string
	ConfidenceThreshold float64
}

// Stats is a consistent point-in-time snapshot of engine counters and state.
type Stats struct {
	TotalEvents         uint64    `json:"total_events"`
	Ignored             uint64    `json:"ignored"`
	Registered          uint64    `json:"registered"`
	Interrupted         uint64    `json:"interrupted"`
	AgentSpeaking       bool      `json:"agent_speaking"`
	IgnoredWords        int       `json:"ignored_words"`
	CommandWords        int       `json:"command_words"`
	ConfidenceThreshold float64   `json:"confidence_threshold"`
	LastVADUpdate       time.Time `json:"last_vad_update"`
}

type phase int

const (
	phaseActive phase = iota
	phaseShuttingDown
	phaseClosed
)

// Engine owns all mutable conversational state. Multiple engines are fully
// independent; there is no package-level state beyond metrics.
type Engine struct {
	log   zerolog.Logger
	agent Agent
	sinks []DecisionSink
	conv  *state.Conversation

	mu        sync.Mutex
	phase     phase
	ignored   *wordlist.Set
	commands  *wordlist.Set
	threshold float64
	callback  InterruptCallback
	stats     Stats

	// inflight tracks admitted events so Shutdown can wait them out.
	inflight sync.WaitGroup
}

// New validates cfg and builds an engine. agent may be nil when the stop side
// effect is delivered out of band (e.g. over the transport that returned the
// decision). Sinks are owned by the engine and closed on Shutdown.
func New(cfg Config, agent Agent, log zerolog.Logger, sinks ...DecisionSink) (*Engine, error) {
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 || math.IsNaN(cfg.ConfidenceThreshold) {
		return nil, fmt.Errorf("engine: threshold %v: %w", cfg.ConfidenceThreshold, ErrBadThreshold)
	}
	ignored := wordlist.New(cfg.IgnoredWords)
	if ignored.Len() == 0 {
		return nil, fmt.Errorf("engine: ignored words: %w", ErrEmptyWordList)
	}
	commands := wordlist.New(cfg.CommandWords)
	if commands.Len() == 0 {
		return nil, fmt.Errorf("engine: command words: %w", ErrEmptyWordList)
	}

	e := &Engine{
		log:       log.With().Str("component", "engine").Logger(),
		agent:     agent,
		sinks:     sinks,
		conv:      state.NewConversation(),
		ignored:   ignored,
		commands:  commands,
		threshold: cfg.ConfidenceThreshold,
	}
	e.log.Info().
		Int("ignored_words", ignored.Len()).
		Int("command_words", commands.Len()).
		Float64("confidence_threshold", cfg.ConfidenceThreshold).
		Msg("engine ready")
	return e, nil
}

// OnTranscriptionEvent classifies one ASR result and returns true iff the
// decision is INTERRUPT. Stop-action and sink failures never change the
// returned decision; only a closed engine yields an error.
func (e *Engine) OnTranscriptionEvent(ctx context.Context, ev types.TranscriptionEvent) (bool, error) {
	start := time.Now()

	// Snapshot everything the classification depends on in one critical
	// section; rule evaluation runs outside the lock.
	e.mu.Lock()
	if e.phase != phaseActive {
		e.mu.Unlock()
		return false, ErrClosed
	}
	e.inflight.Add(1)
	speaking := e.conv.Speaking()
	ignored, commands := e.ignored, e.commands
	threshold := e.threshold
	cb := e.callback
	e.mu.Unlock()
	defer e.inflight.Done()

	eventID := uuid.NewString()[:8]

	tokens := []string{}
	var dec classify.Decision
	if ev.Confidence < 0 || ev.Confidence > 1 || math.IsNaN(ev.Confidence) {
		dec = classify.Decision{Action: classify.ActionIgnore, Reason: classify.ReasonInvalidInput}
	} else {
		tokens = text.Tokenize(ev.Transcript)
		dec = classify.Classify(classify.Input{
			Tokens:        tokens,
			Confidence:    ev.Confidence,
			AgentSpeaking: speaking,
			Ignored:       ignored,
			Commands:      commands,
			Threshold:     threshold,
		})
	}

	interrupt := dec.Action == classify.ActionInterrupt
	if interrupt {
		e.log.Info().
			Str("event_id", eventID).
			Str("transcript", ev.Transcript).
			Str("reason", dec.Reason).
			Msg("interrupt")
		if e.agent != nil {
			if err := e.agent.StopSpeaking(ctx); err != nil {
				metricStopFailures.Inc()
				e.log.Error().Err(err).Str("event_id", eventID).Msg("agent stop failed")
			}
		}
		if cb != nil {
			e.invokeCallback(cb, ev, dec, eventID)
		}
	} else {
		e.log.Debug().
			Str("event_id", eventID).
			Str("action", dec.Action.String()).
			Str("transcript", ev.Transcript).
			Str("reason", dec.Reason).
			Msg("decision")
	}

	rec := decisionlog.Record{
		EventID:       eventID,
		TimestampISO:  start.UTC().Format(time.RFC3339Nano),
		AgentSpeaking: speaking,
		Transcript:    ev.Transcript,
		Tokens:        tokens,
		Confidence:    ev.Confidence,
		Action:        dec.Action.String(),
		Reason:        dec.Reason,
		DurationMS:    float64(time.Since(start).Microseconds()) / 1000.0,
	}
	for _, s := range e.sinks {
		s.Append(rec)
	}

	e.mu.Lock()
	e.stats.TotalEvents++
	switch dec.Action {
	case classify.ActionIgnore:
		e.stats.Ignored++
	case classify.ActionRegister:
		e.stats.Registered++
	case classify.ActionInterrupt:
		e.stats.Interrupted++
	}
	e.mu.Unlock()

	metricEvents.Inc()
	metricDecisions.WithLabelValues(dec.Action.String()).Inc()
	metricProcessingMS.Observe(rec.DurationMS)

	return interrupt, nil
}

func (e *Engine) invokeCallback(cb InterruptCallback, ev types.TranscriptionEvent, dec classify.Decision, eventID string) {
	defer func() {
		if r := recover(); r != nil {
			metricCallbackPanics.Inc()
			e.log.Error().Interface("panic", r).Str("event_id", eventID).Msg("interrupt callback panicked")
		}
	}()
	cb(ev, dec)
}

// OnVADStateChange records the agent's speaking state. Fire and forget:
// nothing is classified or logged to the decision log.
func (e *Engine) OnVADStateChange(speaking bool) error {
	e.mu.Lock()
	if e.phase != phaseActive {
		e.mu.Unlock()
		return ErrClosed
	}
	changed := e.conv.SetSpeaking(speaking)
	e.mu.Unlock()

	if changed {
		metricVADChanges.Inc()
		e.log.Debug().Bool("agent_speaking", speaking).Msg("vad state change")
	}
	return nil
}

// UpdateIgnoredWords atomically replaces the filler list. In-flight events
// keep the snapshot they already took.
func (e *Engine) UpdateIgnoredWords(words []string) error {
	set := wordlist.New(words)
	if set.Len() == 0 {
		return fmt.Errorf("engine: ignored words: %w", ErrEmptyWordList)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != phaseActive {
		return ErrClosed
	}
	e.ignored = set
	e.log.Info().Int("ignored_words", set.Len()).Msg("ignored words updated")
	return nil
}

// UpdateCommandWords atomically replaces the command list.
func (e *Engine) UpdateCommandWords(words []string) error {
	set := wordlist.New(words)
	if set.Len() == 0 {
		return fmt.Errorf("engine: command words: %w", ErrEmptyWordList)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != phaseActive {
		return ErrClosed
	}
	e.commands = set
	e.log.Info().Int("command_words", set.Len()).Msg("command words updated")
	return nil
}

// SetInterruptCallback registers the observer invoked after INTERRUPT
// decisions. Pass nil to clear.
func (e *Engine) SetInterruptCallback(cb InterruptCallback) {
	e.mu.Lock()
	e.callback = cb
	e.mu.Unlock()
}

// Stats returns a snapshot; calling it twice without an intervening event
// yields equal values.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.AgentSpeaking = e.conv.Speaking()
	s.IgnoredWords = e.ignored.Len()
	s.CommandWords = e.commands.Len()
	s.ConfidenceThreshold = e.threshold
	s.LastVADUpdate = e.conv.LastChange()
	return s
}

// Shutdown stops admitting events, waits (bounded by ctx) for in-flight
// events, then flushes and closes the sinks. Idempotent; transitions are
// forward only: Active -> ShuttingDown -> Closed.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != phaseActive {
		e.mu.Unlock()
		return nil
	}
	e.phase = phaseShuttingDown
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("engine: shutdown wait: %w", ctx.Err())
	}

	for _, s := range e.sinks {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	e.mu.Lock()
	e.phase = phaseClosed
	e.mu.Unlock()

	e.log.Info().Msg("engine closed")
	return err
}
