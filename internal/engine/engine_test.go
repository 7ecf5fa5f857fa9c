package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"bargein/interrupt/internal/classify"
	"bargein/interrupt/internal/history"
	"bargein/interrupt/internal/types"
)

type mockAgent struct {
	mu      sync.Mutex
	stops   int
	stopErr error
}

func (m *mockAgent) StopSpeaking(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return m.stopErr
}

func (m *mockAgent) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

func testConfig() Config {
	return Config{
		IgnoredWords:        []string{"uh", "umm", "hmm", "haan"},
		CommandWords:        []string{"wait", "stop", "no", "hold"},
		ConfidenceThreshold: 0.3,
	}
}

func newTestEngine(t *testing.T, agent Agent) (*Engine, *history.Store) {
	t.Helper()
	hist := history.NewStore(1000)
	e, err := New(testConfig(), agent, zerolog.Nop(), hist)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, hist
}

func event(transcript string, confidence float64) types.TranscriptionEvent {
	return types.TranscriptionEvent{Transcript: transcript, Confidence: confidence}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ConfidenceThreshold = 1.5
	if _, err := New(cfg, nil, zerolog.Nop()); !errors.Is(err, ErrBadThreshold) {
		t.Fatalf("expected ErrBadThreshold, got %v", err)
	}

	cfg = testConfig()
	cfg.IgnoredWords = nil
	if _, err := New(cfg, nil, zerolog.Nop()); !errors.Is(err, ErrEmptyWordList) {
		t.Fatalf("expected ErrEmptyWordList, got %v", err)
	}

	cfg = testConfig()
	cfg.CommandWords = []string{"?!", "  "}
	if _, err := New(cfg, nil, zerolog.Nop()); !errors.Is(err, ErrEmptyWordList) {
		t.Fatalf("expected ErrEmptyWordList for unnormalizable commands, got %v", err)
	}
}

func TestFillerWhileSpeakingIgnored(t *testing.T) {
	agent := &mockAgent{}
	e, hist := newTestEngine(t, agent)
	_ = e.OnVADStateChange(true)

	interrupt, err := e.OnTranscriptionEvent(context.Background(), event("uh", 0.8))
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if interrupt {
		t.Fatalf("filler must not interrupt")
	}
	if agent.stopCount() != 0 {
		t.Fatalf("agent must not be stopped")
	}
	recs := hist.List()
	if len(recs) != 1 || recs[0].Action != "ignore" || recs[0].Reason != classify.ReasonFillerOnly {
		t.Fatalf("unexpected record: %+v", recs)
	}
	if !recs[0].AgentSpeaking {
		t.Fatalf("record must capture speaking state at decision time")
	}
}

func TestMeaningfulSpeechStopsAgent(t *testing.T) {
	agent := &mockAgent{}
	e, hist := newTestEngine(t, agent)
	_ = e.OnVADStateChange(true)

	interrupt, err := e.OnTranscriptionEvent(context.Background(), event("tell me about pricing", 0.85))
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if !interrupt {
		t.Fatalf("meaningful speech must interrupt")
	}
	if agent.stopCount() != 1 {
		t.Fatalf("agent stop expected once, got %d", agent.stopCount())
	}
	if recs := hist.List(); recs[0].Reason != classify.ReasonMeaningfulSpeech {
		t.Fatalf("unexpected reason %q", recs[0].Reason)
	}
}

func TestRegisterWhileQuiet(t *testing.T) {
	agent := &mockAgent{}
	e, hist := newTestEngine(t, agent)

	interrupt, err := e.OnTranscriptionEvent(context.Background(), event("umm", 0.7))
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if interrupt {
		t.Fatalf("quiet agent is never interrupted")
	}
	if recs := hist.List(); recs[0].Action != "register" {
		t.Fatalf("expected register, got %+v", recs[0])
	}
}

func TestCommandWordAmongFillers(t *testing.T) {
	agent := &mockAgent{}
	e, hist := newTestEngine(t, agent)
	_ = e.OnVADStateChange(true)

	interrupt, _ := e.OnTranscriptionEvent(context.Background(), event("umm okay stop", 0.82))
	if !interrupt {
		t.Fatalf("command word must interrupt")
	}
	if recs := hist.List(); recs[0].Reason != classify.ReasonCommandWord {
		t.Fatalf("unexpected reason %q", recs[0].Reason)
	}
}

func TestLowConfidenceCommandIgnored(t *testing.T) {
	agent := &mockAgent{}
	e, hist := newTestEngine(t, agent)
	_ = e.OnVADStateChange(true)

	interrupt, _ := e.OnTranscriptionEvent(context.Background(), event("stop please", 0.2))
	if interrupt {
		t.Fatalf("low confidence must not interrupt")
	}
	if recs := hist.List(); recs[0].Reason != classify.ReasonLowConfidence {
		t.Fatalf("unexpected reason %q", recs[0].Reason)
	}
}

func TestEmptyTranscriptIgnored(t *testing.T) {
	e, hist := newTestEngine(t, &mockAgent{})
	_ = e.OnVADStateChange(true)

	interrupt, _ := e.OnTranscriptionEvent(context.Background(), event("", 0.9))
	if interrupt {
		t.Fatalf("empty transcript must not interrupt")
	}
	if recs := hist.List(); recs[0].Reason != classify.ReasonEmptyTranscript {
		t.Fatalf("unexpected reason %q", recs[0].Reason)
	}
}

func TestInvalidConfidenceRejectedAsIgnore(t *testing.T) {
	e, hist := newTestEngine(t, &mockAgent{})
	_ = e.OnVADStateChange(true)

	interrupt, err := e.OnTranscriptionEvent(context.Background(), event("stop", 1.5))
	if err != nil {
		t.Fatalf("invalid input must not error the caller: %v", err)
	}
	if interrupt {
		t.Fatalf("invalid input must not interrupt")
	}
	if recs := hist.List(); recs[0].Reason != classify.ReasonInvalidInput {
		t.Fatalf("unexpected reason %q", recs[0].Reason)
	}
}

func TestStopFailureStillReturnsTrue(t *testing.T) {
	agent := &mockAgent{stopErr: errors.New("tts pipeline gone")}
	e, _ := newTestEngine(t, agent)
	_ = e.OnVADStateChange(true)

	interrupt, err := e.OnTranscriptionEvent(context.Background(), event("stop", 0.9))
	if err != nil {
		t.Fatalf("stop failure must not surface: %v", err)
	}
	if !interrupt {
		t.Fatalf("decision must survive a failing stop action")
	}
}

func TestInterruptCallback(t *testing.T) {
	e, _ := newTestEngine(t, &mockAgent{})
	_ = e.OnVADStateChange(true)

	var got []classify.Decision
	e.SetInterruptCallback(func(ev types.TranscriptionEvent, dec classify.Decision) {
		got = append(got, dec)
	})

	_, _ = e.OnTranscriptionEvent(context.Background(), event("uh", 0.8))
	if len(got) != 0 {
		t.Fatalf("callback must not fire on ignore")
	}
	_, _ = e.OnTranscriptionEvent(context.Background(), event("stop", 0.9))
	if len(got) != 1 || got[0].Action != classify.ActionInterrupt {
		t.Fatalf("callback expected once with interrupt, got %+v", got)
	}
}

func TestCallbackPanicRecovered(t *testing.T) {
	e, _ := newTestEngine(t, &mockAgent{})
	_ = e.OnVADStateChange(true)
	e.SetInterruptCallback(func(ev types.TranscriptionEvent, dec classify.Decision) {
		panic("observer bug")
	})

	interrupt, err := e.OnTranscriptionEvent(context.Background(), event("stop", 0.9))
	if err != nil || !interrupt {
		t.Fatalf("callback panic must not affect the decision: %v %v", interrupt, err)
	}
}

func TestWordListSwapTakesEffect(t *testing.T) {
	e, _ := newTestEngine(t, &mockAgent{})
	_ = e.OnVADStateChange(true)

	interrupt, _ := e.OnTranscriptionEvent(context.Background(), event("banana", 0.9))
	if !interrupt {
		t.Fatalf("non-filler should interrupt before swap")
	}

	if err := e.UpdateIgnoredWords([]string{"banana"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	interrupt, _ = e.OnTranscriptionEvent(context.Background(), event("banana", 0.9))
	if interrupt {
		t.Fatalf("swapped filler list should ignore banana")
	}

	if err := e.UpdateCommandWords([]string{"banana"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	interrupt, _ = e.OnTranscriptionEvent(context.Background(), event("banana", 0.9))
	if !interrupt {
		t.Fatalf("command list wins after swap")
	}
}

func TestUpdateRejectsEmptyList(t *testing.T) {
	e, _ := newTestEngine(t, &mockAgent{})
	if err := e.UpdateIgnoredWords([]string{"?!"}); !errors.Is(err, ErrEmptyWordList) {
		t.Fatalf("expected ErrEmptyWordList, got %v", err)
	}
}

func TestStatsSnapshot(t *testing.T) {
	e, _ := newTestEngine(t, &mockAgent{})
	_ = e.OnVADStateChange(true)

	_, _ = e.OnTranscriptionEvent(context.Background(), event("uh", 0.8))
	_, _ = e.OnTranscriptionEvent(context.Background(), event("stop", 0.9))
	_ = e.OnVADStateChange(false)
	_, _ = e.OnTranscriptionEvent(context.Background(), event("hello", 0.9))

	s := e.Stats()
	if s.TotalEvents != 3 || s.Ignored != 1 || s.Interrupted != 1 || s.Registered != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.AgentSpeaking {
		t.Fatalf("stats must reflect current state")
	}

	// Idempotent without intervening events.
	if s2 := e.Stats(); s2 != s {
		t.Fatalf("stats snapshot changed without events: %+v vs %+v", s2, s)
	}
}

func TestShutdownLifecycle(t *testing.T) {
	e, _ := newTestEngine(t, &mockAgent{})

	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	// Idempotent.
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	if _, err := e.OnTranscriptionEvent(context.Background(), event("stop", 0.9)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := e.OnVADStateChange(true); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := e.UpdateCommandWords([]string{"stop"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestConcurrentEventsOneRecordEach(t *testing.T) {
	const n = 64
	e, hist := newTestEngine(t, &mockAgent{})
	_ = e.OnVADStateChange(true)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr := "uh"
			if i%3 == 0 {
				tr = fmt.Sprintf("question %d", i)
			}
			if _, err := e.OnTranscriptionEvent(context.Background(), event(tr, 0.8)); err != nil {
				t.Errorf("event %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := hist.Len(); got != n {
		t.Fatalf("expected %d records, got %d", n, got)
	}
	if s := e.Stats(); s.TotalEvents != n {
		t.Fatalf("expected %d total events, got %d", n, s.TotalEvents)
	}

	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown after load: %v", err)
	}
}

func TestIndependentEngines(t *testing.T) {
	e1, _ := newTestEngine(t, &mockAgent{})
	e2, _ := newTestEngine(t, &mockAgent{})

	_ = e1.OnVADStateChange(true)
	if e2.Stats().AgentSpeaking {
		t.Fatalf("engines must not share state")
	}

	_, _ = e1.OnTranscriptionEvent(context.Background(), event("hello", 0.9))
	if e2.Stats().TotalEvents != 0 {
		t.Fatalf("engines must not share counters")
	}
}
