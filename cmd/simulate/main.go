// Command simulate drives the engine through a scripted conversation and
// prints every decision, ending with a stats summary. Useful for eyeballing
// rule behavior without a recognizer attached.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"bargein/interrupt/internal/config"
	"bargein/interrupt/internal/decisionlog"
	"bargein/interrupt/internal/engine"
	"bargein/interrupt/internal/history"
	"bargein/interrupt/internal/types"
)

type step struct {
	// speak toggles the simulated agent's speaking state before the utterance.
	speak *bool
	// utterance is what the user says; empty means state change only.
	utterance  string
	confidence float64
	note       string
}

func b(v bool) *bool { return &v }

var script = []step{
	{speak: b(true), note: "agent begins its pitch"},
	{utterance: "uh", confidence: 0.8, note: "filler while agent speaks"},
	{utterance: "umm hmm", confidence: 0.75, note: "more fillers"},
	{utterance: "wait one second", confidence: 0.85, note: "real interruption"},
	{speak: b(false), note: "agent stopped"},
	{utterance: "tell me about pricing", confidence: 0.9, note: "user turn"},
	{speak: b(true), note: "agent answers"},
	{utterance: "umm okay stop", confidence: 0.82, note: "command word wins over fillers"},
	{speak: b(false)},
	{utterance: "", confidence: 0.9, note: "empty transcript"},
	{speak: b(true)},
	{utterance: "stop please", confidence: 0.2, note: "too low confidence to act on"},
}

type printingAgent struct{}

func (printingAgent) StopSpeaking(ctx context.Context) error {
	fmt.Println("   -> agent stopped speaking")
	return nil
}

func main() {
	logFile := flag.String("log", "", "optional JSONL decision log path")
	flag.Parse()

	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	cfg := config.Load()

	hist := history.NewStore(100)
	sinks := []engine.DecisionSink{hist}
	if *logFile != "" {
		dl, err := decisionlog.Open(*logFile, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log:", err)
			os.Exit(1)
		}
		sinks = append(sinks, dl)
	}

	eng, err := engine.New(engine.Config{
		IgnoredWords:        cfg.Engine.IgnoredWords,
		CommandWords:        cfg.Engine.CommandWords,
		ConfidenceThreshold: cfg.Engine.ConfidenceThreshold,
	}, printingAgent{}, log, sinks...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	for _, st := range script {
		if st.speak != nil {
			_ = eng.OnVADStateChange(*st.speak)
			if *st.speak {
				fmt.Println("\n[agent] speaking...")
			} else {
				fmt.Println("[agent] quiet")
			}
			if st.utterance == "" {
				continue
			}
		}
		interrupt, err := eng.OnTranscriptionEvent(ctx, types.TranscriptionEvent{
			Transcript: st.utterance,
			Confidence: st.confidence,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "event:", err)
			os.Exit(1)
		}
		fmt.Printf("[user] %-28q conf=%.2f interrupt=%-5v %s\n", st.utterance, st.confidence, interrupt, st.note)
	}

	if err := eng.Shutdown(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown:", err)
	}

	stats := eng.Stats()
	fmt.Printf("\nprocessed %d events: %d ignored, %d registered, %d interrupts\n",
		stats.TotalEvents, stats.Ignored, stats.Registered, stats.Interrupted)
	for _, rec := range hist.List() {
		fmt.Printf("  %s %-9s %-40s %s\n", rec.EventID, rec.Action, rec.Reason, rec.Transcript)
	}
}
