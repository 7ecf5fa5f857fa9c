// Package classify implements the interrupt decision rules. Classification is
// a pure function of its inputs: no state, no I/O, safe to run outside any lock.
package classify

import (
	"bargein/interrupt/internal/wordlist"
)

// Action is the tri-state outcome of classifying one transcription event.
type Action int

const (
	ActionIgnore Action = iota
	ActionRegister
	ActionInterrupt
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionRegister:
		return "register"
	case ActionInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Canonical reason strings. These appear verbatim in the decision log.
const (
	ReasonEmptyTranscript  = "empty transcript"
	ReasonLowConfidence    = "low confidence"
	ReasonAgentNotSpeaking = "agent not speaking"
	ReasonCommandWord      = "command word present"
	ReasonFillerOnly       = "filler-only utterance"
	ReasonMeaningfulSpeech = "meaningful speech while agent speaking"
	ReasonInvalidInput     = "invalid input"
)

// Decision pairs the chosen action with a human-readable reason.
type Decision struct {
	Action Action
	Reason string
}

// Input carries everything a classification depends on, snapshotted by the
// caller before rule evaluation.
type Input struct {
	Tokens        []string
	Confidence    float64
	AgentSpeaking bool
	Ignored       *wordlist.Set
	Commands      *wordlist.Set
	Threshold     float64
}

// Classify evaluates the rules in order; the first matching rule wins.
//
//  1. empty transcript            -> ignore
//  2. confidence below threshold  -> ignore (strict <, equal passes)
//  3. agent not speaking          -> register
//  4. any command word            -> interrupt ("uh stop" interrupts)
//  5. all tokens are fillers      -> ignore
//  6. otherwise                   -> interrupt
func Classify(in Input) Decision {
	if len(in.Tokens) == 0 {
		return Decision{Action: ActionIgnore, Reason: ReasonEmptyTranscript}
	}
	if in.Confidence < in.Threshold {
		return Decision{Action: ActionIgnore, Reason: ReasonLowConfidence}
	}
	if !in.AgentSpeaking {
		return Decision{Action: ActionRegister, Reason: ReasonAgentNotSpeaking}
	}
	if in.Commands.ContainsAny(in.Tokens) {
		return Decision{Action: ActionInterrupt, Reason: ReasonCommandWord}
	}
	if in.Ignored.ContainsAll(in.Tokens) {
		return Decision{Action: ActionIgnore, Reason: ReasonFillerOnly}
	}
	return Decision{Action: ActionInterrupt, Reason: ReasonMeaningfulSpeech}
}
