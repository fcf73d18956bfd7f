// Package analysis runs the autonomous four-phase paper analysis chain and
// the pipeline that turns its output into a fact-checked podcast script.
package analysis

import (
	"fmt"
	"time"
)

// Phase is one stage of the generation chain. Phases run strictly in
// order: each prompt interpolates the text produced by the earlier phases,
// so none can run early or in parallel.
type Phase string

const (
	PhaseAssessment Phase = "assessment"
	PhaseExtraction Phase = "extraction"
	PhaseStructure  Phase = "structure"
	PhaseValidation Phase = "validation"
)

// Sequence is the fixed phase order of a run.
var Sequence = []Phase{PhaseAssessment, PhaseExtraction, PhaseStructure, PhaseValidation}

// PhaseResult records what one phase produced. Simulated is carried through
// from the gateway response so substituted output stays visible.
type PhaseResult struct {
	Phase       Phase
	Text        string
	Temperature float32
	Simulated   bool
}

// Decisions are the fixed labels attached to a completed analysis. The
// underlying "decision" content is opaque natural language inside the phase
// texts; nothing parses or branches on it.
type Decisions struct {
	ComplexityLevel       string
	TargetAudience        string
	StructureOptimization string
	QualityAssurance      string
}

func decisionLabels() Decisions {
	return Decisions{
		ComplexityLevel:       "determined_autonomously",
		TargetAudience:        "selected_intelligently",
		StructureOptimization: "self_designed",
		QualityAssurance:      "self_validated",
	}
}

// Analysis accumulates the phase results of a single run. It is owned by
// that run; the analyzer keeps nothing after handing it back.
type Analysis struct {
	Phases    []PhaseResult
	Decisions Decisions
	Timestamp time.Time
}

// PhaseText returns the text produced by the named phase, or "" when that
// phase has not completed.
func (a *Analysis) PhaseText(phase Phase) string {
	for _, result := range a.Phases {
		if result.Phase == phase {
			return result.Text
		}
	}
	return ""
}

// Complete reports whether all four phases ran.
func (a *Analysis) Complete() bool {
	return len(a.Phases) == len(Sequence)
}

// PhaseError names the phase whose gateway call failed and wraps the cause.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
