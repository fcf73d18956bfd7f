package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/fabfab/papercast/llm"
)

// scriptedClient replays canned responses in order and records every
// request it receives. failAt aborts the call with that 1-based ordinal.
type scriptedClient struct {
	requests []llm.Request
	failAt   int
	err      error
}

func (c *scriptedClient) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	c.requests = append(c.requests, req)
	if c.failAt > 0 && len(c.requests) == c.failAt {
		err := c.err
		if err == nil {
			err = fmt.Errorf("%w: injected failure", llm.ErrServiceUnavailable)
		}
		return llm.Response{}, err
	}
	return llm.Response{
		Content: fmt.Sprintf("output-%d", len(c.requests)),
		Model:   "scripted",
	}, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestAnalyzePaperRunsAllPhasesInOrder(t *testing.T) {
	client := &scriptedClient{}
	analyzer := NewAnalyzer(client, testLogger())

	result, err := analyzer.AnalyzePaper(context.Background(), "A paper about transformers.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Complete() {
		t.Fatalf("expected all %d phases, got %d", len(Sequence), len(result.Phases))
	}
	for i, phase := range Sequence {
		if result.Phases[i].Phase != phase {
			t.Errorf("phase %d = %s, want %s", i, result.Phases[i].Phase, phase)
		}
	}

	wantTemps := []float32{0.3, 0.7, 0.5, 0.2}
	for i, want := range wantTemps {
		if got := client.requests[i].Temperature; got != want {
			t.Errorf("phase %s temperature = %.1f, want %.1f", Sequence[i], got, want)
		}
	}

	if got := client.requests[1].MaxTokens; got != extractionMaxTokens {
		t.Errorf("extraction max tokens = %d, want %d", got, extractionMaxTokens)
	}

	if result.Decisions.ComplexityLevel != "determined_autonomously" {
		t.Errorf("unexpected decision label: %q", result.Decisions.ComplexityLevel)
	}
	if result.Timestamp.IsZero() {
		t.Error("expected a run timestamp")
	}
}

func TestAnalyzePaperChainsPriorPhaseOutputs(t *testing.T) {
	client := &scriptedClient{}
	analyzer := NewAnalyzer(client, testLogger())

	if _, err := analyzer.AnalyzePaper(context.Background(), "paper content"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	extractionReq := client.requests[1]
	if !strings.Contains(extractionReq.Prompt, "output-1") {
		t.Error("extraction prompt missing assessment output")
	}

	structureReq := client.requests[2]
	if !strings.Contains(structureReq.Prompt, "output-1") {
		t.Error("structure prompt missing assessment output")
	}
	if !strings.Contains(structureReq.Prompt, "output-2") {
		t.Error("structure prompt missing extraction output")
	}
	if !strings.Contains(structureReq.SystemPrompt, "podcast producer") {
		t.Errorf("structure phase should use the producer persona, got %q", structureReq.SystemPrompt)
	}

	validationReq := client.requests[3]
	if !strings.Contains(validationReq.Prompt, "output-3") {
		t.Error("validation prompt missing structure output")
	}
	if !strings.Contains(validationReq.SystemPrompt, "autonomous research AI agent") {
		t.Errorf("validation phase should use the analyst persona, got %q", validationReq.SystemPrompt)
	}
}

func TestAnalyzePaperTruncatesAssessmentExcerpt(t *testing.T) {
	client := &scriptedClient{}
	analyzer := NewAnalyzer(client, testLogger())

	content := strings.Repeat("a", assessmentExcerptLimit) + "TAIL_MARKER"
	if _, err := analyzer.AnalyzePaper(context.Background(), content); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(client.requests[0].Prompt, "TAIL_MARKER") {
		t.Error("assessment prompt should only include the leading excerpt")
	}
	if !strings.Contains(client.requests[1].Prompt, "TAIL_MARKER") {
		t.Error("extraction prompt should include the full paper text")
	}
}

func TestAnalyzePaperFailureReturnsPartialPhases(t *testing.T) {
	client := &scriptedClient{failAt: 3}
	analyzer := NewAnalyzer(client, testLogger())

	result, err := analyzer.AnalyzePaper(context.Background(), "paper content")
	if err == nil {
		t.Fatal("expected error when a phase call fails")
	}

	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected *PhaseError, got %T", err)
	}
	if phaseErr.Phase != PhaseStructure {
		t.Errorf("failed phase = %s, want %s", phaseErr.Phase, PhaseStructure)
	}
	if !errors.Is(err, llm.ErrServiceUnavailable) {
		t.Errorf("expected wrapped ErrServiceUnavailable, got %v", err)
	}

	if result == nil {
		t.Fatal("expected partial analysis alongside the error")
	}
	if len(result.Phases) != 2 {
		t.Fatalf("expected 2 completed phases, got %d", len(result.Phases))
	}
	if result.PhaseText(PhaseStructure) != "" {
		t.Error("failed phase should have no recorded text")
	}
	if result.Complete() {
		t.Error("partial analysis should not report complete")
	}
}
