package analysis

import (
	"context"
	"fmt"
	"log"

	"github.com/fabfab/papercast/factcheck"
	"github.com/fabfab/papercast/llm"
)

// Result bundles everything a completed pipeline run produced. When Run
// returns an error, Analysis still carries whichever phases completed;
// Script and Report are only set once their stage succeeded.
type Result struct {
	Analysis        *Analysis
	Script          string
	ScriptSimulated bool
	Report          factcheck.Report
}

// Degraded reports whether any generation in the run was substituted by an
// offline placeholder rather than produced by a live model.
func (r *Result) Degraded() bool {
	if r.ScriptSimulated {
		return true
	}
	if r.Analysis == nil {
		return false
	}
	for _, phase := range r.Analysis.Phases {
		if phase.Simulated {
			return true
		}
	}
	return false
}

// Pipeline chains the four-phase analysis, the script synthesis, and the
// semantic fact-check of the script against the source paper.
type Pipeline struct {
	analyzer *Analyzer
	llm      llm.Client
	checker  *factcheck.Checker
	logger   *log.Logger
}

func NewPipeline(client llm.Client, checker *factcheck.Checker, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		analyzer: NewAnalyzer(client, logger),
		llm:      client,
		checker:  checker,
		logger:   logger,
	}
}

// Run processes one paper end to end. Gateway failures are not retried:
// the first failed call aborts the run and the error names the stage.
func (p *Pipeline) Run(ctx context.Context, source string) (*Result, error) {
	result := &Result{}

	analysisResult, err := p.analyzer.AnalyzePaper(ctx, source)
	result.Analysis = analysisResult
	if err != nil {
		return result, fmt.Errorf("analyze paper: %w", err)
	}

	p.logger.Printf("analysis complete, synthesizing script segment")

	scriptResp, err := p.llm.Generate(ctx, llm.Request{
		Prompt: scriptPrompt(
			analysisResult.PhaseText(PhaseAssessment),
			analysisResult.PhaseText(PhaseStructure),
		),
		SystemPrompt: scriptwriterSystemPrompt,
	})
	if err != nil {
		return result, fmt.Errorf("synthesize script: %w", err)
	}
	result.Script = scriptResp.Content
	result.ScriptSimulated = scriptResp.Simulated

	report, err := p.checker.Validate(ctx, result.Script, source)
	if err != nil {
		return result, fmt.Errorf("fact-check script: %w", err)
	}
	result.Report = report

	p.logger.Printf("pipeline run complete: factual accuracy %.1f%% (%s)", report.FactualAccuracy, report.Status)
	return result, nil
}
