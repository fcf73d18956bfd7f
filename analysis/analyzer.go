package analysis

import (
	"context"
	"log"
	"time"

	"github.com/fabfab/papercast/llm"
)

const (
	assessmentTemperature float32 = 0.3
	extractionTemperature float32 = llm.DefaultTemperature
	structureTemperature  float32 = 0.5
	validationTemperature float32 = 0.2

	extractionMaxTokens = 3000
)

// Analyzer runs the four-phase autonomous analysis over a paper. It holds
// no per-run state: every intermediate result lives in the Analysis value
// owned by the run, so one Analyzer can serve concurrent runs as long as
// the gateway is safe for concurrent use.
type Analyzer struct {
	llm    llm.Client
	logger *log.Logger
}

func NewAnalyzer(client llm.Client, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{llm: client, logger: logger}
}

type phaseSpec struct {
	phase       Phase
	system      string
	temperature float32
	maxTokens   int
	prompt      func(content string, prior *Analysis) string
}

func phaseSpecs() []phaseSpec {
	return []phaseSpec{
		{
			phase:       PhaseAssessment,
			system:      analystSystemPrompt,
			temperature: assessmentTemperature,
			prompt: func(content string, _ *Analysis) string {
				return assessmentPrompt(content)
			},
		},
		{
			phase:       PhaseExtraction,
			system:      analystSystemPrompt,
			temperature: extractionTemperature,
			maxTokens:   extractionMaxTokens,
			prompt: func(content string, prior *Analysis) string {
				return extractionPrompt(prior.PhaseText(PhaseAssessment), content)
			},
		},
		{
			phase:       PhaseStructure,
			system:      producerSystemPrompt,
			temperature: structureTemperature,
			prompt: func(_ string, prior *Analysis) string {
				return structurePrompt(prior.PhaseText(PhaseAssessment), prior.PhaseText(PhaseExtraction))
			},
		},
		{
			phase:       PhaseValidation,
			system:      analystSystemPrompt,
			temperature: validationTemperature,
			prompt: func(_ string, prior *Analysis) string {
				return validationPrompt(prior.PhaseText(PhaseStructure))
			},
		},
	}
}

// AnalyzePaper executes the phase chain against the paper content. A
// failed gateway call aborts the chain; the returned Analysis then carries
// the phases that did complete, alongside a *PhaseError naming the one
// that failed.
func (a *Analyzer) AnalyzePaper(ctx context.Context, content string) (*Analysis, error) {
	result := &Analysis{
		Phases:    make([]PhaseResult, 0, len(Sequence)),
		Timestamp: time.Now(),
	}

	for _, spec := range phaseSpecs() {
		a.logger.Printf("running %s phase (temperature %.1f)", spec.phase, spec.temperature)

		resp, err := a.llm.Generate(ctx, llm.Request{
			Prompt:       spec.prompt(content, result),
			SystemPrompt: spec.system,
			MaxTokens:    spec.maxTokens,
			Temperature:  spec.temperature,
		})
		if err != nil {
			return result, &PhaseError{Phase: spec.phase, Err: err}
		}

		result.Phases = append(result.Phases, PhaseResult{
			Phase:       spec.phase,
			Text:        resp.Content,
			Temperature: spec.temperature,
			Simulated:   resp.Simulated,
		})
	}

	result.Decisions = decisionLabels()
	return result, nil
}
