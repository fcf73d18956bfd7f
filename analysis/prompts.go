package analysis

import "fmt"

// Only the leading slice of the paper goes into the assessment prompt; the
// later phases see the full text.
const assessmentExcerptLimit = 3000

const analystSystemPrompt = "You are an autonomous research AI agent capable of independent decision-making. " +
	"Analyze research papers and make intelligent choices about content processing and presentation strategies."

const producerSystemPrompt = "You are an expert podcast producer and educational content designer. " +
	"Create engaging, accessible content structures."

const scriptwriterSystemPrompt = "You are a professional podcast scriptwriter creating engaging educational content."

func assessmentPrompt(content string) string {
	if len(content) > assessmentExcerptLimit {
		content = content[:assessmentExcerptLimit]
	}

	return fmt.Sprintf(`As an autonomous research AI agent, analyze this paper and make strategic decisions about how to process it.

Determine:
1. Paper complexity level (beginner/intermediate/advanced)
2. Target audience for podcast adaptation
3. Key concepts that need explanation
4. Optimal podcast structure (number of segments, focus areas)
5. Fact-checking priorities

Paper content:
%s

Provide your autonomous assessment and processing strategy.`, content)
}

func extractionPrompt(assessment, content string) string {
	return fmt.Sprintf(`Based on your assessment, extract and organize the key information from this research paper.

Your assessment:
%s

Create:
1. Executive summary
2. Key findings and contributions
3. Methodology overview
4. Practical implications
5. Technical details requiring explanation

Adapt your extraction strategy based on the complexity level you identified.

Paper content:
%s`, assessment, content)
}

func structurePrompt(assessment, extraction string) string {
	return fmt.Sprintf(`Design an optimal podcast structure for this research paper.
Make autonomous decisions about:

1. Number of segments and their focus
2. Host personality assignments
3. Dialogue style and complexity level
4. Key explanations needed for general audience
5. Conversation flow and transitions

Create a detailed podcast outline that maximizes engagement and understanding.

Research analysis: %s
Key content: %s`, assessment, extraction)
}

func validationPrompt(structure string) string {
	return fmt.Sprintf(`Review and validate the podcast structure you've created.

Self-assess:
1. Will this structure effectively communicate the research?
2. Is the complexity level appropriate for the target audience?
3. Are there any gaps in explanation or flow?
4. Should any adjustments be made to improve quality?

Provide self-corrections if needed, demonstrating autonomous quality control.

Proposed structure: %s`, structure)
}

func scriptPrompt(assessment, structure string) string {
	return fmt.Sprintf(`Based on your autonomous analysis, generate the first segment of a podcast script.

Analysis: %s
Structure: %s

Create natural dialogue between two AI hosts introducing and explaining this research.`, assessment, structure)
}
