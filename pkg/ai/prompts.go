package ai

import (
	"fmt"
	"strings"
)

const evaluatorSystemPrompt = "You are an expert prompt engineer. You grade prompts written by workshop participants " +
	"and always answer with a single JSON object matching the requested schema. Be constructive and educational."

const toolSystemPrompt = "You are an expert prompt engineer tasked with evaluating prompts. Use the provided tools to " +
	"record a score for every criterion, the overall effectiveness score, detailed feedback, 3-5 improvements and an " +
	"improved prompt. Call complete_evaluation once every field has been recorded."

const sustainabilityGuidance = `
SUSTAINABILITY EVALUATION GUIDANCE:
When evaluating SUSTAINABILITY, consider:
- Token Efficiency: Does the prompt request only necessary information without redundancy?
- Clarity vs. Verbosity: Is it concise yet clear, avoiding over-specification?
- Resource Optimization: Does it structure requests to minimize API calls and token usage?
- Output Scope: Does it avoid requesting unnecessarily long or detailed responses?
- Reusability: Could this prompt pattern be reused efficiently for similar tasks?

Score higher for prompts that achieve their goals with minimal resource consumption while maintaining effectiveness.
`

func hasSustainabilityCriterion(criteria []Criterion) bool {
	for _, criterion := range criteria {
		if strings.Contains(strings.ToLower(criterion.Name), "sustainability") {
			return true
		}
	}
	return false
}

func buildEvaluationPrompt(input EvaluationInput, criteria []Criterion) string {
	builder := strings.Builder{}
	builder.WriteString("Evaluate the following prompt based on how well it would achieve the specified goal.\n\n")
	builder.WriteString("USER'S PROMPT:\n")
	builder.WriteString(fmt.Sprintf("%q\n\n", input.Prompt))
	builder.WriteString("GOAL TO ACHIEVE:\n")
	builder.WriteString(fmt.Sprintf("%q\n\n", input.Goal))
	builder.WriteString("EVALUATION CRITERIA (rate each 0-100):\n")
	for i, criterion := range criteria {
		builder.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, strings.ToUpper(criterion.Name), criterion.Description))
	}
	builder.WriteString("\nFor each criterion, analyze how well the prompt would enable an AI to achieve that aspect of the goal.\n")
	if hasSustainabilityCriterion(criteria) {
		builder.WriteString(sustainabilityGuidance)
	}
	builder.WriteString("\nCalculate an OVERALL EFFECTIVENESS SCORE (0-100) as a weighted average of the criteria scores.\n\n")
	builder.WriteString("Provide:\n")
	builder.WriteString("- A score for EACH criterion listed above, keyed by the exact criterion name\n")
	builder.WriteString("- Detailed feedback explaining strengths and weaknesses relative to each criterion\n")
	builder.WriteString("- 3-5 specific improvements that could be made to better meet the criteria\n")
	builder.WriteString("- An improved version of the prompt that would more effectively achieve the goal\n")
	return builder.String()
}

func buildStructuredPrompt(input EvaluationInput, criteria []Criterion, schemaDocument []byte) string {
	return buildEvaluationPrompt(input, criteria) +
		"\nReturn only JSON that validates against this schema:\n" + string(schemaDocument)
}
