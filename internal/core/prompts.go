package core

import (
	"fmt"
	"strings"

	"carenova/pkg"
)

// prompts.go defines the instruction prompts sent to the language model.
// Keeping them in a separate file makes them easy to tweak without touching
// the rest of the pipeline.

// Disclaimer is the fixed sentence every analysis report must carry.
const Disclaimer = "This is not a medical diagnosis. Consult a healthcare professional."

const analysisPromptFormat = `You are Carenova, a cautious AI healthcare assistant.

STRICT RULES:
- Use ONLY the medical context
- Never invent diseases
- Never confirm a diagnosis
- Never prescribe medication
- Provide safe guidance only

Medical Context:
%s

User Symptoms:
%s

Return ONLY valid JSON.

Schema:

{
"possible_conditions": ["condition1","condition2"],
"explanation": ["reason linking symptom to condition"],
"home_care_tips": ["safe practical advice"],
"when_to_see_doctor": ["clear warning signs"],
"disclaimer": "%s"
}

IMPORTANT:
- Suggest ONLY 2-4 conditions
- No markdown
- No extra commentary
- Output MUST be valid JSON
`

const followupPromptFormat = `You are a healthcare assistant.

User symptoms:
%s

Task:
- Identify the symptom category (metabolic, respiratory, digestive, skin, neurological, etc.)
- Ask ONLY %d relevant follow-up questions
- Questions must be short and simple
- Avoid generic questions like fever/cough unless relevant
- Do NOT give advice or diagnoses

Return ONLY the questions, one per line.
`

// buildAnalysisPrompt composes the grounded analysis prompt.  Each chunk is
// tagged with its source; with no chunks the context block states that no
// strongly matching material was found, so the model cannot pretend to be
// grounded.
func buildAnalysisPrompt(query string, chunks []pkg.RetrievedChunk) string {
	var context string
	if len(chunks) == 0 {
		context = "(no strongly matching medical context found)"
	} else {
		parts := make([]string, 0, len(chunks))
		for _, c := range chunks {
			parts = append(parts, fmt.Sprintf("Source: %s\n%s", c.Source, c.Text))
		}
		context = strings.Join(parts, "\n\n")
	}
	return fmt.Sprintf(analysisPromptFormat, context, query, Disclaimer)
}

// buildFollowupPrompt composes the adaptive follow-up question prompt.
func buildFollowupPrompt(symptoms string, n int) string {
	return fmt.Sprintf(followupPromptFormat, symptoms, n)
}

// CombineQuery joins the initial symptoms and follow-up answers into the
// single query string used for retrieval, analysis and cache keys.
func CombineQuery(initial string, answers []string) string {
	if len(answers) == 0 {
		return initial
	}
	return initial + " | " + strings.Join(answers, " | ")
}
