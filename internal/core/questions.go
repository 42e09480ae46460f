package core

import (
	"context"
	"log/slog"
	"strings"

	"carenova/internal/llm"
	"carenova/internal/metrics"
)

// fallbackQuestions covers the paths where the model produces nothing
// usable: duration, progression, anything-else.
var fallbackQuestions = []string{
	"How long have you had these symptoms?",
	"Are the symptoms getting worse?",
	"Anything else unusual you noticed?",
}

// QuestionGenerator produces adaptive follow-up questions for an initial
// symptom description.  It never returns fewer than the configured count
// and never returns an error: any model failure yields the fixed fallback.
type QuestionGenerator struct {
	llm llm.Completer
	n   int
	log *slog.Logger
}

// NewQuestionGenerator constructs a generator asking for n questions.
func NewQuestionGenerator(client llm.Completer, n int, log *slog.Logger) *QuestionGenerator {
	if n <= 0 {
		n = len(fallbackQuestions)
	}
	return &QuestionGenerator{llm: client, n: n, log: log}
}

// Generate returns exactly n follow-up questions for the given symptoms.
func (g *QuestionGenerator) Generate(ctx context.Context, symptoms string) []string {
	raw, err := g.llm.Complete(ctx, buildFollowupPrompt(symptoms, g.n))
	if err != nil {
		metrics.RecordLLMCall("followups", "error")
		g.log.Warn("follow-up generation failed, using fallback", "error", err)
		return g.fallback()
	}
	questions := parseQuestions(raw, g.n)
	if len(questions) < g.n {
		metrics.RecordLLMCall("followups", "unparseable")
		g.log.Warn("follow-up output unusable, using fallback", "parsed", len(questions))
		return g.fallback()
	}
	metrics.RecordLLMCall("followups", "ok")
	return questions
}

func (g *QuestionGenerator) fallback() []string {
	out := make([]string, 0, g.n)
	for len(out) < g.n {
		out = append(out, fallbackQuestions[len(out)%len(fallbackQuestions)])
	}
	return out
}

// parseQuestions extracts up to max questions from raw model output.  Lines
// are trimmed, leading enumeration markers stripped, and any line without a
// question mark discarded.
func parseQuestions(raw string, max int) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.-) ")
		if !strings.Contains(line, "?") {
			continue
		}
		questions = append(questions, line)
		if len(questions) == max {
			break
		}
	}
	return questions
}
