package generator

import (
	"context"
	"fmt"
	"strings"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/agent/toolloop"
	"ai-studypartner-be/pkg/llm"
	"ai-studypartner-be/pkg/store"
)

const tutorInstruction = `You are a study tutor. Answer the student's question using the provided context.
Rules:
- If the context does not contain the answer, use the web_search tool to find it. Never answer from memory alone when the context is silent.
- Cite your source: either the uploaded document or the URL a tool returned.
- Use the calculate tool for any arithmetic.
- Keep answers focused and grounded.`

const gradeFeedbackInstruction = `You are grading a quiz. The deterministic score and per-question outcome are given below; restate them faithfully.
Do not change the score. Explain briefly what the correct answers were for missed questions, using the answer key.`

// QueryGenerator is the default route. It runs as a grounded tutor with
// research tools, or flips into a grading sub-mode when the user is
// submitting answers to an active quiz.
type QueryGenerator struct {
	loop     *toolloop.Loop
	provider llm.LLMProvider
}

func NewQueryGenerator(loop *toolloop.Loop, provider llm.LLMProvider) *QueryGenerator {
	return &QueryGenerator{loop: loop, provider: provider}
}

func (g *QueryGenerator) Mode() string { return store.ModeQuery }

func (g *QueryGenerator) Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*Result, error) {
	latest := st.LatestUserMessage()

	// A key that parses to no per-question entries cannot back deterministic
	// grading, so prose keys fall through to the tutor instead of a 0/0.
	if LooksLikeSubmission(latest) {
		if key := ParseAnswers(st.QuizAnswerKey); len(key) > 0 {
			return g.grade(ctx, st, key, latest)
		}
	}

	history := withSystemContext(st.History, tutorInstruction, contextBlock)
	response, err := g.loop.Run(ctx, history, []string{"web_search", "scrape_website", "calculate", "describe_image"})
	if err != nil {
		return nil, err
	}
	return &Result{Response: response}, nil
}

// grade scores deterministically against the stored key, then asks the model
// only to phrase feedback around the fixed score. No tools.
func (g *QueryGenerator) grade(ctx context.Context, st state.TurnState, key map[int]string, submission string) (*Result, error) {
	report := Score(key, ParseAnswers(submission))

	summary := formatScoreSummary(report)
	response, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: gradeFeedbackInstruction},
		{Role: "user", Content: fmt.Sprintf("Answer key:\n%s\n\nScore: %s\n%s\n\nStudent submission:\n%s", st.QuizAnswerKey, report.String(), summary, submission)},
	})
	if err != nil {
		// The score itself never depends on the model.
		response = fmt.Sprintf("Score: %s\n%s", report.String(), summary)
	}
	return &Result{Response: response}, nil
}

func formatScoreSummary(report ScoreReport) string {
	var parts []string
	if len(report.Incorrect) > 0 {
		parts = append(parts, fmt.Sprintf("Incorrect: %v", report.Incorrect))
	}
	if len(report.Unanswered) > 0 {
		parts = append(parts, fmt.Sprintf("Unanswered (counted incorrect): %v", report.Unanswered))
	}
	return strings.Join(parts, "\n")
}

// withSystemContext prepends the generator instruction and context block to a
// copy of the history.
func withSystemContext(history []llm.Message, instruction, contextBlock string) []llm.Message {
	system := instruction
	if contextBlock != "" {
		system = instruction + "\n\nContext:\n" + contextBlock
	}
	out := make([]llm.Message, 0, len(history)+1)
	out = append(out, llm.Message{Role: "system", Content: system})
	out = append(out, history...)
	return out
}
