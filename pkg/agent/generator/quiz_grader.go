package generator

import (
	"context"
	"fmt"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/llm"
	"ai-studypartner-be/pkg/store"
)

const graderInstruction = `You are grading a student's exam submission.
The deterministic score below is final; restate it exactly.
For each missed or unanswered question, give the correct answer from the key with a one-line explanation.
Blank and wrong answers get zero credit. Never award partial credit.`

// QuizGraderGenerator grades the user's latest message against the exam the
// assistant most recently asked, scoring deterministically against the stored
// answer key. It consumes the sticky override that routed here.
type QuizGraderGenerator struct {
	provider llm.LLMProvider
}

func NewQuizGraderGenerator(provider llm.LLMProvider) *QuizGraderGenerator {
	return &QuizGraderGenerator{provider: provider}
}

func (g *QuizGraderGenerator) Mode() string { return store.ModeQuizGrader }

func (g *QuizGraderGenerator) Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*Result, error) {
	// The exam is the most recent assistant message before this submission.
	exam := st.LatestAssistantMessage()
	submission := st.LatestUserMessage()

	clearSticky := state.Patch{StickyNextMode: state.Clear()}

	// A key that parses to nothing (absent, the missing-key marker, or prose
	// like "the correct answers are A and B") cannot be scored line by line;
	// forcing it through Score would grade every submission 0/0.
	key := ParseAnswers(st.QuizAnswerKey)

	if len(key) == 0 {
		// No usable key; grade with the model against the exam text alone.
		response, err := g.provider.Chat(ctx, []llm.Message{
			{Role: "system", Content: graderInstruction},
			{Role: "user", Content: fmt.Sprintf("Exam:\n%s\n\nSubmission:\n%s\n\nNo answer key is available; grade strictly from the exam.", exam, submission)},
		})
		if err != nil {
			return nil, err
		}
		return &Result{Response: response, Patch: clearSticky}, nil
	}

	report := Score(key, ParseAnswers(submission))

	response, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: graderInstruction},
		{Role: "user", Content: fmt.Sprintf(
			"Exam:\n%s\n\nAnswer key:\n%s\n\nScore: %s\n%s\n\nSubmission:\n%s",
			exam, st.QuizAnswerKey, report.String(), formatScoreSummary(report), submission)},
	})
	if err != nil {
		// Deterministic grading still stands when phrasing fails.
		response = fmt.Sprintf("Score: %s\n%s", report.String(), formatScoreSummary(report))
	}

	return &Result{Response: response, Patch: clearSticky}, nil
}
