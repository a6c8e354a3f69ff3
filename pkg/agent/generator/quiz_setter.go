package generator

import (
	"context"
	"fmt"
	"strings"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/llm"
	"ai-studypartner-be/pkg/store"
)

// AnswerKeyDivider splits the generated output into the user-visible quiz and
// the hidden answer key. It must appear verbatim in the model output.
const AnswerKeyDivider = "### ANSWER KEY ###"

// MissingKeyMarker is stored when the model failed to emit the divider. The
// turn still succeeds; grading later reports the key as unavailable.
const MissingKeyMarker = "Error: Answer Key not generated."

const quizQuestionCount = 5

var quizInstruction = fmt.Sprintf(`Create a multiple-choice exam of exactly %d questions from the provided material.
Each question has options A-D with exactly one correct answer.
After the last question, output the literal line:
%s
then the answer key as numbered lines like "1. A - short explanation".
Everything before the divider is shown to the student; everything after is hidden.`, quizQuestionCount, AnswerKeyDivider)

// QuizSetterGenerator produces an exam from the uploaded material, splits off
// the hidden key and arms the grader for the next turn.
type QuizSetterGenerator struct {
	provider llm.LLMProvider
}

func NewQuizSetterGenerator(provider llm.LLMProvider) *QuizSetterGenerator {
	return &QuizSetterGenerator{provider: provider}
}

func (g *QuizSetterGenerator) Mode() string { return store.ModeQuizSetter }

func (g *QuizSetterGenerator) Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*Result, error) {
	output, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: quizInstruction},
		{Role: "user", Content: contextBlock},
	})
	if err != nil {
		return nil, err
	}

	quiz, key := SplitQuiz(output)

	return &Result{
		Response: quiz,
		Patch: state.Patch{
			QuizAnswerKey:  state.Set(key),
			StickyNextMode: state.Set(store.ModeQuizGrader),
		},
	}, nil
}

// SplitQuiz partitions generated output on the divider. A missing divider
// never fails the turn: the whole output becomes the visible quiz and the
// key is set to the explicit missing marker.
func SplitQuiz(output string) (quiz string, key string) {
	idx := strings.Index(output, AnswerKeyDivider)
	if idx < 0 {
		return strings.TrimSpace(output), MissingKeyMarker
	}
	quiz = strings.TrimSpace(output[:idx])
	key = strings.TrimSpace(output[idx+len(AnswerKeyDivider):])
	if key == "" {
		key = MissingKeyMarker
	}
	return quiz, key
}
