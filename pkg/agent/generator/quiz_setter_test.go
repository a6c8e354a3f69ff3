package generator

import (
	"context"
	"testing"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/llm"
	"ai-studypartner-be/pkg/store"
)

type scriptedProvider struct {
	response string
	err      error
	history  []llm.Message
}

func (s *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.history = history
	return s.response, s.err
}

func (s *scriptedProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.ToolDef, options ...llm.Option) (*llm.Completion, error) {
	s.history = history
	return &llm.Completion{Content: s.response}, s.err
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func TestSplitQuiz(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantQuiz string
		wantKey  string
	}{
		{
			"divider present",
			"Q1. What is X?\nA) foo B) bar\n\n" + AnswerKeyDivider + "\n1. A - because foo",
			"Q1. What is X?\nA) foo B) bar",
			"1. A - because foo",
		},
		{
			"divider missing marks the key unavailable",
			"Q1. What is X?\nA) foo B) bar",
			"Q1. What is X?\nA) foo B) bar",
			MissingKeyMarker,
		},
		{
			"empty key after divider marks the key unavailable",
			"Q1. What is X?\n" + AnswerKeyDivider + "\n   ",
			"Q1. What is X?",
			MissingKeyMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz, key := SplitQuiz(tt.output)
			if quiz != tt.wantQuiz {
				t.Errorf("quiz = %q, want %q", quiz, tt.wantQuiz)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}

func TestQuizSetterArmsGrader(t *testing.T) {
	provider := &scriptedProvider{
		response: "Q1. Pick one\nA) x B) y\n" + AnswerKeyDivider + "\n1. B - y is right",
	}
	g := NewQuizSetterGenerator(provider)

	st := state.TurnState{SessionID: "s1", UploadedText: "material"}
	result, err := g.Generate(context.Background(), st, nil, "material")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if result.Response != "Q1. Pick one\nA) x B) y" {
		t.Errorf("visible quiz = %q", result.Response)
	}
	if result.Patch.QuizAnswerKey == nil || *result.Patch.QuizAnswerKey != "1. B - y is right" {
		t.Errorf("answer key patch = %v", result.Patch.QuizAnswerKey)
	}
	if result.Patch.StickyNextMode == nil || *result.Patch.StickyNextMode != store.ModeQuizGrader {
		t.Errorf("sticky patch = %v, want %q", result.Patch.StickyNextMode, store.ModeQuizGrader)
	}
}
