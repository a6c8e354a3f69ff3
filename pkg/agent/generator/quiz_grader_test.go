package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/llm"
)

func graderState(key string) state.TurnState {
	return state.TurnState{
		SessionID: "s1",
		History: []llm.Message{
			{Role: "user", Content: "quiz me"},
			{Role: "assistant", Content: "Q1. Pick one\nA) x B) y"},
			{Role: "user", Content: "1. B\n2. A"},
		},
		StickyNextMode: "quiz_grader",
		QuizAnswerKey:  key,
	}
}

func TestGraderClearsStickyMode(t *testing.T) {
	provider := &scriptedProvider{response: "Well done, 2/2."}
	g := NewQuizGraderGenerator(provider)

	result, err := g.Generate(context.Background(), graderState("1. B\n2. A"), nil, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Patch.StickyNextMode == nil || *result.Patch.StickyNextMode != "" {
		t.Errorf("sticky patch = %v, want pointer to empty string", result.Patch.StickyNextMode)
	}
}

func TestGraderDeterministicScoreSurvivesPhrasingFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("upstream down")}
	g := NewQuizGraderGenerator(provider)

	result, err := g.Generate(context.Background(), graderState("1. B\n2. B"), nil, "")
	if err != nil {
		t.Fatalf("Generate should not fail when only phrasing fails: %v", err)
	}
	if !strings.Contains(result.Response, "1/2") {
		t.Errorf("response should carry the deterministic score, got %q", result.Response)
	}
	if result.Patch.StickyNextMode == nil || *result.Patch.StickyNextMode != "" {
		t.Errorf("sticky mode must still be cleared, got %v", result.Patch.StickyNextMode)
	}
}

func TestGraderWithoutUsableKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty key", ""},
		{"missing key marker", MissingKeyMarker},
		{"prose key with no numbered lines", "The correct answers are A and B."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{response: "Graded from the exam text."}
			g := NewQuizGraderGenerator(provider)

			result, err := g.Generate(context.Background(), graderState(tt.key), nil, "")
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if result.Response != "Graded from the exam text." {
				t.Errorf("response = %q", result.Response)
			}

			var prompt string
			for _, m := range provider.history {
				if m.Role == "user" {
					prompt = m.Content
				}
			}
			if !strings.Contains(prompt, "No answer key is available") {
				t.Errorf("keyless path should tell the model no key exists, prompt: %q", prompt)
			}
		})
	}
}

func TestGraderProseKeyNeverScoresZeroOfZero(t *testing.T) {
	provider := &scriptedProvider{response: "You got both right."}
	g := NewQuizGraderGenerator(provider)

	result, err := g.Generate(context.Background(), graderState("The correct answers are A and B."), nil, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if strings.Contains(result.Response, "0/0") {
		t.Errorf("prose key must not force a 0/0 score, got %q", result.Response)
	}

	for _, m := range provider.history {
		if m.Role == "user" && strings.Contains(m.Content, "Score: 0/0") {
			t.Errorf("prompt carried a 0/0 score: %q", m.Content)
		}
	}
}

func TestGraderKeylessProviderFailureIsFatal(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("upstream down")}
	g := NewQuizGraderGenerator(provider)

	if _, err := g.Generate(context.Background(), graderState(""), nil, ""); err == nil {
		t.Fatal("without a key there is no deterministic fallback, expected an error")
	}
}
