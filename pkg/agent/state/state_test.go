package state

import (
	"testing"

	"ai-studypartner-be/pkg/llm"
)

func TestApply(t *testing.T) {
	base := TurnState{
		SessionID:      "s1",
		QuizAnswerKey:  "1. A",
		StickyNextMode: "quiz_grader",
	}

	tests := []struct {
		name       string
		patch      Patch
		wantKey    string
		wantSticky string
	}{
		{"nil fields leave values untouched", Patch{}, "1. A", "quiz_grader"},
		{"set replaces the key", Patch{QuizAnswerKey: Set("2. B")}, "2. B", "quiz_grader"},
		{"clear unsets the sticky mode", Patch{StickyNextMode: Clear()}, "1. A", ""},
		{"both fields at once", Patch{QuizAnswerKey: Clear(), StickyNextMode: Set("query")}, "", "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(base, tt.patch)
			if got.QuizAnswerKey != tt.wantKey {
				t.Errorf("QuizAnswerKey = %q, want %q", got.QuizAnswerKey, tt.wantKey)
			}
			if got.StickyNextMode != tt.wantSticky {
				t.Errorf("StickyNextMode = %q, want %q", got.StickyNextMode, tt.wantSticky)
			}
			if base.QuizAnswerKey != "1. A" || base.StickyNextMode != "quiz_grader" {
				t.Errorf("Apply mutated its input: %+v", base)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	a := Patch{QuizAnswerKey: Set("from a"), StickyNextMode: Set("query")}
	b := Patch{QuizAnswerKey: Set("from b")}

	got := Merge(a, b)
	if *got.QuizAnswerKey != "from b" {
		t.Errorf("QuizAnswerKey = %q, want %q", *got.QuizAnswerKey, "from b")
	}
	if got.StickyNextMode == nil || *got.StickyNextMode != "query" {
		t.Errorf("StickyNextMode should survive from a, got %v", got.StickyNextMode)
	}

	empty := Merge(a, Patch{})
	if *empty.QuizAnswerKey != "from a" {
		t.Errorf("merging an empty patch should keep a's fields, got %q", *empty.QuizAnswerKey)
	}
}

func TestLatestMessages(t *testing.T) {
	tests := []struct {
		name          string
		history       []llm.Message
		wantUser      string
		wantAssistant string
	}{
		{
			"empty history",
			nil,
			"",
			"",
		},
		{
			"single user message",
			[]llm.Message{{Role: "user", Content: "hello"}},
			"hello",
			"",
		},
		{
			"full exchange picks the newest of each role",
			[]llm.Message{
				{Role: "user", Content: "make a quiz"},
				{Role: "assistant", Content: "Question 1 ..."},
				{Role: "user", Content: "1. A"},
			},
			"1. A",
			"Question 1 ...",
		},
		{
			"system messages are skipped",
			[]llm.Message{
				{Role: "system", Content: "instructions"},
				{Role: "user", Content: "hi"},
			},
			"hi",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := TurnState{History: tt.history}
			if got := st.LatestUserMessage(); got != tt.wantUser {
				t.Errorf("LatestUserMessage() = %q, want %q", got, tt.wantUser)
			}
			if got := st.LatestAssistantMessage(); got != tt.wantAssistant {
				t.Errorf("LatestAssistantMessage() = %q, want %q", got, tt.wantAssistant)
			}
		})
	}
}
