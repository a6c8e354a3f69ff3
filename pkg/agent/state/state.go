package state

import (
	"ai-studypartner-be/pkg/llm"
)

// TurnState is the immutable per-turn snapshot of a conversation. The engine
// builds one at the start of a turn, passes it through every stage, and only
// merges the generator's patch after the turn succeeded. Generators never
// mutate it in place.
type TurnState struct {
	SessionID string
	UserID    string

	// History is the full ordered message sequence. The last entry is the
	// newest user message.
	History []llm.Message

	// UploadedText is the raw text of the session's current upload, empty if
	// nothing was uploaded.
	UploadedText string

	// StickyNextMode forces this turn's routing when set.
	StickyNextMode string

	// QuizAnswerKey is the hidden key of the most recently generated quiz.
	QuizAnswerKey string
}

// LatestUserMessage returns the content of the newest user message, or ""
// when the history is empty.
func (s TurnState) LatestUserMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == "user" {
			return s.History[i].Content
		}
	}
	return ""
}

// LatestAssistantMessage returns the most recent assistant message preceding
// the current user message, or "" when there is none.
func (s TurnState) LatestAssistantMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == "assistant" {
			return s.History[i].Content
		}
	}
	return ""
}

// Patch is the only way a generator changes cross-turn state. Nil fields
// leave the current value untouched; a pointer to the empty string clears it.
type Patch struct {
	QuizAnswerKey  *string
	StickyNextMode *string
}

// Set returns a pointer for patch fields.
func Set(v string) *string { return &v }

// Clear returns a pointer to the empty string, which unsets the field.
func Clear() *string {
	s := ""
	return &s
}

// Apply merges a patch into a copy of the state. The input state is left
// untouched.
func Apply(s TurnState, p Patch) TurnState {
	next := s
	if p.QuizAnswerKey != nil {
		next.QuizAnswerKey = *p.QuizAnswerKey
	}
	if p.StickyNextMode != nil {
		next.StickyNextMode = *p.StickyNextMode
	}
	return next
}

// Merge folds b into a, with b winning on conflicts.
func Merge(a, b Patch) Patch {
	out := a
	if b.QuizAnswerKey != nil {
		out.QuizAnswerKey = b.QuizAnswerKey
	}
	if b.StickyNextMode != nil {
		out.StickyNextMode = b.StickyNextMode
	}
	return out
}
