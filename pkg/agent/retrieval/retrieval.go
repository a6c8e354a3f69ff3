package retrieval

import (
	"context"
	"strings"
	"unicode/utf8"

	"ai-studypartner-be/pkg/store"
)

// Scopes of the content index.
const (
	ScopeUser      = "user"
	ScopeReference = "reference"
)

// NoContextMarker is handed to a generator when neither the index nor the raw
// upload can provide context. Turns proceed degraded instead of failing.
const NoContextMarker = "[no context available]"

// Retriever is the read side of the content index. Retrieve never fails:
// index errors or an in-flight rebuild yield an empty result and the caller
// falls back to raw text.
type Retriever interface {
	Retrieve(ctx context.Context, scope string, sessionID string, query string, k int) []store.Document
}

// Plan fixes scope, passage count and the raw-text fallback cap for one
// generator mode.
type Plan struct {
	Scope       string
	K           int
	FallbackCap int
}

// Plans per generator mode. Query, summarizer, simplifier and the quiz setter
// read the session's uploaded document; the advisor reads the durable
// reference corpus.
var plans = map[string]Plan{
	store.ModeQuery:      {Scope: ScopeUser, K: 10, FallbackCap: 15000},
	store.ModeSummarize:  {Scope: ScopeUser, K: 10, FallbackCap: 15000},
	store.ModeSimplify:   {Scope: ScopeUser, K: 10, FallbackCap: 30000},
	store.ModeQuizSetter: {Scope: ScopeUser, K: 15, FallbackCap: 5000},
	store.ModeAdvisor:    {Scope: ScopeReference, K: 200, FallbackCap: 0},
}

// PlanFor returns the retrieval plan for a mode. Modes without retrieval
// (the quiz grader) get a zero Plan and ok=false.
func PlanFor(mode string) (Plan, bool) {
	p, ok := plans[mode]
	return p, ok
}

// Fetch runs the plan for a mode and returns the retrieved passages plus a
// flattened context string. When retrieval comes back empty the context is
// the capped head of uploadedText, and when that is empty too the
// NoContextMarker.
func Fetch(ctx context.Context, r Retriever, mode, sessionID, query, uploadedText string) ([]store.Document, string) {
	plan, ok := PlanFor(mode)
	if !ok {
		return nil, NoContextMarker
	}

	docs := r.Retrieve(ctx, plan.Scope, sessionID, query, plan.K)
	if len(docs) > 0 {
		return docs, Flatten(docs)
	}

	fallback := strings.TrimSpace(uploadedText)
	if fallback == "" {
		return nil, NoContextMarker
	}
	if plan.FallbackCap > 0 && len(fallback) > plan.FallbackCap {
		// Back off to a rune boundary so the cap never splits a character.
		cut := plan.FallbackCap
		for cut > 0 && !utf8.RuneStart(fallback[cut]) {
			cut--
		}
		fallback = fallback[:cut]
	}
	return nil, fallback
}

// Flatten joins passages into one context block, keeping source tags so the
// generator can cite them.
func Flatten(docs []store.Document) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if d.Source != "" {
			b.WriteString("[" + d.Source + "]\n")
		}
		b.WriteString(d.Content)
	}
	return b.String()
}
