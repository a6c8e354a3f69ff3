package generator

import (
	"context"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/llm"
	"ai-studypartner-be/pkg/store"
)

const summarizeInstruction = `Summarize the provided study material.
Structure the summary as:
- Key arguments: the main claims or findings.
- Key terms: important terminology with one-line definitions.
Only use the provided context.`

// SummarizerGenerator produces a structured summary from the available
// context. It never calls tools.
type SummarizerGenerator struct {
	provider llm.LLMProvider
}

func NewSummarizerGenerator(provider llm.LLMProvider) *SummarizerGenerator {
	return &SummarizerGenerator{provider: provider}
}

func (g *SummarizerGenerator) Mode() string { return store.ModeSummarize }

func (g *SummarizerGenerator) Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*Result, error) {
	response, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: summarizeInstruction},
		{Role: "user", Content: contextBlock},
	})
	if err != nil {
		return nil, err
	}
	return &Result{Response: response}, nil
}
