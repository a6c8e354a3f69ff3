package generator

import (
	"context"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/agent/toolloop"
	"ai-studypartner-be/pkg/store"
)

const simplifyInstruction = `You are explaining a concept to a student who finds it difficult.
Rules:
- Explain in plain language, step by step.
- Include at least one concrete analogy from everyday life.
- Ground the explanation in the provided context; use web_search only for facts the context is missing.`

// SimplifierGenerator rewrites difficult material in plain language with a
// mandatory analogy.
type SimplifierGenerator struct {
	loop *toolloop.Loop
}

func NewSimplifierGenerator(loop *toolloop.Loop) *SimplifierGenerator {
	return &SimplifierGenerator{loop: loop}
}

func (g *SimplifierGenerator) Mode() string { return store.ModeSimplify }

func (g *SimplifierGenerator) Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*Result, error) {
	history := withSystemContext(st.History, simplifyInstruction, contextBlock)
	response, err := g.loop.Run(ctx, history, []string{"web_search"})
	if err != nil {
		return nil, err
	}
	return &Result{Response: response}, nil
}
