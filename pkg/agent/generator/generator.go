package generator

import (
	"context"

	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/store"
)

// Result is what one generator returns for a turn: the response text and the
// state patch for the pipeline driver to merge. The patch is only applied
// when the whole turn succeeded.
type Result struct {
	Response string
	Patch    state.Patch
}

// Generator is one of the six response modes. Generate receives the immutable
// turn state, the retrieved passages (nil when retrieval fell back) and the
// flattened context block. It must not mutate the state.
type Generator interface {
	Mode() string
	Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*Result, error)
}
