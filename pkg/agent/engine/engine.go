package engine

import (
	"context"
	"errors"
	"fmt"

	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/agent/classifier"
	"ai-studypartner-be/pkg/agent/generator"
	"ai-studypartner-be/pkg/agent/retrieval"
	"ai-studypartner-be/pkg/agent/router"
	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/store"
)

// ErrGeneration marks a turn-fatal generation failure. The caller surfaces it
// as a turn-level error; no partial response and no state change escape.
var ErrGeneration = errors.New("generation failed")

// TurnResult is the outcome of one successful turn.
type TurnResult struct {
	Response string
	Mode     string
	// Patch is the generator's state change, already applied to State.
	Patch state.Patch
	// State is the post-turn state to persist back into the session.
	State state.TurnState
}

// Engine drives one turn through classify, route, retrieve and generate. It
// owns no mutable state itself; everything flows through the TurnState value.
type Engine struct {
	classifier *classifier.Classifier
	retriever  retrieval.Retriever
	generators map[string]generator.Generator
	logger     logger.ILogger
}

func New(c *classifier.Classifier, r retrieval.Retriever, log logger.ILogger, gens ...generator.Generator) *Engine {
	byMode := make(map[string]generator.Generator, len(gens))
	for _, g := range gens {
		byMode[g.Mode()] = g
	}
	return &Engine{
		classifier: c,
		retriever:  r,
		generators: byMode,
		logger:     log,
	}
}

// RunTurn processes the newest user message already appended to st.History.
// On error the input state is still valid and untouched, so the caller can
// retry the same turn safely.
func (e *Engine) RunTurn(ctx context.Context, st state.TurnState) (*TurnResult, error) {
	latest := st.LatestUserMessage()
	hasUploaded := st.UploadedText != ""

	// A sticky override skips classification entirely; no model call is
	// spent on a turn whose route is already decided.
	var label string
	if st.StickyNextMode == "" {
		label = e.classifier.Classify(ctx, latest, hasUploaded)
	}
	mode := router.Route(label, st.StickyNextMode)

	gen, ok := e.generators[mode]
	if !ok {
		e.logger.Warn("ENGINE", "no generator registered for mode, using query", map[string]interface{}{
			"mode": mode,
		})
		mode = store.ModeQuery
		gen = e.generators[mode]
		if gen == nil {
			return nil, fmt.Errorf("%w: no query generator registered", ErrGeneration)
		}
	}

	docs, contextBlock := retrieval.Fetch(ctx, e.retriever, mode, st.SessionID, latest, st.UploadedText)

	e.logger.Info("ENGINE", "dispatching turn", map[string]interface{}{
		"session_id": st.SessionID,
		"mode":       mode,
		"passages":   len(docs),
		"sticky":     st.StickyNextMode != "",
	})

	result, err := gen.Generate(ctx, st, docs, contextBlock)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &TurnResult{
		Response: result.Response,
		Mode:     mode,
		Patch:    result.Patch,
		State:    state.Apply(st, result.Patch),
	}, nil
}
