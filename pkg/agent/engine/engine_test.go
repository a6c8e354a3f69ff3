package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/agent/classifier"
	"ai-studypartner-be/pkg/agent/generator"
	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/llm"
	"ai-studypartner-be/pkg/store"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

// classifyProvider answers the classifier with a fixed label and counts calls.
type classifyProvider struct {
	label string
	err   error
	calls int
}

func (p *classifyProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.calls++
	return p.label, p.err
}

func (p *classifyProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.ToolDef, options ...llm.Option) (*llm.Completion, error) {
	return &llm.Completion{Content: p.label}, p.err
}

func (p *classifyProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.label, p.err
}

type emptyRetriever struct{}

func (emptyRetriever) Retrieve(ctx context.Context, scope, sessionID, query string, k int) []store.Document {
	return nil
}

// stubGenerator records its input and returns a canned result.
type stubGenerator struct {
	mode     string
	result   *generator.Result
	err      error
	called   bool
	gotBlock string
}

func (g *stubGenerator) Mode() string { return g.mode }

func (g *stubGenerator) Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*generator.Result, error) {
	g.called = true
	g.gotBlock = contextBlock
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func newEngine(provider llm.LLMProvider, gens ...generator.Generator) *Engine {
	c := classifier.NewClassifier(provider, nopLogger{})
	return New(c, emptyRetriever{}, nopLogger{}, gens...)
}

func userTurn(message string) state.TurnState {
	return state.TurnState{
		SessionID: "s1",
		History:   []llm.Message{{Role: "user", Content: message}},
	}
}

func TestRunTurnRoutesViaClassifier(t *testing.T) {
	provider := &classifyProvider{label: "summarize"}
	summarize := &stubGenerator{mode: store.ModeSummarize, result: &generator.Result{Response: "a summary"}}
	query := &stubGenerator{mode: store.ModeQuery, result: &generator.Result{Response: "fallback"}}

	e := newEngine(provider, summarize, query)
	result, err := e.RunTurn(context.Background(), userTurn("sum it up"))

	require.NoError(t, err)
	assert.Equal(t, store.ModeSummarize, result.Mode)
	assert.Equal(t, "a summary", result.Response)
	assert.True(t, summarize.called)
	assert.False(t, query.called)
}

func TestRunTurnStickySkipsClassification(t *testing.T) {
	provider := &classifyProvider{label: "query"}
	grader := &stubGenerator{
		mode:   store.ModeQuizGrader,
		result: &generator.Result{Response: "2/5", Patch: state.Patch{StickyNextMode: state.Clear()}},
	}

	e := newEngine(provider, grader)
	st := userTurn("1. A")
	st.StickyNextMode = store.ModeQuizGrader
	st.QuizAnswerKey = "1. B"

	result, err := e.RunTurn(context.Background(), st)

	require.NoError(t, err)
	assert.Equal(t, store.ModeQuizGrader, result.Mode)
	assert.Zero(t, provider.calls, "sticky turns must not spend a classification call")
	assert.Empty(t, result.State.StickyNextMode, "cleared sticky mode must reach the persisted state")
	assert.Equal(t, "1. B", result.State.QuizAnswerKey, "untouched fields survive the patch")
}

func TestRunTurnGenerationFailureIsFatal(t *testing.T) {
	provider := &classifyProvider{label: "query"}
	failing := &stubGenerator{mode: store.ModeQuery, err: errors.New("model unavailable")}

	e := newEngine(provider, failing)
	st := userTurn("hello")
	_, err := e.RunTurn(context.Background(), st)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Empty(t, st.StickyNextMode, "input state stays untouched on failure")
}

func TestRunTurnUnknownModeFallsBackToQuery(t *testing.T) {
	provider := &classifyProvider{label: "advisor"}
	query := &stubGenerator{mode: store.ModeQuery, result: &generator.Result{Response: "handled by query"}}

	// No advisor generator registered.
	e := newEngine(provider, query)
	result, err := e.RunTurn(context.Background(), userTurn("find me a professor"))

	require.NoError(t, err)
	assert.Equal(t, store.ModeQuery, result.Mode)
	assert.True(t, query.called)
}

func TestRunTurnNoQueryGeneratorAtAll(t *testing.T) {
	provider := &classifyProvider{label: "advisor"}

	e := newEngine(provider)
	_, err := e.RunTurn(context.Background(), userTurn("anything"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestRunTurnPatchAppliedOnlyOnSuccess(t *testing.T) {
	provider := &classifyProvider{label: "quiz"}
	setter := &stubGenerator{
		mode: store.ModeQuizSetter,
		result: &generator.Result{
			Response: "Q1 ...",
			Patch: state.Patch{
				QuizAnswerKey:  state.Set("1. A"),
				StickyNextMode: state.Set(store.ModeQuizGrader),
			},
		},
	}

	e := newEngine(provider, setter)
	st := userTurn("quiz me")
	result, err := e.RunTurn(context.Background(), st)

	require.NoError(t, err)
	assert.Equal(t, "1. A", result.State.QuizAnswerKey)
	assert.Equal(t, store.ModeQuizGrader, result.State.StickyNextMode)
	assert.Empty(t, st.QuizAnswerKey, "the input state is never mutated")
}
