package toolloop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/agent/tools"
	"ai-studypartner-be/pkg/llm"
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

type echoTool struct {
	name string
	err  error
}

func (e echoTool) Name() string { return e.name }
func (e echoTool) Description() string { return "test tool" }
func (e echoTool) InputSchema() map[string]interface{} { return map[string]interface{}{} }
func (e echoTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return "tool output", nil
}

// loopProvider replays scripted completions for ChatWithTools calls and
// records the message history of the last call.
type loopProvider struct {
	completions []*llm.Completion
	err         error
	calls       int
	chatCalls   int
	lastMsgs    []llm.Message
	lastTools   []llm.ToolDef
}

func (p *loopProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.chatCalls++
	return "plain chat answer", p.err
}

func (p *loopProvider) ChatWithTools(ctx context.Context, history []llm.Message, defs []llm.ToolDef, options ...llm.Option) (*llm.Completion, error) {
	p.lastMsgs = history
	p.lastTools = defs
	if p.err != nil {
		return nil, p.err
	}
	idx := p.calls
	p.calls++
	if idx >= len(p.completions) {
		idx = len(p.completions) - 1
	}
	return p.completions[idx], nil
}

func (p *loopProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", nil
}

func newTestLoop(p llm.LLMProvider, toolSet ...tools.Tool) *Loop {
	return NewLoop(p, tools.NewRegistry(toolSet...), nopLogger{})
}

func TestRunWithoutToolsIsPlainChat(t *testing.T) {
	p := &loopProvider{}
	l := newTestLoop(p)

	out, err := l.Run(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out != "plain chat answer" {
		t.Errorf("out = %q", out)
	}
	if p.chatCalls != 1 || p.calls != 0 {
		t.Errorf("expected one Chat call and no tool calls, got chat=%d tools=%d", p.chatCalls, p.calls)
	}
}

func TestRunSingleToolRound(t *testing.T) {
	p := &loopProvider{completions: []*llm.Completion{
		{ToolCall: &llm.ToolCall{Id: "c1", Name: "calculate", Arguments: map[string]interface{}{"expr": "2+2"}}},
		{Content: "the answer is 4"},
	}}
	l := newTestLoop(p, echoTool{name: "calculate"})

	out, err := l.Run(context.Background(), []llm.Message{{Role: "user", Content: "2+2?"}}, []string{"calculate"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out != "the answer is 4" {
		t.Errorf("out = %q", out)
	}

	// The resumed history must carry the assistant request and the tool result.
	var toolMsg *llm.Message
	for i := range p.lastMsgs {
		if p.lastMsgs[i].Role == "tool" {
			toolMsg = &p.lastMsgs[i]
		}
	}
	if toolMsg == nil {
		t.Fatal("no tool message in resumed history")
	}
	if toolMsg.Content != "tool output" || toolMsg.ToolCallId != "c1" {
		t.Errorf("tool message = %+v", toolMsg)
	}
}

func TestRunToolFailureBecomesErrorResult(t *testing.T) {
	p := &loopProvider{completions: []*llm.Completion{
		{ToolCall: &llm.ToolCall{Id: "c1", Name: "web_search"}},
		{Content: "sorry, the search failed"},
	}}
	l := newTestLoop(p, echoTool{name: "web_search", err: errors.New("network unreachable")})

	out, err := l.Run(context.Background(), []llm.Message{{Role: "user", Content: "find x"}}, []string{"web_search"})
	if err != nil {
		t.Fatalf("tool failure must not abort the loop: %v", err)
	}
	if out != "sorry, the search failed" {
		t.Errorf("out = %q", out)
	}

	var toolMsg string
	for _, m := range p.lastMsgs {
		if m.Role == "tool" {
			toolMsg = m.Content
		}
	}
	if !strings.HasPrefix(toolMsg, "Error:") {
		t.Errorf("tool result should carry the error text, got %q", toolMsg)
	}
}

func TestRunUnknownToolRequested(t *testing.T) {
	p := &loopProvider{completions: []*llm.Completion{
		{ToolCall: &llm.ToolCall{Id: "c1", Name: "teleport"}},
		{Content: "done without that tool"},
	}}
	l := newTestLoop(p, echoTool{name: "calculate"})

	out, err := l.Run(context.Background(), []llm.Message{{Role: "user", Content: "go"}}, []string{"calculate"})
	if err != nil {
		t.Fatalf("unknown tool must not abort the loop: %v", err)
	}
	if out != "done without that tool" {
		t.Errorf("out = %q", out)
	}
}

func TestRunRoundCapForcesTermination(t *testing.T) {
	// The model requests a tool on every round; the loop must still finish.
	p := &loopProvider{completions: []*llm.Completion{
		{ToolCall: &llm.ToolCall{Id: "c", Name: "calculate"}},
	}}
	l := newTestLoop(p, echoTool{name: "calculate"})

	out, err := l.Run(context.Background(), []llm.Message{{Role: "user", Content: "loop"}}, []string{"calculate"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	// After the cap the loop resubmits with nil tools; the scripted provider
	// replays its last completion, whose Content is empty.
	if out != "" {
		t.Errorf("out = %q", out)
	}
	if p.calls != DefaultMaxRounds+1 {
		t.Errorf("expected %d model calls, got %d", DefaultMaxRounds+1, p.calls)
	}
	if p.lastTools != nil {
		t.Errorf("final call must disable tools, got %d defs", len(p.lastTools))
	}
}

func TestRunGenerationFailureAborts(t *testing.T) {
	p := &loopProvider{err: errors.New("upstream down")}
	l := newTestLoop(p, echoTool{name: "calculate"})

	_, err := l.Run(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, []string{"calculate"})
	if err == nil {
		t.Fatal("expected error when generation fails")
	}
}
