package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string

	// ToolCall is set on assistant messages that requested a tool.
	ToolCall *ToolCall
	// ToolCallId links a "tool" role message back to the request it answers.
	ToolCallId string
}

// ToolCall is a provider-agnostic tool invocation request
type ToolCall struct {
	Id        string
	Name      string
	Arguments map[string]interface{}
}

// ToolDef describes a tool the model is allowed to call
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]interface{} // JSON Schema properties
}

// Completion is the result of a tool-capable chat call.
// ToolCall is nil when the model answered directly; Content may still hold
// preamble text when ToolCall is set.
type Completion struct {
	Content  string
	ToolCall *ToolCall
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	// TemperatureSet distinguishes an explicit temperature of 0 from the
	// caller not caring. Zero is a meaningful value for classification.
	TemperatureSet bool
	MaxTokens      int
	Model          string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
		o.TemperatureSet = true
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatWithTools sends a chat history plus tool definitions. The model
	// either answers directly or declares a single tool call. An empty tools
	// slice degrades to a plain Chat call.
	ChatWithTools(ctx context.Context, history []Message, tools []ToolDef, options ...Option) (*Completion, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
