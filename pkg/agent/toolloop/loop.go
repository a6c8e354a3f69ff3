package toolloop

import (
	"context"
	"fmt"

	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/agent/tools"
	"ai-studypartner-be/pkg/llm"
)

// DefaultMaxRounds caps how many tool calls one generator invocation may
// make. After the cap the loop resubmits with tools disabled, so a model that
// keeps requesting tools still terminates with an answer.
const DefaultMaxRounds = 5

// Loop drives the bounded generate/invoke/resume cycle for one generator
// invocation. Tool failures are converted into error-text results and fed
// back; only a failing generation call aborts the loop.
type Loop struct {
	provider  llm.LLMProvider
	registry  *tools.Registry
	logger    logger.ILogger
	maxRounds int
}

func NewLoop(provider llm.LLMProvider, registry *tools.Registry, log logger.ILogger) *Loop {
	return &Loop{
		provider:  provider,
		registry:  registry,
		logger:    log,
		maxRounds: DefaultMaxRounds,
	}
}

// Run executes the loop with the given history. allowedTools names the subset
// of the registry this generator may use; empty means no tools at all, in
// which case this is a single generation call.
func (l *Loop) Run(ctx context.Context, history []llm.Message, allowedTools []string, opts ...llm.Option) (string, error) {
	if len(allowedTools) == 0 {
		return l.provider.Chat(ctx, history, opts...)
	}

	defs := l.registry.Defs(allowedTools...)
	messages := make([]llm.Message, len(history))
	copy(messages, history)

	for round := 0; round < l.maxRounds; round++ {
		completion, err := l.provider.ChatWithTools(ctx, messages, defs, opts...)
		if err != nil {
			return "", fmt.Errorf("generation failed: %w", err)
		}

		if completion.ToolCall == nil {
			return completion.Content, nil
		}

		call := completion.ToolCall
		l.logger.Info("TOOL_LOOP", "tool requested", map[string]interface{}{
			"tool":  call.Name,
			"round": round + 1,
		})

		output, err := l.registry.Invoke(ctx, call.Name, call.Arguments)
		if err != nil {
			// Unknown tools and tool failures become an error-carrying
			// result so the model can recover or apologize.
			output = fmt.Sprintf("Error: %v", err)
			l.logger.Warn("TOOL_LOOP", "tool invocation failed", map[string]interface{}{
				"tool":  call.Name,
				"error": err.Error(),
			})
		}

		messages = append(messages,
			llm.Message{Role: "assistant", Content: completion.Content, ToolCall: call},
			llm.Message{Role: "tool", Content: output, ToolCallId: call.Id},
		)
	}

	// Round cap reached: force termination by resubmitting without tools.
	l.logger.Warn("TOOL_LOOP", "round cap reached, finishing without tools", map[string]interface{}{
		"max_rounds": l.maxRounds,
	})
	completion, err := l.provider.ChatWithTools(ctx, messages, nil, opts...)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return completion.Content, nil
}
