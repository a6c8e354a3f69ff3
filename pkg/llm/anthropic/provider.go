package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-studypartner-be/pkg/llm"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements llm.LLMProvider on top of the official SDK.
type AnthropicProvider struct {
	client    *anthropic.Client
	modelName string
}

var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	if modelName == "" {
		modelName = string(anthropic.ModelClaude4Sonnet20250514)
	}
	return &AnthropicProvider{
		client:    &client,
		modelName: modelName,
	}
}

func (a *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	completion, err := a.ChatWithTools(ctx, history, nil, opts...)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func (a *AnthropicProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.ToolDef, opts ...llm.Option) (*llm.Completion, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	model := a.modelName
	if options.Model != "" {
		model = options.Model
	}
	maxTokens := int64(4096)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	system, messages := a.convertMessages(history)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.TemperatureSet {
		params.Temperature = anthropic.Float(options.Temperature)
	}
	if len(tools) > 0 {
		params.Tools = buildToolSpecs(tools)
	}

	response, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	completion := &llm.Completion{}
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			completion.Content += block.Text
		case anthropic.ToolUseBlock:
			if completion.ToolCall != nil {
				continue // single tool call per round
			}
			inputJSON, _ := json.Marshal(block.Input)
			var args map[string]interface{}
			_ = json.Unmarshal(inputJSON, &args)
			completion.ToolCall = &llm.ToolCall{
				Id:        block.ID,
				Name:      block.Name,
				Arguments: args,
			}
		}
	}
	return completion, nil
}

func (a *AnthropicProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return a.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (a *AnthropicProvider) convertMessages(history []llm.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, msg := range history {
		switch msg.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case "user":
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant", "model":
			contentBlocks := []anthropic.ContentBlockParamUnion{}
			if msg.Content != "" {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfText: &anthropic.TextBlockParam{Text: msg.Content},
				})
			}
			if msg.ToolCall != nil {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    msg.ToolCall.Id,
						Name:  msg.ToolCall.Name,
						Input: msg.ToolCall.Arguments,
					},
				})
			}
			if len(contentBlocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(contentBlocks...))
			}
		case "tool":
			messages = append(messages, anthropic.NewUserMessage(anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: msg.ToolCallId,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: msg.Content}},
					},
				},
			}))
		}
	}
	return system, messages
}

func buildToolSpecs(tools []llm.ToolDef) []anthropic.ToolUnionParam {
	specs := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		specs = append(specs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: t.InputSchema,
				},
			},
		})
	}
	return specs
}
