package classifier

import (
	"context"
	"strings"

	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/llm"
)

// Intent labels produced by classification. These are classifier outputs, not
// generator names; the router maps them to a target.
const (
	LabelQuiz      = "quiz"
	LabelSimplify  = "simplify"
	LabelSummarize = "summarize"
	LabelAdvisor   = "advisor"
	LabelQuery     = "query"
)

// priorityOrder resolves ambiguous model answers like "quiz or query" by
// substring containment, first match wins.
var priorityOrder = []string{
	LabelQuiz,
	LabelSimplify,
	LabelSummarize,
	LabelAdvisor,
	LabelQuery,
}

const classifyInstruction = `You are an intent classifier for a study assistant.
Classify the user's message into exactly one of these labels:
- quiz: the user wants to be tested or asks for practice questions
- simplify: the user wants a concept explained in simpler terms
- summarize: the user wants a summary of the uploaded material
- advisor: the user is looking for a professor, supervisor or research lab
- query: anything else, including factual questions and follow-ups

Answer with the single label only.`

// Classifier maps the latest user message to an intent label. It is stateless
// and idempotent for identical input.
type Classifier struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewClassifier(provider llm.LLMProvider, log logger.ILogger) *Classifier {
	return &Classifier{
		provider: provider,
		logger:   log,
	}
}

// Classify resolves the intent for the newest user message.
//
// If content is uploaded and the message is blank, the turn is a summarize
// request and no model call is made. If the model call fails, the label falls
// back to query; classification errors are never surfaced.
func (c *Classifier) Classify(ctx context.Context, latestMessage string, hasUploadedContent bool) string {
	if hasUploadedContent && strings.TrimSpace(latestMessage) == "" {
		return LabelSummarize
	}

	answer, err := c.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: classifyInstruction},
		{Role: "user", Content: latestMessage},
	}, llm.WithTemperature(0))
	if err != nil {
		c.logger.Warn("CLASSIFIER", "classification call failed, defaulting to query", map[string]interface{}{
			"error": err.Error(),
		})
		return LabelQuery
	}

	return ParseLabel(answer)
}

// ParseLabel decodes a free-text model answer into a label. Matching is
// case-insensitive substring containment in fixed priority order; anything
// unrecognized decodes to query.
func ParseLabel(answer string) string {
	lower := strings.ToLower(answer)
	for _, label := range priorityOrder {
		if strings.Contains(lower, label) {
			return label
		}
	}
	return LabelQuery
}
