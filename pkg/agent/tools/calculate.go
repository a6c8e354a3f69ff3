package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
)

type calculateInput struct {
	Expression string `json:"expression" jsonschema_description:"Arithmetic expression to evaluate, e.g. (12.5*4)/3"`
}

// allowed keeps the interpreter input to plain arithmetic. Identifiers would
// let the expression reach into the interpreter runtime.
var allowedExpression = regexp.MustCompile(`^[0-9+\-*/%().,\seE]+$`)

// CalculateTool evaluates arithmetic with an embedded Go interpreter. Each
// invocation gets a fresh interpreter so no state leaks between calls.
type CalculateTool struct {
	timeout time.Duration
}

func NewCalculateTool() *CalculateTool {
	return &CalculateTool{timeout: 5 * time.Second}
}

func (t *CalculateTool) Name() string { return "calculate" }

func (t *CalculateTool) Description() string {
	return "Evaluate an arithmetic expression and return the numeric result."
}

func (t *CalculateTool) InputSchema() map[string]interface{} {
	return generateSchema[calculateInput]()
}

func (t *CalculateTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	expression := strings.TrimSpace(stringArg(args, "expression"))
	if expression == "" {
		return "", fmt.Errorf("expression is required")
	}
	if !allowedExpression.MatchString(expression) {
		return "", fmt.Errorf("expression may only contain numbers, operators and parentheses")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	i := interp.New(interp.Options{})

	type evalResult struct {
		value string
		err   error
	}
	done := make(chan evalResult, 1)
	go func() {
		v, err := i.Eval(expression)
		if err != nil {
			done <- evalResult{err: err}
			return
		}
		done <- evalResult{value: fmt.Sprintf("%v", v.Interface())}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("calculation timed out")
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("invalid expression: %w", res.err)
		}
		return fmt.Sprintf("%s = %s", expression, res.value), nil
	}
}
