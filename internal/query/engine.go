// Package query provides JQ-based querying over the JSON-encoded device
// status document.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Engine executes JQ expressions against JSON data.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Result contains the outcome of a JQ query.
type Result struct {
	Values []any    `json:"values"`           // Extracted values
	Errors []string `json:"errors,omitempty"` // Per-value evaluation errors (e.g. type mismatch)
}

// Query executes a JQ expression against one JSON document. There is
// exactly one document per call here (the live device status), so unlike
// a general jq runner there is no multi-input bookkeeping.
func (e *Engine) Query(data []byte, expression string, maxResults int) (*Result, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}

	result := &Result{
		Values: make([]any, 0),
		Errors: make([]string, 0),
	}

	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if evalErr, isErr := v.(error); isErr {
			result.Errors = append(result.Errors, evalErr.Error())
			continue
		}
		if v == nil {
			continue
		}
		result.Values = append(result.Values, v)
		if maxResults > 0 && len(result.Values) >= maxResults {
			break
		}
	}
	return result, nil
}

// ValidateExpression checks that an expression parses and compiles.
func (e *Engine) ValidateExpression(expression string) error {
	q, err := gojq.Parse(expression)
	if err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}
	if _, err := gojq.Compile(q); err != nil {
		return fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return nil
}
