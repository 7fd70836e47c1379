package tools

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// QueryStatusInput is the input for pdu_query_status.
type QueryStatusInput struct {
	// Expression is a jq expression evaluated against the JSON-encoded
	// status document, e.g. `.outlets[] | select(.state == "off") | .outlet`.
	Expression string `json:"expression"`
	// MaxResults caps the number of values returned; 0 means unlimited.
	MaxResults int `json:"max_results,omitempty"`
}

// QueryStatusOutput is the output for pdu_query_status.
type QueryStatusOutput struct {
	Values []any    `json:"values,omitzero"`
	Errors []string `json:"errors,omitzero"`
}

// ToolQueryStatus fetches a fresh status snapshot and runs a jq
// expression over it. Each call hits the device; the document is never
// cached between calls.
func ToolQueryStatus(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryStatusInput) (*sdkmcp.CallToolResult, QueryStatusOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryStatusInput) (*sdkmcp.CallToolResult, QueryStatusOutput, error) {
		if input.Expression == "" {
			return nil, QueryStatusOutput{}, ErrInvalidInput("expression is required")
		}
		if err := d.Query.ValidateExpression(input.Expression); err != nil {
			return nil, QueryStatusOutput{}, ErrInvalidInput(err.Error())
		}

		status, err := d.Device.GetStatus(ctx)
		if err != nil {
			return nil, QueryStatusOutput{}, WrapDeviceError(err)
		}

		doc, err := json.Marshal(statusToOutput(status))
		if err != nil {
			return nil, QueryStatusOutput{}, err
		}

		result, err := d.Query.Query(doc, input.Expression, input.MaxResults)
		if err != nil {
			return nil, QueryStatusOutput{}, ErrInvalidInput(err.Error())
		}
		return nil, QueryStatusOutput{Values: result.Values, Errors: result.Errors}, nil
	}
}
