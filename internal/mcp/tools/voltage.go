package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// QueryVoltageInput is the input for pdu_query_voltage.
type QueryVoltageInput struct{}

// QueryVoltageOutput is the output for pdu_query_voltage.
type QueryVoltageOutput struct {
	VoltageVolts int `json:"voltage_volts"`
}

// ToolQueryVoltage reads the bank voltage over the UDP query channel.
// Unlike the HTTP tools this needs no credentials and still answers when
// the web interface is down.
func ToolQueryVoltage(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryVoltageInput) (*sdkmcp.CallToolResult, QueryVoltageOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryVoltageInput) (*sdkmcp.CallToolResult, QueryVoltageOutput, error) {
		voltage, err := d.Meter.QueryVoltage(ctx)
		if err != nil {
			return nil, QueryVoltageOutput{}, WrapDeviceError(err)
		}
		return nil, QueryVoltageOutput{VoltageVolts: voltage}, nil
	}
}
