package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
)

// GetStatusInput is the input for pdu_get_status.
type GetStatusInput struct{}

// GetStatusOutput is the output for pdu_get_status. VoltageVolts is
// omitted on firmware whose status page carries no voltage element.
type GetStatusOutput struct {
	CurrentAmps     float64      `json:"current_amps"`
	VoltageVolts    int          `json:"voltage_volts,omitempty"`
	TempCelsius     int          `json:"temp_celsius"`
	HumidityPercent int          `json:"humidity_percent"`
	Alarm           string       `json:"alarm"`
	Outlets         []OutletInfo `json:"outlets,omitzero"`
}

// OutletInfo is one outlet's state in a tool response.
type OutletInfo struct {
	Outlet int    `json:"outlet"`
	State  string `json:"state"`
}

// ToolGetStatus reads the device status page.
func ToolGetStatus(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetStatusInput) (*sdkmcp.CallToolResult, GetStatusOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetStatusInput) (*sdkmcp.CallToolResult, GetStatusOutput, error) {
		status, err := d.Device.GetStatus(ctx)
		if err != nil {
			return nil, GetStatusOutput{}, WrapDeviceError(err)
		}
		return nil, statusToOutput(status), nil
	}
}

func statusToOutput(status *ipu.Status) GetStatusOutput {
	out := GetStatusOutput{
		CurrentAmps:     status.CurrentAmps,
		VoltageVolts:    status.VoltageVolts,
		TempCelsius:     status.TempCelsius,
		HumidityPercent: status.HumidityPercent,
		Alarm:           status.Alarm,
		Outlets:         make([]OutletInfo, len(status.OutletStates)),
	}
	for i, st := range status.OutletStates {
		out.Outlets[i] = OutletInfo{Outlet: i + 1, State: string(st)}
	}
	return out
}

// GetTelemetryInput is the input for pdu_get_telemetry.
type GetTelemetryInput struct {
	// Outlet selects a single outlet's reading; 0 or omitted returns the
	// bank aggregate.
	Outlet int `json:"outlet,omitempty"`
}

// GetTelemetryOutput is the output for pdu_get_telemetry.
type GetTelemetryOutput struct {
	Outlet       int     `json:"outlet,omitempty"`
	VoltageVolts int     `json:"voltage_volts"`
	CurrentAmps  float64 `json:"current_amps"`
}

// ToolGetTelemetry reads a voltage/current measurement.
func ToolGetTelemetry(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetTelemetryInput) (*sdkmcp.CallToolResult, GetTelemetryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetTelemetryInput) (*sdkmcp.CallToolResult, GetTelemetryOutput, error) {
		t, err := d.Device.GetTelemetry(ctx, input.Outlet)
		if err != nil {
			return nil, GetTelemetryOutput{}, WrapDeviceError(err)
		}
		return nil, GetTelemetryOutput{
			Outlet:       t.Outlet,
			VoltageVolts: t.VoltageVolts,
			CurrentAmps:  t.CurrentAmps,
		}, nil
	}
}
