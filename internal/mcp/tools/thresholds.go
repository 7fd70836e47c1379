package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
)

// ThresholdsPayload carries the alarm thresholds in tool requests and
// responses.
type ThresholdsPayload struct {
	WarningAmps            float64 `json:"warning_amps"`
	OverloadAmps           float64 `json:"overload_amps"`
	WarningVolts           int     `json:"warning_volts"`
	OverloadVolts          int     `json:"overload_volts"`
	WarningTempUnderC      int     `json:"warning_temp_under_c"`
	WarningTempOverC       int     `json:"warning_temp_over_c"`
	WarningHumidityPercent int     `json:"warning_humidity_percent"`
}

// GetThresholdsInput is the input for pdu_get_thresholds.
type GetThresholdsInput struct{}

// ToolGetThresholds reads the alarm thresholds.
func ToolGetThresholds(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetThresholdsInput) (*sdkmcp.CallToolResult, ThresholdsPayload, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetThresholdsInput) (*sdkmcp.CallToolResult, ThresholdsPayload, error) {
		t, err := d.Device.GetThresholds(ctx)
		if err != nil {
			return nil, ThresholdsPayload{}, WrapDeviceError(err)
		}
		return nil, ThresholdsPayload{
			WarningAmps:            t.WarningAmps,
			OverloadAmps:           t.OverloadAmps,
			WarningVolts:           t.WarningVolts,
			OverloadVolts:          t.OverloadVolts,
			WarningTempUnderC:      t.WarningTempUnderC,
			WarningTempOverC:       t.WarningTempOverC,
			WarningHumidityPercent: t.WarningHumidityPercent,
		}, nil
	}
}

// SetThresholdsOutput is the output for pdu_set_thresholds.
type SetThresholdsOutput struct {
	Applied bool `json:"applied"`
}

// ToolSetThresholds writes the alarm thresholds.
func ToolSetThresholds(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ThresholdsPayload) (*sdkmcp.CallToolResult, SetThresholdsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ThresholdsPayload) (*sdkmcp.CallToolResult, SetThresholdsOutput, error) {
		err := d.Device.SetThresholds(ctx, &ipu.Thresholds{
			WarningAmps:            input.WarningAmps,
			OverloadAmps:           input.OverloadAmps,
			WarningVolts:           input.WarningVolts,
			OverloadVolts:          input.OverloadVolts,
			WarningTempUnderC:      input.WarningTempUnderC,
			WarningTempOverC:       input.WarningTempOverC,
			WarningHumidityPercent: input.WarningHumidityPercent,
		})
		if err != nil {
			return nil, SetThresholdsOutput{}, WrapDeviceError(err)
		}
		return nil, SetThresholdsOutput{Applied: true}, nil
	}
}
