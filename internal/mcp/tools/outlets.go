package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
)

// SetOutletInput is the input for pdu_set_outlet.
type SetOutletInput struct {
	// Outlet is the 1-based outlet index.
	Outlet int `json:"outlet"`
	// Action is one of "on", "off", "cycle".
	Action string `json:"action"`
}

// SetOutletOutput is the output for pdu_set_outlet.
type SetOutletOutput struct {
	Outlet int    `json:"outlet"`
	Action string `json:"action"`
}

// ToolSetOutlet switches one outlet. The command is sent exactly once;
// a power-cycle is never retried on behalf of the caller.
func ToolSetOutlet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetOutletInput) (*sdkmcp.CallToolResult, SetOutletOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetOutletInput) (*sdkmcp.CallToolResult, SetOutletOutput, error) {
		cmd, err := ipu.ParseCommand(input.Action)
		if err != nil {
			return nil, SetOutletOutput{}, WrapDeviceError(err)
		}
		if err := d.Device.SetOutlet(ctx, input.Outlet, cmd); err != nil {
			return nil, SetOutletOutput{}, WrapDeviceError(err)
		}
		return nil, SetOutletOutput{Outlet: input.Outlet, Action: input.Action}, nil
	}
}

// GetOutletConfigInput is the input for pdu_get_outlet_config.
type GetOutletConfigInput struct{}

// OutletConfigEntry is one outlet's configuration in tool requests and
// responses.
type OutletConfigEntry struct {
	Outlet       int    `json:"outlet"`
	Name         string `json:"name"`
	TurnOnDelay  int    `json:"turn_on_delay"`
	TurnOffDelay int    `json:"turn_off_delay"`
}

// GetOutletConfigOutput is the output for pdu_get_outlet_config.
type GetOutletConfigOutput struct {
	Outlets []OutletConfigEntry `json:"outlets,omitzero"`
}

// ToolGetOutletConfig reads every outlet's name and switching delays.
func ToolGetOutletConfig(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetOutletConfigInput) (*sdkmcp.CallToolResult, GetOutletConfigOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetOutletConfigInput) (*sdkmcp.CallToolResult, GetOutletConfigOutput, error) {
		configs, err := d.Device.GetOutletConfigs(ctx)
		if err != nil {
			return nil, GetOutletConfigOutput{}, WrapDeviceError(err)
		}
		out := GetOutletConfigOutput{Outlets: make([]OutletConfigEntry, len(configs))}
		for i, cfg := range configs {
			out.Outlets[i] = OutletConfigEntry{
				Outlet:       i + 1,
				Name:         cfg.Name,
				TurnOnDelay:  cfg.TurnOnDelay,
				TurnOffDelay: cfg.TurnOffDelay,
			}
		}
		return nil, out, nil
	}
}

// SetOutletConfigInput is the input for pdu_set_outlet_config. The
// firmware form has no partial updates: every outlet must be listed.
type SetOutletConfigInput struct {
	Outlets []OutletConfigEntry `json:"outlets"`
}

// SetOutletConfigOutput is the output for pdu_set_outlet_config.
type SetOutletConfigOutput struct {
	OutletsConfigured int `json:"outlets_configured"`
}

// ToolSetOutletConfig writes every outlet's name and switching delays.
func ToolSetOutletConfig(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetOutletConfigInput) (*sdkmcp.CallToolResult, SetOutletConfigOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetOutletConfigInput) (*sdkmcp.CallToolResult, SetOutletConfigOutput, error) {
		count := d.Device.OutletCount()
		if len(input.Outlets) != count {
			return nil, SetOutletConfigOutput{}, ErrInvalidInput(
				"outlets must list every outlet exactly once, in index order")
		}
		configs := make([]ipu.OutletConfig, count)
		for i, entry := range input.Outlets {
			if entry.Outlet != 0 && entry.Outlet != i+1 {
				return nil, SetOutletConfigOutput{}, ErrInvalidInput(
					"outlets must be listed in index order starting at 1")
			}
			configs[i] = ipu.OutletConfig{
				Name:         entry.Name,
				TurnOnDelay:  entry.TurnOnDelay,
				TurnOffDelay: entry.TurnOffDelay,
			}
		}
		if err := d.Device.SetOutletConfigs(ctx, configs); err != nil {
			return nil, SetOutletConfigOutput{}, WrapDeviceError(err)
		}
		return nil, SetOutletConfigOutput{OutletsConfigured: count}, nil
	}
}
