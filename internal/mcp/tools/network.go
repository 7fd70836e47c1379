package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
)

// GetNetworkConfigInput is the input for pdu_get_network_config.
type GetNetworkConfigInput struct{}

// GetNetworkConfigOutput is the output for pdu_get_network_config.
// The firmware never echoes the management password.
type GetNetworkConfigOutput struct {
	IP       string `json:"ip"`
	Mask     string `json:"mask"`
	Gateway  string `json:"gateway"`
	DNS      string `json:"dns,omitempty"`
	Username string `json:"username"`
}

// ToolGetNetworkConfig reads the device network identity.
func ToolGetNetworkConfig(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetNetworkConfigInput) (*sdkmcp.CallToolResult, GetNetworkConfigOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetNetworkConfigInput) (*sdkmcp.CallToolResult, GetNetworkConfigOutput, error) {
		cfg, err := d.Device.GetNetworkConfig(ctx)
		if err != nil {
			return nil, GetNetworkConfigOutput{}, WrapDeviceError(err)
		}
		return nil, GetNetworkConfigOutput{
			IP:       cfg.IP,
			Mask:     cfg.Mask,
			Gateway:  cfg.Gateway,
			DNS:      cfg.DNS,
			Username: cfg.Username,
		}, nil
	}
}

// SetNetworkConfigInput is the input for pdu_set_network_config. Username
// and password are optional; when username is set a password is required.
type SetNetworkConfigInput struct {
	IP       string `json:"ip"`
	Mask     string `json:"mask"`
	Gateway  string `json:"gateway"`
	DNS      string `json:"dns,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// SetNetworkConfigOutput is the output for pdu_set_network_config.
type SetNetworkConfigOutput struct {
	Applied bool `json:"applied"`
	// CredentialsChanged reports whether the management credentials were
	// also rewritten; subsequent sessions must use the new ones.
	CredentialsChanged bool `json:"credentials_changed"`
}

// ToolSetNetworkConfig writes the device network identity and optionally
// the management credentials. A changed IP takes effect on the device's
// next DHCP-less restart, so the tool can succeed while the configured
// base URL becomes stale.
func ToolSetNetworkConfig(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetNetworkConfigInput) (*sdkmcp.CallToolResult, SetNetworkConfigOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetNetworkConfigInput) (*sdkmcp.CallToolResult, SetNetworkConfigOutput, error) {
		err := d.Device.SetNetworkConfig(ctx, &ipu.NetworkConfig{
			IP:       input.IP,
			Mask:     input.Mask,
			Gateway:  input.Gateway,
			DNS:      input.DNS,
			Username: input.Username,
			Password: input.Password,
		})
		if err != nil {
			return nil, SetNetworkConfigOutput{}, WrapDeviceError(err)
		}
		return nil, SetNetworkConfigOutput{
			Applied:            true,
			CredentialsChanged: input.Username != "",
		}, nil
	}
}
