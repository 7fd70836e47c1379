package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_get_status",
		Description: "Read the PDU status page: bank current/voltage, temperature, humidity, alarm state, and the on/off state of every outlet.",
	}, ToolGetStatus(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_set_outlet",
		Description: "Switch one outlet on, off, or power-cycle it. Outlets are numbered from 1. The command is sent exactly once and never retried; power-cycling equipment twice is worse than reporting a failure.",
	}, ToolSetOutlet(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_get_telemetry",
		Description: "Read a voltage/current measurement. Pass outlet for a single outlet's current; omit it for the bank aggregate.",
	}, ToolGetTelemetry(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_get_outlet_config",
		Description: "Read every outlet's label and turn-on/turn-off delays.",
	}, ToolGetOutletConfig(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_set_outlet_config",
		Description: "Write every outlet's label and turn-on/turn-off delays. The firmware form has no partial updates: list all outlets in index order.",
	}, ToolSetOutletConfig(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_get_thresholds",
		Description: "Read the alarm thresholds: warning/overload current and voltage, temperature band, humidity.",
	}, ToolGetThresholds(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_set_thresholds",
		Description: "Write the alarm thresholds. Values are validated (warning below overload, temperature band ordered) before anything is sent.",
	}, ToolSetThresholds(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_get_network_config",
		Description: "Read the device network identity (IP, mask, gateway, DNS) and the management username. The password is never echoed.",
	}, ToolGetNetworkConfig(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_set_network_config",
		Description: "Write the device network identity and optionally the management credentials. IPs are validated before any request. Changing the IP can make the configured base URL stale.",
	}, ToolSetNetworkConfig(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_query_voltage",
		Description: "Read the bank voltage over the device's UDP query channel. Works without credentials and when the web interface is unresponsive.",
	}, ToolQueryVoltage(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pdu_query_status",
		Description: "Run a jq expression over the JSON-encoded status document, e.g. '.outlets[] | select(.state == \"off\") | .outlet'. Fetches a fresh status from the device on every call.",
	}, ToolQueryStatus(d))
}
