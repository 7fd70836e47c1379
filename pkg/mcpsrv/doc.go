// Package mcpsrv provides an extensible MCP server for PDU control.
//
// This package exposes a high-level API for creating and running an MCP
// server with the builtin PDU tools. Users can extend the server with
// custom tools using functional options.
//
// # Basic Usage
//
// Create a server for a device and run it on stdio:
//
//	dev := ipu.New("http://192.168.0.100")
//	server, err := mcpsrv.NewServer(dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    Outlet int `json:"outlet"`
//	}
//
//	type MyOutput struct {
//	    OK bool `json:"ok"`
//	}
//
//	func myHandler(ctx context.Context, req *mcp.CallToolRequest, input MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	    return nil, MyOutput{OK: true}, nil
//	}
//
//	server, err := mcpsrv.NewServer(
//	    dev,
//	    mcpsrv.WithTool(&mcp.Tool{Name: "my_tool", Description: "My tool"}, myHandler),
//	)
//
// # Configuration
//
// Defaults come from the environment (PDU_BASE_URL, PDU_UDP_PORT, LOG_*,
// see internal/config); options override logging and the UDP client:
//
//	server, err := mcpsrv.NewServer(
//	    dev,
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/pdu-mcp.log"),
//	)
package mcpsrv
