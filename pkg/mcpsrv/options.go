package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/config"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/udpquery"
)

// serverConfig holds configuration built from options.
type serverConfig struct {
	config *config.Config
	meter  *udpquery.Client

	// Logging overrides
	logLevel string
	logFile  string

	disableBuiltinTools bool

	// Custom extensions - registration callbacks that preserve generic
	// type info
	toolRegistrations         []func(*mcp.Server)
	deferredToolRegistrations []func(*mcp.Server, *Deps)
}

// Option configures the server.
type Option func(*serverConfig)

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile sets the log file path. If empty, logs are written to
// stderr only.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithMeter supplies a pre-built UDP voltage client instead of the one
// derived from configuration.
func WithMeter(m *udpquery.Client) Option {
	return func(cfg *serverConfig) {
		cfg.meter = m
	}
}

// WithoutBuiltinTools disables the builtin PDU tools. Use this to
// register only your own tools.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinTools = true
	}
}

// WithTool registers a custom tool with the server.
//
// The handler signature must match the MCP SDK pattern:
//
//	func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error)
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.toolRegistrations = append(cfg.toolRegistrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a custom tool that has access to Deps. The
// builder receives Deps and returns a handler function, so custom tools
// can reuse the device client, the UDP meter, and the query engine.
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.deferredToolRegistrations = append(cfg.deferredToolRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}
