package mcpsrv

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/config"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/logging"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/mcp"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/mcp/tools"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/query"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/udpquery"
)

// Deps contains the dependencies available to custom tools.
type Deps struct {
	Device *ipu.Client
	Meter  *udpquery.Client
	Query  *query.Engine
	Config *config.Config
}

// Server is the PDU MCP server. It wraps the internal implementation and
// provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server exposing the builtin PDU tools for
// the given device. The device client is required; the UDP voltage client
// is built from configuration unless WithMeter supplies one.
func NewServer(device *ipu.Client, opts ...Option) (*Server, error) {
	if device == nil {
		return nil, fmt.Errorf("device client is required")
	}

	cfg := &serverConfig{
		config: config.Load(), // defaults from environment
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	meter := cfg.meter
	if meter == nil {
		host := cfg.config.UDPHost
		if host == "" {
			host = device.Host()
		}
		meter = udpquery.New(host, cfg.config.UDPPort,
			udpquery.WithTimeout(cfg.config.UDPTimeout))
	}

	toolDeps := &tools.Deps{
		Device: device,
		Meter:  meter,
		Query:  query.NewEngine(),
		Config: cfg.config,
	}
	deps := &Deps{
		Device: toolDeps.Device,
		Meter:  toolDeps.Meter,
		Query:  toolDeps.Query,
		Config: toolDeps.Config,
	}

	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run starts the MCP server with stdio transport. The server runs until
// the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}
