package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/config"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/mcpsrv"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Device address, credentials, and timeouts come from environment
	// variables (PDU_BASE_URL, PDU_USERNAME, PDU_PASSWORD,
	// PDU_OUTLET_COUNT, HTTP_CLIENT_TIMEOUT_MS, PDU_UDP_*, LOG_*;
	// see internal/config for all options).
	cfg := config.Load()

	device := ipu.New(cfg.PDUBaseURL,
		ipu.WithCredentials(cfg.PDUUsername, cfg.PDUPassword),
		ipu.WithOutletCount(cfg.PDUOutletCount),
		ipu.WithTimeout(cfg.HTTPClientTimeout),
	)

	server, err := mcpsrv.NewServer(device)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	slog.Info("starting PDU MCP server on stdio", "device", cfg.PDUBaseURL)
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
