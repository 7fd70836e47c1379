// Package tools contains the MCP tool implementations for PDU control.
package tools

import (
	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/config"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/query"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/udpquery"
)

// Deps contains all dependencies available to tools.
type Deps struct {
	Device *ipu.Client
	Meter  *udpquery.Client
	Query  *query.Engine
	Config *config.Config
}
