// Package handler implements the HTTP surface of the pipeline.
package handler

import (
	"logstream/internal/services"
	"logstream/internal/stream"
	"logstream/internal/types"

	"go.uber.org/dig"
)

// Server aggregates the handlers and their dependencies.
type Server struct {
	ingestService *services.IngestService
	queryService  *services.QueryService
	logStore      *services.LogStore
	streamClient  stream.Client
	configManager types.ConfigManager
}

// ServerParams defines the dependencies for the Server.
type ServerParams struct {
	dig.In
	IngestService *services.IngestService
	QueryService  *services.QueryService
	LogStore      *services.LogStore
	StreamClient  stream.Client
	ConfigManager types.ConfigManager
}

// NewServer creates a new Server instance with dependencies injected by dig.
func NewServer(params ServerParams) *Server {
	return &Server{
		ingestService: params.IngestService,
		queryService:  params.QueryService,
		logStore:      params.LogStore,
		streamClient:  params.StreamClient,
		configManager: params.ConfigManager,
	}
}
