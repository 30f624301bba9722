package server

import (
	"github.com/scribely/scribely/server/endpoint"
)

// RegisterDefaultEndpoints wires the built-in /health and /info routes.
func (s *Server) RegisterDefaultEndpoints(service string, checks map[string]endpoint.CheckFunc) {
	s.engine.GET("/health", endpoint.Health(checks))
	s.engine.GET("/info", endpoint.Info(service))
}
