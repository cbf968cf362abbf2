package gateway

import (
	"time"
)

// registerBuiltinMethods registers the RPC methods every gateway serves.
// Domain methods (agent commands, autopilot control) are registered by
// the daemon through RegisterMethod.
func (s *Server) registerBuiltinMethods() {
	_ = s.RegisterMethod("system.ping", s.handleSystemPing)
	_ = s.RegisterMethod("system.clients", s.handleSystemClients)
}

// handleSystemPing handles the system.ping RPC method
func (s *Server) handleSystemPing(params map[string]any) (any, error) {
	return map[string]any{
		"pong":      true,
		"timestamp": time.Now().UnixMilli(),
	}, nil
}

// handleSystemClients handles the system.clients RPC method
func (s *Server) handleSystemClients(params map[string]any) (any, error) {
	infos := s.clients.Infos()
	return map[string]any{
		"count":   len(infos),
		"clients": infos,
	}, nil
}
