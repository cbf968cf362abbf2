package daemon

import (
	"fmt"
	"strings"

	"github.com/harun/golem/pkg/autopilot"
	"github.com/harun/golem/pkg/gateway"
)

// registerRPCMethods wires the daemon's control surface onto the gateway
// server. Called once during construction when the gateway is enabled.
func (d *Daemon) registerRPCMethods() error {
	methods := map[string]gateway.RequestHandler{
		"command":          d.handleCommand,
		"autopilot.start":  d.handleAutopilotStart,
		"autopilot.stop":   d.handleAutopilotStop,
		"autopilot.status": d.handleAutopilotStatus,
		"scene.list":       d.handleSceneList,
	}
	for name, handler := range methods {
		if err := d.gatewayServer.RegisterMethod(name, handler); err != nil {
			return fmt.Errorf("failed to register RPC method %s: %w", name, err)
		}
	}
	return nil
}

// handleCommand executes one agent command. Clients send either a raw
// command line ("agent.scan()") or a structured function/args pair; the
// raw form goes through the parser first.
func (d *Daemon) handleCommand(params map[string]any) (any, error) {
	if line, ok := params["line"].(string); ok && strings.TrimSpace(line) != "" {
		req, err := d.parser.Parse(line)
		if err != nil {
			return nil, &gateway.RPCError{Code: gateway.InvalidParams, Message: err.Error()}
		}
		return d.dispatcher.Execute(req.Function, req.Args), nil
	}

	function, ok := params["function"].(string)
	if !ok || function == "" {
		return nil, &gateway.RPCError{Code: gateway.InvalidParams, Message: "either line or function is required"}
	}
	args, _ := params["args"].(map[string]any)
	return d.dispatcher.Execute(function, args), nil
}

func (d *Daemon) handleAutopilotStart(params map[string]any) (any, error) {
	goal, _ := params["goal"].(string)
	sess, err := d.pilot.Start(goal)
	if err != nil {
		return nil, &gateway.RPCError{Code: gateway.InvalidParams, Message: err.Error()}
	}
	return sess, nil
}

func (d *Daemon) handleAutopilotStop(params map[string]any) (any, error) {
	return map[string]any{"stopped": d.pilot.Stop()}, nil
}

func (d *Daemon) handleAutopilotStatus(params map[string]any) (any, error) {
	if sess, ok := d.pilot.Session(); ok {
		return sess, nil
	}
	return map[string]any{"phase": string(autopilot.PhaseIdle)}, nil
}

func (d *Daemon) handleSceneList(params map[string]any) (any, error) {
	return map[string]any{"entities": d.registry.ListEntities()}, nil
}
