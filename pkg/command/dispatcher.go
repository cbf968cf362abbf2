// Package command is the validated routing layer between a named action
// request and its implementation: a fixed registry of functions with typed
// parameter schemas, schema-driven validation, and a total synchronous
// Execute that reports every failure through the Result.
package command

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/harun/golem/internal/observability"
)

var (
	// ErrUnknownFunction means the function name is not registered.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrInvalidArgument means a required argument is missing, mistyped,
	// or unexpected.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind is the primitive kind a parameter accepts.
type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
)

// Parameter declares one named argument. All declared parameters are
// required; declaration order is the positional order for the text surface.
type Parameter struct {
	Name        string `json:"name"`
	Type        Kind   `json:"type"`
	Description string `json:"description"`
}

// Handler executes a validated command. It must be synchronous and must
// not block; failures are reported through the returned Result.
type Handler func(args map[string]any) Result

// Definition binds a function name to its parameter schema and handler.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Handler     Handler     `json:"-"`
}

// Dispatcher is the single source of truth mapping function names to
// schemas and handlers.
type Dispatcher struct {
	mu      sync.RWMutex
	defs    map[string]*Definition
	order   []string
	schemas map[string]*gojsonschema.Schema
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		defs:    make(map[string]*Definition),
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// Register adds a function definition. Names must be unique.
func (d *Dispatcher) Register(def Definition) error {
	if err := validateDefinition(def); err != nil {
		return fmt.Errorf("invalid definition: %w", err)
	}

	schema, err := generateSchema(def)
	if err != nil {
		return fmt.Errorf("failed to generate schema for %s: %w", def.Name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.defs[def.Name]; exists {
		return fmt.Errorf("function %s already registered", def.Name)
	}

	d.defs[def.Name] = &def
	d.order = append(d.order, def.Name)
	d.schemas[def.Name] = schema

	log.Debug().Str("function", def.Name).Msg("Command registered")

	return nil
}

// Lookup returns the definition for a function name.
func (d *Dispatcher) Lookup(name string) (Definition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.defs[name]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// Definitions returns all definitions in registration order.
func (d *Dispatcher) Definitions() []Definition {
	d.mu.RLock()
	defer d.mu.RUnlock()
	defs := make([]Definition, 0, len(d.order))
	for _, name := range d.order {
		defs = append(defs, *d.defs[name])
	}
	return defs
}

// Execute validates args against the function's schema and runs its
// handler. It is synchronous and total: every failure path, including a
// panicking handler, lands in Result.Error.
func (d *Dispatcher) Execute(name string, args map[string]any) (res Result) {
	d.mu.RLock()
	def := d.defs[name]
	schema := d.schemas[name]
	d.mu.RUnlock()

	if def == nil {
		log.Warn().Str("function", name).Msg("Unknown function")
		observability.RecordCommand(name, "unknown_function")
		return Fail(fmt.Errorf("%w: %s", ErrUnknownFunction, name))
	}

	if args == nil {
		args = map[string]any{}
	}

	if msg := validateArgs(schema, args); msg != "" {
		log.Warn().Str("function", name).Str("reason", msg).Msg("Argument validation failed")
		observability.RecordCommand(name, "invalid_argument")
		return Fail(fmt.Errorf("%w: %s", ErrInvalidArgument, msg))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("function", name).Interface("panic", r).Msg("Command handler panicked")
			observability.RecordCommand(name, "panic")
			res = Result{Error: fmt.Sprintf("internal error in %s: %v", name, r)}
		}
	}()

	res = def.Handler(args)

	outcome := "ok"
	if res.Failed() {
		outcome = "error"
		log.Debug().Str("function", name).Str("error", res.Error).Msg("Command failed")
	} else {
		log.Debug().Str("function", name).Str("message", res.Message).Msg("Command dispatched")
	}
	observability.RecordCommand(name, outcome)

	return res
}

func validateDefinition(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if def.Description == "" {
		return fmt.Errorf("function description cannot be empty")
	}
	if def.Handler == nil {
		return fmt.Errorf("function handler cannot be nil")
	}
	for _, param := range def.Parameters {
		if param.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if param.Type != KindNumber && param.Type != KindString {
			return fmt.Errorf("invalid parameter type %q for %s", param.Type, param.Name)
		}
	}
	return nil
}

// generateSchema builds the JSON Schema for a definition: a closed object
// with every declared parameter required.
func generateSchema(def Definition) (*gojsonschema.Schema, error) {
	properties := make(map[string]any, len(def.Parameters))
	required := make([]string, 0, len(def.Parameters))

	for _, param := range def.Parameters {
		properties[param.Name] = map[string]any{
			"type":        string(param.Type),
			"description": param.Description,
		}
		required = append(required, param.Name)
	}

	schemaMap := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}

// validateArgs returns a human-readable reason when args violate the
// schema, or "" when they pass.
func validateArgs(schema *gojsonschema.Schema, args map[string]any) string {
	if schema == nil {
		return ""
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return err.Error()
	}
	if result.Valid() {
		return ""
	}

	return describeSchemaError(result.Errors()[0])
}

// describeSchemaError turns a schema violation into a message naming the
// offending parameter.
func describeSchemaError(e gojsonschema.ResultError) string {
	details := e.Details()
	switch e.Type() {
	case "required":
		if p, ok := details["property"]; ok {
			return fmt.Sprintf("missing required parameter %v", p)
		}
	case "invalid_type":
		return fmt.Sprintf("parameter %s must be a %v", e.Field(), details["expected"])
	case "additional_property_not_allowed":
		if p, ok := details["property"]; ok {
			return fmt.Sprintf("unexpected parameter %v", p)
		}
	}
	return e.String()
}
