package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidFormat means the command text does not parse; the dispatcher
// is never consulted for such input.
var ErrInvalidFormat = errors.New("invalid command format")

// commandPattern matches the single-call textual form agent.<function>(<args>).
var commandPattern = regexp.MustCompile(`^agent\.([A-Za-z_][A-Za-z0-9_]*)\((.*)\)$`)

// Request is a typed command produced by the parser, ready for Execute.
type Request struct {
	Function string
	Args     map[string]any
}

// Parser turns raw command text into typed requests using the dispatcher's
// registry for parameter names, order, and the single-string rule.
type Parser struct {
	registry *Dispatcher
}

// NewParser creates a parser over the given registry.
func NewParser(registry *Dispatcher) *Parser {
	return &Parser{registry: registry}
}

// Parse reads one agent.<function>(<args>) line. For functions declaring a
// single string parameter the whole argument text is that parameter
// (surrounding quotes stripped); otherwise the arguments are a
// comma-separated positional list, parsed as numbers when numeric.
// Unknown function names parse fine and are left for the dispatcher to
// reject, so callers get a consistent UnknownFunction result.
func (p *Parser) Parse(line string) (Request, error) {
	m := commandPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Request{}, fmt.Errorf("%w: expected agent.<function>(...)", ErrInvalidFormat)
	}
	name, rawArgs := m[1], strings.TrimSpace(m[2])

	def, known := p.registry.Lookup(name)
	if !known {
		return Request{Function: name, Args: map[string]any{}}, nil
	}

	if len(def.Parameters) == 1 && def.Parameters[0].Type == KindString {
		return Request{
			Function: name,
			Args:     map[string]any{def.Parameters[0].Name: unquote(rawArgs)},
		}, nil
	}

	values, err := splitArgs(rawArgs)
	if err != nil {
		return Request{}, err
	}
	if len(values) > len(def.Parameters) {
		return Request{}, fmt.Errorf("%w: %s takes %d argument(s), got %d",
			ErrInvalidFormat, name, len(def.Parameters), len(values))
	}

	args := make(map[string]any, len(values))
	for i, v := range values {
		args[def.Parameters[i].Name] = coerce(v)
	}
	return Request{Function: name, Args: args}, nil
}

// splitArgs splits a positional argument list on commas outside quotes.
func splitArgs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}

	var (
		values  []string
		current strings.Builder
		quote   rune
	)
	for _, r := range raw {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			current.WriteRune(r)
		case r == ',':
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidFormat)
	}
	values = append(values, strings.TrimSpace(current.String()))

	return values, nil
}

// coerce interprets one positional token: quoted text is a string, numeric
// text is a number, anything else is a bare string.
func coerce(token string) any {
	if isQuoted(token) {
		return token[1 : len(token)-1]
	}
	if n, err := strconv.ParseFloat(token, 64); err == nil {
		return n
	}
	return token
}

func unquote(raw string) string {
	if isQuoted(raw) {
		return raw[1 : len(raw)-1]
	}
	return raw
}

func isQuoted(s string) bool {
	return len(s) >= 2 &&
		(s[0] == '\'' || s[0] == '"') &&
		s[len(s)-1] == s[0]
}
