package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	d := newTestDispatcher(t)
	require.NoError(t, d.Register(Definition{
		Name:        "turnTo",
		Description: "Turn to an angle",
		Parameters: []Parameter{
			{Name: "angleDeg", Type: KindNumber, Description: "Angle in degrees"},
		},
		Handler: func(map[string]any) Result { return OK("turned", nil) },
	}))
	return NewParser(d)
}

func TestParse(t *testing.T) {
	t.Run("should parse a positional numeric list", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("agent.moveTo(3, 4.5)")
		require.NoError(t, err)
		assert.Equal(t, "moveTo", req.Function)
		assert.Equal(t, 3.0, req.Args["x"])
		assert.Equal(t, 4.5, req.Args["z"])
	})

	t.Run("should parse negative numbers", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("agent.moveTo(-12, -0.5)")
		require.NoError(t, err)
		assert.Equal(t, -12.0, req.Args["x"])
		assert.Equal(t, -0.5, req.Args["z"])
	})

	t.Run("should give the whole argument text to a single string parameter", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("agent.say(hello world)")
		require.NoError(t, err)
		assert.Equal(t, "say", req.Function)
		assert.Equal(t, "hello world", req.Args["text"])
	})

	t.Run("should keep commas inside a quoted string argument", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse(`agent.say("hello, world")`)
		require.NoError(t, err)
		assert.Equal(t, "hello, world", req.Args["text"])
	})

	t.Run("should strip single quotes", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("agent.say('over here')")
		require.NoError(t, err)
		assert.Equal(t, "over here", req.Args["text"])
	})

	t.Run("should parse an empty argument list", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("agent.scan()")
		require.NoError(t, err)
		assert.Equal(t, "scan", req.Function)
		assert.Empty(t, req.Args)
	})

	t.Run("should tolerate surrounding whitespace", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("   agent.turnTo(90)  ")
		require.NoError(t, err)
		assert.Equal(t, 90.0, req.Args["angleDeg"])
	})

	t.Run("should keep a quoted number a string", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse(`agent.moveTo("3", 4)`)
		require.NoError(t, err)
		assert.Equal(t, "3", req.Args["x"])
		assert.Equal(t, 4.0, req.Args["z"])
	})

	t.Run("should pass unknown functions through for the dispatcher to reject", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("agent.teleport(1, 2)")
		require.NoError(t, err)
		assert.Equal(t, "teleport", req.Function)
		assert.Empty(t, req.Args)
	})

	t.Run("should reject text without the agent prefix", func(t *testing.T) {
		p := newTestParser(t)
		_, err := p.Parse("moveTo(1, 2)")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("should reject text without a call form", func(t *testing.T) {
		p := newTestParser(t)
		_, err := p.Parse("agent.moveTo")
		assert.ErrorIs(t, err, ErrInvalidFormat)

		_, err = p.Parse("agent.moveTo(1, 2")
		assert.ErrorIs(t, err, ErrInvalidFormat)

		_, err = p.Parse("")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("should reject too many positional arguments", func(t *testing.T) {
		p := newTestParser(t)
		_, err := p.Parse("agent.moveTo(1, 2, 3)")
		require.ErrorIs(t, err, ErrInvalidFormat)
		assert.Contains(t, err.Error(), "moveTo takes 2 argument(s), got 3")
	})

	t.Run("should reject an unterminated quote", func(t *testing.T) {
		p := newTestParser(t)
		_, err := p.Parse(`agent.moveTo("3, 4)`)
		require.ErrorIs(t, err, ErrInvalidFormat)
		assert.Contains(t, err.Error(), "unterminated")
	})

	t.Run("should bind a partial argument list for the dispatcher to reject", func(t *testing.T) {
		p := newTestParser(t)
		req, err := p.Parse("agent.moveTo(5)")
		require.NoError(t, err)
		assert.Equal(t, 5.0, req.Args["x"])
		_, hasZ := req.Args["z"]
		assert.False(t, hasZ)
	})
}

func TestParseDispatchRoundTrip(t *testing.T) {
	t.Run("should execute a parsed command end to end", func(t *testing.T) {
		d := newTestDispatcher(t)
		p := NewParser(d)

		req, err := p.Parse("agent.say(hi)")
		require.NoError(t, err)
		res := d.Execute(req.Function, req.Args)
		require.False(t, res.Failed())
		assert.Equal(t, "said hi", res.Message)
	})

	t.Run("should surface an unknown function as a command error", func(t *testing.T) {
		d := newTestDispatcher(t)
		p := NewParser(d)

		req, err := p.Parse("agent.fly(100)")
		require.NoError(t, err)
		res := d.Execute(req.Function, req.Args)
		require.True(t, res.Failed())
		assert.Contains(t, res.Error, "unknown function")
	})
}
