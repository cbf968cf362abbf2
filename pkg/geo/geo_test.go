package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAngle(t *testing.T) {
	t.Run("should leave angles inside the range untouched", func(t *testing.T) {
		assert.InDelta(t, 1.0, NormalizeAngle(1.0), 1e-12)
		assert.InDelta(t, -1.0, NormalizeAngle(-1.0), 1e-12)
		assert.InDelta(t, 0.0, NormalizeAngle(0.0), 1e-12)
	})

	t.Run("should wrap angles above pi", func(t *testing.T) {
		assert.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), 1e-12)
		assert.InDelta(t, 0.0, NormalizeAngle(2*math.Pi), 1e-12)
	})

	t.Run("should wrap angles below minus pi", func(t *testing.T) {
		assert.InDelta(t, math.Pi/2, NormalizeAngle(-3*math.Pi/2), 1e-12)
	})

	t.Run("should map minus pi to plus pi", func(t *testing.T) {
		assert.InDelta(t, math.Pi, NormalizeAngle(-math.Pi), 1e-12)
	})

	t.Run("should survive many full turns", func(t *testing.T) {
		got := NormalizeAngle(1.25 + 20*math.Pi)
		assert.InDelta(t, 1.25, got, 1e-9)
	})
}

func TestBearing(t *testing.T) {
	t.Run("should face plus z at zero", func(t *testing.T) {
		assert.InDelta(t, 0.0, Bearing(Vec2{}, Vec2{Z: 5}), 1e-12)
	})

	t.Run("should face plus x at half pi", func(t *testing.T) {
		assert.InDelta(t, math.Pi/2, Bearing(Vec2{}, Vec2{X: 5}), 1e-12)
	})

	t.Run("should face minus z at pi", func(t *testing.T) {
		assert.InDelta(t, math.Pi, Bearing(Vec2{}, Vec2{Z: -5}), 1e-12)
	})

	t.Run("should face minus x at minus half pi", func(t *testing.T) {
		assert.InDelta(t, -math.Pi/2, Bearing(Vec2{}, Vec2{X: -5}), 1e-12)
	})
}

func TestDistance(t *testing.T) {
	t.Run("should measure planar distance", func(t *testing.T) {
		assert.InDelta(t, 5.0, Distance(Vec2{X: 1, Z: 1}, Vec2{X: 4, Z: 5}), 1e-12)
	})

	t.Run("should be symmetric", func(t *testing.T) {
		a := Vec2{X: -3, Z: 7}
		b := Vec2{X: 2, Z: -1}
		assert.Equal(t, Distance(a, b), Distance(b, a))
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, -24.0, Clamp(-30, -24, 24))
	assert.Equal(t, 24.0, Clamp(99, -24, 24))
	assert.Equal(t, 3.5, Clamp(3.5, -24, 24))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.234, 2))
	assert.Equal(t, 1.24, Round(1.236, 2))
	assert.Equal(t, -7.1, Round(-7.06, 1))
	assert.Equal(t, 3.0, Round(3.0001, 2))
}

func TestDegreesRadians(t *testing.T) {
	assert.InDelta(t, 180.0, Degrees(math.Pi), 1e-12)
	assert.InDelta(t, math.Pi/2, Radians(90), 1e-12)
}
