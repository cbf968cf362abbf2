package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/golem/pkg/geo"
)

func TestRegistry(t *testing.T) {
	entities := []Entity{
		{ID: "a", Type: "prop", Position: geo.Vec2{X: 1, Z: 1}},
		{ID: "b", Type: "prop", Position: geo.Vec2{X: 2, Z: 2}},
		{ID: "c", Type: "wall", Structural: true},
	}

	t.Run("should look entities up by id", func(t *testing.T) {
		r := NewRegistry(entities, zerolog.Nop())
		e, ok := r.GetObject("b")
		require.True(t, ok)
		assert.Equal(t, geo.Vec2{X: 2, Z: 2}, e.Position)

		_, ok = r.GetObject("missing")
		assert.False(t, ok)
	})

	t.Run("should list entities in registration order", func(t *testing.T) {
		r := NewRegistry(entities, zerolog.Nop())
		got := r.ListEntities()
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
		assert.Equal(t, "c", got[2].ID)
	})

	t.Run("should swap the entity set on replace", func(t *testing.T) {
		r := NewRegistry(entities, zerolog.Nop())
		r.Replace([]Entity{{ID: "x", Type: "prop"}})
		assert.Equal(t, 1, r.Len())
		_, ok := r.GetObject("a")
		assert.False(t, ok)
		_, ok = r.GetObject("x")
		assert.True(t, ok)
	})

	t.Run("should not share the backing slice with callers", func(t *testing.T) {
		r := NewRegistry(entities, zerolog.Nop())
		got := r.ListEntities()
		got[0].ID = "mutated"
		e, ok := r.GetObject("a")
		require.True(t, ok)
		assert.Equal(t, "a", e.ID)
	})
}

func TestDefaultScene(t *testing.T) {
	entities := DefaultScene()

	t.Run("should have unique ids", func(t *testing.T) {
		seen := map[string]bool{}
		for _, e := range entities {
			assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
			seen[e.ID] = true
		}
	})

	t.Run("should pass its own validation", func(t *testing.T) {
		require.NoError(t, validate(entities))
	})

	t.Run("should include structural walls and a non-interactable prop", func(t *testing.T) {
		var walls, inert int
		for _, e := range entities {
			if e.Structural {
				walls++
			}
			if !e.Structural && !e.Interactable {
				inert++
			}
		}
		assert.Equal(t, 4, walls)
		assert.GreaterOrEqual(t, inert, 1)
	})

	t.Run("should keep every entity inside world bounds", func(t *testing.T) {
		for _, e := range entities {
			assert.GreaterOrEqual(t, e.Position.X, -24.0, "entity %s", e.ID)
			assert.LessOrEqual(t, e.Position.X, 24.0, "entity %s", e.ID)
			assert.GreaterOrEqual(t, e.Position.Z, -24.0, "entity %s", e.ID)
			assert.LessOrEqual(t, e.Position.Z, 24.0, "entity %s", e.ID)
		}
	})
}

func TestLoad(t *testing.T) {
	writeScene := func(t *testing.T, content string) string {
		t.Helper()
		dir := t.TempDir()
		path := filepath.Join(dir, "scene.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("should load a valid scene file", func(t *testing.T) {
		path := writeScene(t, `{
			"entities": [
				{"id": "crate", "type": "prop", "description": "a crate", "interactable": true, "position": {"x": 4, "z": 3}},
				{"id": "wall", "type": "wall", "structural": true, "position": {"x": 0, "z": 24}}
			]
		}`)
		entities, err := Load(path)
		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, "crate", entities[0].ID)
		assert.True(t, entities[0].Interactable)
		assert.True(t, entities[1].Structural)
		assert.Equal(t, geo.Vec2{X: 4, Z: 3}, entities[0].Position)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("should fail on malformed json", func(t *testing.T) {
		path := writeScene(t, `{"entities": [`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("should fail on duplicate ids", func(t *testing.T) {
		path := writeScene(t, `{
			"entities": [
				{"id": "crate", "type": "prop"},
				{"id": "crate", "type": "prop"}
			]
		}`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("should fail on an empty scene", func(t *testing.T) {
		path := writeScene(t, `{"entities": []}`)
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("should fail on an entity without an id", func(t *testing.T) {
		path := writeScene(t, `{"entities": [{"type": "prop"}]}`)
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestWatcher(t *testing.T) {
	t.Run("should fire onChange after a write", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "scene.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

		changed := make(chan struct{}, 1)
		w, err := NewWatcher(path, 20*time.Millisecond, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		}, zerolog.Nop())
		require.NoError(t, err)
		defer w.Stop()

		require.NoError(t, os.WriteFile(path, []byte(`{"entities":[]}`), 0o644))

		select {
		case <-changed:
		case <-time.After(3 * time.Second):
			t.Fatal("watcher never fired after a write")
		}
	})

	t.Run("should ignore sibling files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "scene.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

		changed := make(chan struct{}, 1)
		w, err := NewWatcher(path, 20*time.Millisecond, func() {
			changed <- struct{}{}
		}, zerolog.Nop())
		require.NoError(t, err)
		defer w.Stop()

		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

		select {
		case <-changed:
			t.Fatal("watcher fired for an unrelated file")
		case <-time.After(300 * time.Millisecond):
		}
	})
}
