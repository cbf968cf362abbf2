// Package scene holds the registry of located, described entities the
// agent can query and interact with. The registry is read-mostly; the only
// writer is a hot reload replacing the whole entity set.
package scene

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/harun/golem/pkg/geo"
)

// Entity is a described, located object in the scene. Structural entities
// (walls, floor) are part of the backdrop and excluded from scans.
type Entity struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Interactable bool     `json:"interactable"`
	Structural   bool     `json:"structural,omitempty"`
	Position     geo.Vec2 `json:"position"`
}

// Registry is the entity lookup used by spatial queries. Registration
// order is preserved and is the tie-break order for scans.
type Registry struct {
	mu       sync.RWMutex
	entities []Entity
	index    map[string]int
	log      zerolog.Logger
}

// NewRegistry creates a registry holding the given entities.
func NewRegistry(entities []Entity, log zerolog.Logger) *Registry {
	r := &Registry{
		log: log.With().Str("component", "scene").Logger(),
	}
	r.Replace(entities)
	return r
}

// Replace swaps the whole entity set atomically. Used at construction and
// by scene file hot reload.
func (r *Registry) Replace(entities []Entity) {
	index := make(map[string]int, len(entities))
	for i, e := range entities {
		if _, dup := index[e.ID]; !dup {
			index[e.ID] = i
		}
	}

	r.mu.Lock()
	r.entities = append([]Entity(nil), entities...)
	r.index = index
	r.mu.Unlock()

	r.log.Info().Int("entities", len(entities)).Msg("Scene registry replaced")
}

// GetObject looks an entity up by ID.
func (r *Registry) GetObject(id string) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Entity{}, false
	}
	return r.entities[i], true
}

// ListEntities returns a copy of all entities in registration order.
func (r *Registry) ListEntities() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entity(nil), r.entities...)
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}
