package scene

import (
	"encoding/json"
	"fmt"
	"os"
)

// sceneFile is the on-disk shape of a scene definition.
type sceneFile struct {
	Entities []Entity `json:"entities"`
}

// Load reads a scene definition from a JSON file and validates it.
func Load(path string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var f sceneFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", path, err)
	}

	if err := validate(f.Entities); err != nil {
		return nil, fmt.Errorf("invalid scene file %s: %w", path, err)
	}

	return f.Entities, nil
}

func validate(entities []Entity) error {
	if len(entities) == 0 {
		return fmt.Errorf("scene has no entities")
	}
	seen := make(map[string]bool, len(entities))
	for i, e := range entities {
		if e.ID == "" {
			return fmt.Errorf("entity at index %d has no id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate entity id %q", e.ID)
		}
		seen[e.ID] = true
		if e.Type == "" {
			return fmt.Errorf("entity %q has no type", e.ID)
		}
	}
	return nil
}
