package scene

import "github.com/harun/golem/pkg/geo"

// DefaultScene returns the built-in plaza scene used when no scene file is
// configured. The perimeter walls are structural and never show up in
// scans.
func DefaultScene() []Entity {
	return []Entity{
		{
			ID:           "fountain",
			Type:         "fountain",
			Description:  "A stone fountain with water trickling from its top basin",
			Interactable: true,
			Position:     geo.Vec2{X: 0, Z: -8},
		},
		{
			ID:           "crate",
			Type:         "prop",
			Description:  "A wooden crate, slightly weathered, with rope handles",
			Interactable: true,
			Position:     geo.Vec2{X: 4, Z: 3},
		},
		{
			ID:           "lamp",
			Type:         "lamp",
			Description:  "A cast-iron street lamp with a warm flickering light",
			Interactable: true,
			Position:     geo.Vec2{X: -6, Z: 2},
		},
		{
			ID:           "bench",
			Type:         "furniture",
			Description:  "A park bench with peeling green paint",
			Interactable: true,
			Position:     geo.Vec2{X: 8, Z: -5},
		},
		{
			ID:           "sign",
			Type:         "sign",
			Description:  "A wooden signpost pointing toward the plaza exits",
			Interactable: true,
			Position:     geo.Vec2{X: -3, Z: -10},
		},
		{
			ID:           "terminal",
			Type:         "terminal",
			Description:  "A humming computer terminal with a green phosphor screen",
			Interactable: true,
			Position:     geo.Vec2{X: 10, Z: 8},
		},
		{
			ID:          "boulder",
			Type:        "rock",
			Description: "A massive boulder, far too heavy to move",
			Position:    geo.Vec2{X: -12, Z: -6},
		},
		{
			ID:          "wall-north",
			Type:        "wall",
			Description: "The northern perimeter wall",
			Structural:  true,
			Position:    geo.Vec2{X: 0, Z: 24},
		},
		{
			ID:          "wall-south",
			Type:        "wall",
			Description: "The southern perimeter wall",
			Structural:  true,
			Position:    geo.Vec2{X: 0, Z: -24},
		},
		{
			ID:          "wall-east",
			Type:        "wall",
			Description: "The eastern perimeter wall",
			Structural:  true,
			Position:    geo.Vec2{X: 24, Z: 0},
		},
		{
			ID:          "wall-west",
			Type:        "wall",
			Description: "The western perimeter wall",
			Structural:  true,
			Position:    geo.Vec2{X: -24, Z: 0},
		},
	}
}
