package level

import (
	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/plan"
)

// PlayerSize is the side of the player's box.
const PlayerSize = 32.0

// SpawnPlayer puts the autopilot player at the bottom centre of bounds, flying
// up at speed units per second.
func SpawnPlayer(w *ecs.World, bounds component.Bounds, speed float64) ecs.EntityID {
	id := w.CreateEntity()
	ecs.Insert(w, id, component.Player{})
	ecs.Insert(w, id, component.Transform{
		X: (bounds.Left + bounds.Right) / 2,
		Y: bounds.Bottom + PlayerSize/2,
	})
	ecs.Insert(w, id, component.Size{W: PlayerSize, H: PlayerSize})
	ecs.Insert(w, id, component.Velocity{Y: speed})
	ecs.Insert(w, id, component.Health{Points: DefaultHealth})
	ecs.Insert(w, id, component.HealthFlash{})
	return id
}

// SpawnLevel creates the level entity driven by root.
func SpawnLevel(w *ecs.World, root plan.Element[Context]) ecs.EntityID {
	id := w.CreateEntity()
	plan.Attach(w, id, root)
	return id
}

// Bounds returns the playable rectangle for a level of the given length.
func Bounds(width, length float64) component.Bounds {
	return component.Bounds{Left: -width / 2, Right: width / 2, Bottom: 0, Top: length}
}
