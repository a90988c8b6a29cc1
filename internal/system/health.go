package system

import (
	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

const (
	// FlashTicks is how long a hit entity stays invulnerable.
	FlashTicks = 10
	// MaxPlayerHealth caps powerup healing.
	MaxPlayerHealth = 4
)

// damage takes one point from id unless it is flashing, and starts a flash
// when it carries a HealthFlash. It reports whether a point was lost.
func damage(w *ecs.World, id ecs.EntityID) bool {
	h, ok := ecs.Get[component.Health](w, id)
	if !ok || h.Points <= 0 {
		return false
	}
	flash, hasFlash := ecs.Get[component.HealthFlash](w, id)
	if hasFlash && flash.Ticks > 0 {
		return false
	}
	h.Points--
	if hasFlash {
		flash.Ticks = FlashTicks
	}
	return true
}

func overlaps(at *component.Transform, as *component.Size, bt *component.Transform, bs *component.Size) bool {
	return abs(at.X-bt.X)*2 < as.W+bs.W && abs(at.Y-bt.Y)*2 < as.H+bs.H
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
