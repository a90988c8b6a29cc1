package system

import (
	"time"

	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/ecs"
	coresys "github.com/levelplan/levelplan/internal/core/system"
)

// MovementSystem integrates velocities and keeps everything inside the level.
// Bouncing entities reflect off the edges and are hurt by each bounce.
// Phase 2 (Update).
type MovementSystem struct {
	world  *ecs.World
	bounds *component.Bounds
}

// NewMovementSystem clamps against *bounds as it is at each update.
func NewMovementSystem(world *ecs.World, bounds *component.Bounds) *MovementSystem {
	return &MovementSystem{world: world, bounds: bounds}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	sizes := ecs.Store[component.Size](s.world)
	ecs.Each2(ecs.Store[component.Transform](s.world), ecs.Store[component.Velocity](s.world),
		func(id ecs.EntityID, t *component.Transform, v *component.Velocity) {
			var halfW, halfH float64
			if size, ok := sizes.Get(id); ok {
				halfW, halfH = size.W/2, size.H/2
			}

			outX, outY := false, false
			t.X += v.X * secs
			if t.X < s.bounds.Left+halfW {
				t.X, outX = s.bounds.Left+halfW, true
			} else if t.X > s.bounds.Right-halfW {
				t.X, outX = s.bounds.Right-halfW, true
			}
			t.Y += v.Y * secs
			if t.Y > s.bounds.Top-halfH {
				t.Y, outY = s.bounds.Top-halfH, true
			} else if t.Y < s.bounds.Bottom+halfH {
				t.Y, outY = s.bounds.Bottom+halfH, true
			}

			if !v.Bounces || (!outX && !outY) {
				return
			}
			damage(s.world, id)
			if outX {
				v.X = -v.X
			}
			if outY {
				v.Y = -v.Y
			}
		})
}
