package system

import (
	"time"

	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/ecs"
	coresys "github.com/levelplan/levelplan/internal/core/system"
)

// CollisionSystem resolves player contacts: enemies hurt on touch (both ways,
// flashes permitting) and powerups heal and disappear.
// Phase 3 (PostUpdate).
type CollisionSystem struct {
	world *ecs.World
}

func NewCollisionSystem(world *ecs.World) *CollisionSystem {
	return &CollisionSystem{world: world}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CollisionSystem) Update(_ time.Duration) {
	player, _, ok := ecs.Store[component.Player](s.world).First()
	if !ok {
		return
	}
	pt, ok1 := ecs.Get[component.Transform](s.world, player)
	ps, ok2 := ecs.Get[component.Size](s.world, player)
	if !ok1 || !ok2 {
		return
	}
	transforms := ecs.Store[component.Transform](s.world)
	sizes := ecs.Store[component.Size](s.world)

	ecs.Each3(ecs.Store[component.Enemy](s.world), transforms, sizes,
		func(id ecs.EntityID, _ *component.Enemy, t *component.Transform, size *component.Size) {
			if !overlaps(pt, ps, t, size) {
				return
			}
			damage(s.world, player)
			damage(s.world, id)
		})

	ecs.Each3(ecs.Store[component.Powerup](s.world), transforms, sizes,
		func(id ecs.EntityID, _ *component.Powerup, t *component.Transform, size *component.Size) {
			if !overlaps(pt, ps, t, size) {
				return
			}
			if h, ok := ecs.Get[component.Health](s.world, player); ok && h.Points < MaxPlayerHealth {
				h.Points++
			}
			s.world.MarkForDestruction(id)
		})
}
