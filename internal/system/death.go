package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/core/event"
	coresys "github.com/levelplan/levelplan/internal/core/system"
)

// DeathSystem removes entities whose health ran out. The player's death is
// the level's defeat.
// Phase 3 (PostUpdate).
type DeathSystem struct {
	world *ecs.World
	bus   *event.Bus
	buf   *command.Buffer
	log   *zap.Logger
}

func NewDeathSystem(world *ecs.World, bus *event.Bus, log *zap.Logger) *DeathSystem {
	return &DeathSystem{world: world, bus: bus, buf: command.NewBuffer(world), log: log}
}

func (s *DeathSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DeathSystem) Update(_ time.Duration) {
	for _, id := range ecs.Store[component.Health](s.world).IDs() {
		h, _ := ecs.Get[component.Health](s.world, id)
		if h.Points > 0 {
			continue
		}
		s.buf.Despawn(id)
		if ecs.Has[component.Player](s.world, id) {
			s.log.Info("player died")
			command.Emit(s.buf, id, event.LevelOutcome{Source: id, Result: event.Defeat})
		}
	}
	s.buf.Apply(s.world, s.bus)
}

// FlashSystem counts invulnerability down.
// Phase 3 (PostUpdate), after collisions.
type FlashSystem struct {
	world *ecs.World
}

func NewFlashSystem(world *ecs.World) *FlashSystem {
	return &FlashSystem{world: world}
}

func (s *FlashSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *FlashSystem) Update(_ time.Duration) {
	ecs.Store[component.HealthFlash](s.world).Each(func(_ ecs.EntityID, f *component.HealthFlash) {
		if f.Ticks > 0 {
			f.Ticks--
		}
	})
}
