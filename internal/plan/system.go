package plan

import (
	"time"

	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/core/event"
	coresys "github.com/levelplan/levelplan/internal/core/system"
)

// Builder produces the snapshot every plan reads during one tick.
type Builder[T any] func(w *ecs.World) T

// Observer receives driver statistics. internal/metrics implements it.
//
// Every activated plan is later reported exactly once as retired (its root
// finished) or dropped (its target was destroyed or the plan replaced before
// that happened).
type Observer interface {
	PlanActivated()
	PlanRetired()
	PlanDropped()
	TickObserved(plans int, took time.Duration)
}

// System steps every Plan[T] in the world once per tick.
// Phase 1 (Plan).
//
// All plans see the same snapshot, built before any of them runs, and none of
// them sees another's mutations until the next tick: the shared buffer is
// applied only after the last plan has been stepped.
type System[T any] struct {
	world    *ecs.World
	bus      *event.Bus
	build    Builder[T]
	buf      *command.Buffer
	log      *zap.Logger
	observer Observer

	// live holds the plans activated and not yet retired, by target.
	live map[ecs.EntityID]*Plan[T]
}

func NewSystem[T any](world *ecs.World, bus *event.Bus, build Builder[T], log *zap.Logger) *System[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &System[T]{
		world: world,
		bus:   bus,
		build: build,
		buf:   command.NewBuffer(world),
		log:   log,
		live:  make(map[ecs.EntityID]*Plan[T]),
	}
}

// SetObserver installs o; nil disables observation.
func (s *System[T]) SetObserver(o Observer) { s.observer = o }

func (s *System[T]) Phase() coresys.Phase { return coresys.PhasePlan }

func (s *System[T]) Update(_ time.Duration) {
	start := time.Now()
	ctx := s.build(s.world)

	store := ecs.Store[Plan[T]](s.world)
	ids := store.IDs()
	for _, id := range ids {
		p, _ := store.Get(id)
		if p.State() == Retired {
			continue
		}
		if p.State() == Dormant {
			if old, ok := s.live[id]; ok && old != p {
				s.dropped(id)
			}
			s.live[id] = p
			s.log.Debug("plan activated", zap.Stringer("target", id))
			if s.observer != nil {
				s.observer.PlanActivated()
			}
		}
		if p.Tick(id, s.buf, ctx) {
			continue
		}
		delete(s.live, id)
		s.buf.Despawn(id)
		command.Emit(s.buf, id, event.PlanRetired{Target: id})
		s.log.Debug("plan retired", zap.Stringer("target", id))
		if s.observer != nil {
			s.observer.PlanRetired()
		}
	}

	for id, p := range s.live {
		if cur, ok := store.Get(id); !ok || cur != p {
			s.dropped(id)
		}
	}

	s.buf.Apply(s.world, s.bus)
	if s.observer != nil {
		s.observer.TickObserved(len(ids), time.Since(start))
	}
}

// dropped forgets a plan that left the world without its root finishing.
// Its elements were never deactivated.
func (s *System[T]) dropped(id ecs.EntityID) {
	delete(s.live, id)
	s.log.Debug("plan dropped", zap.Stringer("target", id))
	if s.observer != nil {
		s.observer.PlanDropped()
	}
}

// Live reports how many plans are activated and not yet retired or dropped.
func (s *System[T]) Live() int { return len(s.live) }
