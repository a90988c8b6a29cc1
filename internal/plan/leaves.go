package plan

import (
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// SetComponent keeps a copy of its component on the target for exactly as
// long as it is active.
type SetComponent[T, C any] struct {
	Base[T]
	component C
}

func NewSetComponent[T, C any](component C) *SetComponent[T, C] {
	return &SetComponent[T, C]{component: component}
}

func (s *SetComponent[T, C]) Activate(target ecs.EntityID, buf *command.Buffer, _ T) {
	command.Attach(buf, target, s.component)
}

func (s *SetComponent[T, C]) Deactivate(target ecs.EntityID, buf *command.Buffer, _ T) {
	command.Detach[C](buf, target)
}

// Signal emits one event, built for the plan's target, on activation and then
// holds forever. Hosts use it for terminal outcomes such as winning the level.
type Signal[T, E any] struct {
	Base[T]
	build func(target ecs.EntityID) E
}

func NewSignal[T, E any](build func(target ecs.EntityID) E) *Signal[T, E] {
	return &Signal[T, E]{build: build}
}

func (s *Signal[T, E]) Activate(target ecs.EntityID, buf *command.Buffer, _ T) {
	command.Emit(buf, target, s.build(target))
}
