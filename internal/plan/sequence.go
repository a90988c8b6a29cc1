package plan

import (
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// Sequence runs its elements one after another. When the current element
// finishes it is deactivated and the next one is activated in the same tick,
// so no element misses a tick of life.
type Sequence[T any] struct {
	elements []Element[T]
	index    int
	active   bool
}

func NewSequence[T any](elements ...Element[T]) *Sequence[T] {
	return &Sequence[T]{elements: elements}
}

// Push appends an element. Call it while authoring, never on a running plan.
func (s *Sequence[T]) Push(e Element[T]) *Sequence[T] {
	s.elements = append(s.elements, e)
	return s
}

func (s *Sequence[T]) Len() int { return len(s.elements) }

// Index is the cursor; it equals Len once the sequence is exhausted.
func (s *Sequence[T]) Index() int { return s.index }

func (s *Sequence[T]) Activate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	if len(s.elements) == 0 {
		panic("plan: sequence activated with no elements")
	}
	s.index = 0
	s.active = true
	s.elements[0].Activate(target, buf, ctx)
}

func (s *Sequence[T]) Step(target ecs.EntityID, buf *command.Buffer, ctx T) bool {
	if !s.active {
		panic("plan: sequence stepped before activation")
	}
	if s.index >= len(s.elements) {
		return false
	}
	current := s.elements[s.index]
	if current.Step(target, buf, ctx) {
		return true
	}
	current.Deactivate(target, buf, ctx)
	s.index++
	if s.index < len(s.elements) {
		s.elements[s.index].Activate(target, buf, ctx)
		return true
	}
	return false
}

// Deactivate stops the current element, if any. An exhausted sequence has
// already deactivated its last element, so only the cursor is reset.
func (s *Sequence[T]) Deactivate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	if s.active && s.index < len(s.elements) {
		s.elements[s.index].Deactivate(target, buf, ctx)
	}
	s.index = 0
	s.active = false
}
