package plan

import (
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// Cycle restarts its element every time it finishes and never finishes itself.
type Cycle[T any] struct {
	element Element[T]
	active  bool
}

func NewCycle[T any](e Element[T]) *Cycle[T] {
	return &Cycle[T]{element: e}
}

// CycleOf loops over elements in order.
func CycleOf[T any](elements ...Element[T]) *Cycle[T] {
	return NewCycle[T](NewSequence(elements...))
}

func (c *Cycle[T]) Activate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	c.active = true
	c.element.Activate(target, buf, ctx)
}

// Step restarts a finished element within the same tick.
func (c *Cycle[T]) Step(target ecs.EntityID, buf *command.Buffer, ctx T) bool {
	if !c.active {
		panic("plan: cycle stepped before activation")
	}
	if !c.element.Step(target, buf, ctx) {
		c.element.Deactivate(target, buf, ctx)
		c.element.Activate(target, buf, ctx)
	}
	return true
}

func (c *Cycle[T]) Deactivate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	c.active = false
	c.element.Deactivate(target, buf, ctx)
}
