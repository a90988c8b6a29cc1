package plan

import (
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// While steps its element for as long as the condition holds. The condition is
// checked every tick before the element is stepped; once it fails the While
// finishes without stepping the element that tick.
type While[T any] struct {
	cond    Condition[T]
	element Element[T]
	active  bool
}

func NewWhile[T any](cond Condition[T], e Element[T]) *While[T] {
	return &While[T]{cond: cond, element: e}
}

func (w *While[T]) Activate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	w.active = true
	w.element.Activate(target, buf, ctx)
}

func (w *While[T]) Step(target ecs.EntityID, buf *command.Buffer, ctx T) bool {
	if !w.active {
		panic("plan: while stepped before activation")
	}
	if !w.cond(ctx) {
		return false
	}
	return w.element.Step(target, buf, ctx)
}

func (w *While[T]) Deactivate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	w.active = false
	w.element.Deactivate(target, buf, ctx)
}

// Conditional picks a branch every tick. The branch that lost the condition is
// deactivated before the winning branch is activated, and a branch is only
// activated on the tick it is first chosen. Without an else branch a false
// condition finishes the Conditional.
type Conditional[T any] struct {
	cond       Condition[T]
	ifBranch   Element[T]
	ifActive   bool
	elseBranch Element[T]
	elseActive bool
	active     bool
}

func NewConditional[T any](cond Condition[T], ifBranch Element[T]) *Conditional[T] {
	return &Conditional[T]{cond: cond, ifBranch: ifBranch}
}

func NewIfElse[T any](cond Condition[T], ifBranch, elseBranch Element[T]) *Conditional[T] {
	return &Conditional[T]{cond: cond, ifBranch: ifBranch, elseBranch: elseBranch}
}

// Activate only arms the Conditional; branches are activated lazily by Step.
func (c *Conditional[T]) Activate(ecs.EntityID, *command.Buffer, T) { c.active = true }

func (c *Conditional[T]) Step(target ecs.EntityID, buf *command.Buffer, ctx T) bool {
	if !c.active {
		panic("plan: conditional stepped before activation")
	}
	if c.cond(ctx) {
		c.deactivateElse(target, buf, ctx)
		if !c.ifActive {
			c.ifBranch.Activate(target, buf, ctx)
			c.ifActive = true
		}
		return c.ifBranch.Step(target, buf, ctx)
	}

	c.deactivateIf(target, buf, ctx)
	if c.elseBranch == nil {
		return false
	}
	if !c.elseActive {
		c.elseBranch.Activate(target, buf, ctx)
		c.elseActive = true
	}
	return c.elseBranch.Step(target, buf, ctx)
}

func (c *Conditional[T]) Deactivate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	c.active = false
	c.deactivateIf(target, buf, ctx)
	c.deactivateElse(target, buf, ctx)
}

func (c *Conditional[T]) deactivateIf(target ecs.EntityID, buf *command.Buffer, ctx T) {
	if c.ifActive {
		c.ifBranch.Deactivate(target, buf, ctx)
		c.ifActive = false
	}
}

func (c *Conditional[T]) deactivateElse(target ecs.EntityID, buf *command.Buffer, ctx T) {
	if c.elseActive {
		c.elseBranch.Deactivate(target, buf, ctx)
		c.elseActive = false
	}
}
