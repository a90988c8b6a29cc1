// Package plan drives level progression. A plan is a tree of elements stepped
// once per tick against a read-only snapshot of the world; every side effect
// goes through a command.Buffer that is committed after all plans have run.
package plan

import (
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// Element is one node of a plan tree.
//
// Activate is called once when the node becomes active and always before its
// first Step. Step is called once per tick while the node is active; it
// returns false when the node has finished. Deactivate is called once when the
// node stops being active, either after Step returned false or when a parent
// abandons it early.
//
// target is the entity that owns the plan, ctx the snapshot for this tick.
type Element[T any] interface {
	Activate(target ecs.EntityID, buf *command.Buffer, ctx T)
	Step(target ecs.EntityID, buf *command.Buffer, ctx T) bool
	Deactivate(target ecs.EntityID, buf *command.Buffer, ctx T)
}

// Base supplies the default behaviour: no effects, active forever.
// Embed it and override what you need.
type Base[T any] struct{}

func (Base[T]) Activate(ecs.EntityID, *command.Buffer, T)   {}
func (Base[T]) Step(ecs.EntityID, *command.Buffer, T) bool  { return true }
func (Base[T]) Deactivate(ecs.EntityID, *command.Buffer, T) {}

// Condition is a guard over the tick snapshot. It must be total.
type Condition[T any] func(ctx T) bool

// Nop holds its position forever and records nothing. Use it as a placeholder
// branch or under a guard that alone decides when it ends.
type Nop[T any] struct {
	Base[T]
}

func NewNop[T any]() *Nop[T] { return &Nop[T]{} }
