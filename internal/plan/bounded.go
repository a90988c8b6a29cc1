package plan

import (
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// Measure reads a monotonic quantity from the snapshot, e.g. distance travelled.
type Measure[T any] func(ctx T) float64

// For runs its element until measure has grown by length since activation.
type For[T any] struct {
	measure Measure[T]
	length  float64
	start   float64
	element Element[T]
	active  bool
}

func NewFor[T any](measure Measure[T], length float64, e Element[T]) *For[T] {
	return &For[T]{measure: measure, length: length, element: e}
}

func (f *For[T]) Activate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	f.start = f.measure(ctx)
	f.active = true
	f.element.Activate(target, buf, ctx)
}

func (f *For[T]) Step(target ecs.EntityID, buf *command.Buffer, ctx T) bool {
	if !f.active {
		panic("plan: for stepped before activation")
	}
	if f.measure(ctx) >= f.start+f.length {
		return false
	}
	return f.element.Step(target, buf, ctx)
}

func (f *For[T]) Deactivate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	f.active = false
	f.element.Deactivate(target, buf, ctx)
}

// ForTicks steps its element count times and finishes on the next step.
type ForTicks[T any] struct {
	count   int
	stepped int
	element Element[T]
	active  bool
}

func NewForTicks[T any](count int, e Element[T]) *ForTicks[T] {
	return &ForTicks[T]{count: count, element: e}
}

func (f *ForTicks[T]) Activate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	f.stepped = 0
	f.active = true
	f.element.Activate(target, buf, ctx)
}

func (f *ForTicks[T]) Step(target ecs.EntityID, buf *command.Buffer, ctx T) bool {
	if !f.active {
		panic("plan: for_ticks stepped before activation")
	}
	if f.stepped >= f.count {
		return false
	}
	f.stepped++
	return f.element.Step(target, buf, ctx)
}

func (f *ForTicks[T]) Deactivate(target ecs.EntityID, buf *command.Buffer, ctx T) {
	f.active = false
	f.element.Deactivate(target, buf, ctx)
}
