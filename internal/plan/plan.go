package plan

import (
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// State is the lifecycle position of a Plan.
type State int

const (
	Dormant State = iota // built, root not yet activated
	Active               // root activated and being stepped
	Retired              // root finished; no further calls
)

func (s State) String() string {
	switch s {
	case Dormant:
		return "dormant"
	case Active:
		return "active"
	case Retired:
		return "retired"
	default:
		return "unknown"
	}
}

// Plan is the per-target container: a root element plus its lifecycle state.
// It is stored as a component on the entity it drives.
type Plan[T any] struct {
	root  Element[T]
	state State
}

func New[T any](root Element[T]) Plan[T] {
	if root == nil {
		panic("plan: nil root element")
	}
	return Plan[T]{root: root}
}

func (p *Plan[T]) State() State { return p.state }

// Tick activates the root on the first call, then steps it. It reports false
// once the root has finished; a retired plan is never stepped again.
func (p *Plan[T]) Tick(target ecs.EntityID, buf *command.Buffer, ctx T) bool {
	switch p.state {
	case Retired:
		return false
	case Dormant:
		p.root.Activate(target, buf, ctx)
		p.state = Active
	}
	if !p.root.Step(target, buf, ctx) {
		p.state = Retired
		return false
	}
	return true
}

// Attach puts a plan for root on an existing entity.
func Attach[T any](w *ecs.World, target ecs.EntityID, root Element[T]) {
	ecs.Insert(w, target, New(root))
}

// Spawn records a new entity carrying a plan for root plus extra components.
func Spawn[T any](buf *command.Buffer, root Element[T], components ...command.Component) ecs.EntityID {
	all := make([]command.Component, 0, len(components)+1)
	all = append(all, command.With(New(root)))
	all = append(all, components...)
	return buf.Spawn(all...)
}
