// Package command records deferred world mutations. Plans and systems append
// intents while they run; Apply commits them in recorded order once the
// recording pass is over.
package command

import (
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/core/event"
)

// Kind names the intent an entry records.
type Kind int

const (
	KindAttach Kind = iota + 1
	KindDetach
	KindSpawn
	KindDespawn
	KindEmit
)

func (k Kind) String() string {
	switch k {
	case KindAttach:
		return "attach"
	case KindDetach:
		return "detach"
	case KindSpawn:
		return "spawn"
	case KindDespawn:
		return "despawn"
	case KindEmit:
		return "emit"
	default:
		return "unknown"
	}
}

// Component is a type-erased component value ready to be inserted.
type Component interface {
	insert(w *ecs.World, id ecs.EntityID)
}

type value[T any] struct{ v T }

func (c value[T]) insert(w *ecs.World, id ecs.EntityID) { ecs.Insert(w, id, c.v) }

// With wraps v for Spawn.
func With[T any](v T) Component { return value[T]{v: v} }

type entry struct {
	kind   Kind
	target ecs.EntityID
	apply  func(w *ecs.World, bus *event.Bus)
}

// Buffer is append-only until Apply. It is not safe for concurrent use.
type Buffer struct {
	world   *ecs.World
	entries []entry
}

// NewBuffer binds a buffer to w so Spawn can reserve ids up front.
func NewBuffer(w *ecs.World) *Buffer {
	return &Buffer{world: w, entries: make([]entry, 0, 32)}
}

func (b *Buffer) push(kind Kind, target ecs.EntityID, fn func(*ecs.World, *event.Bus)) {
	b.entries = append(b.entries, entry{kind: kind, target: target, apply: fn})
}

// Attach records inserting c on target, replacing any component of type T.
func Attach[T any](b *Buffer, target ecs.EntityID, c T) {
	b.push(KindAttach, target, func(w *ecs.World, _ *event.Bus) {
		ecs.Insert(w, target, c)
	})
}

// Detach records removing the T component from target.
func Detach[T any](b *Buffer, target ecs.EntityID) {
	b.push(KindDetach, target, func(w *ecs.World, _ *event.Bus) {
		ecs.Remove[T](w, target)
	})
}

// Emit records an event for the bus. It reaches subscribers the tick after Apply.
func Emit[T any](b *Buffer, source ecs.EntityID, ev T) {
	b.push(KindEmit, source, func(_ *ecs.World, bus *event.Bus) {
		if bus != nil {
			event.Emit(bus, ev)
		}
	})
}

// Spawn reserves an id now and records creating it with components. The id is
// usable as a target by later entries in the same buffer; the components only
// appear on Apply.
func (b *Buffer) Spawn(components ...Component) ecs.EntityID {
	id := b.world.CreateEntity()
	b.push(KindSpawn, id, func(w *ecs.World, _ *event.Bus) {
		for _, c := range components {
			c.insert(w, id)
		}
	})
	return id
}

// Despawn records destroying target and all of its components.
func (b *Buffer) Despawn(target ecs.EntityID) {
	b.push(KindDespawn, target, func(w *ecs.World, _ *event.Bus) {
		w.Destroy(target)
	})
}

// Len is the number of recorded entries.
func (b *Buffer) Len() int { return len(b.entries) }

// Kinds lists recorded intents in order.
func (b *Buffer) Kinds() []Kind {
	out := make([]Kind, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.kind
	}
	return out
}

// Apply commits every entry in recorded order and empties the buffer. bus may
// be nil when nobody listens for events.
func (b *Buffer) Apply(w *ecs.World, bus *event.Bus) {
	for i := range b.entries {
		b.entries[i].apply(w, bus)
		b.entries[i] = entry{}
	}
	b.entries = b.entries[:0]
}
