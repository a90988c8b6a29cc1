package ecs

import "reflect"

// World is the top-level ECS container. It owns the entity pool, one store per
// component type, and a deferred destruction queue flushed by CleanupSystem at
// the end of each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes id and all of its components immediately.
func (w *World) Destroy(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// Store returns the store for component type T, creating it on first use.
func Store[T any](w *World) *PtrComponentStore[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := w.registry.Lookup(t); ok {
		return s.(*PtrComponentStore[T])
	}
	s := NewPtrComponentStore[T]()
	w.registry.Register(t, s)
	return s
}

// Insert attaches c to id, replacing any previous T. Dead ids are ignored.
func Insert[T any](w *World, id EntityID, c T) {
	if !w.Alive(id) {
		return
	}
	Store[T](w).Set(id, &c)
}

// Remove detaches the T component from id, if present.
func Remove[T any](w *World, id EntityID) {
	Store[T](w).Remove(id)
}

func Get[T any](w *World, id EntityID) (*T, bool) {
	return Store[T](w).Get(id)
}

func Has[T any](w *World, id EntityID) bool {
	return Store[T](w).Has(id)
}
