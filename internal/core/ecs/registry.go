package ecs

import "reflect"

// Registry maps each component type to its store and supports bulk cleanup
// on entity destroy.
type Registry struct {
	stores map[reflect.Type]Removable
	order  []reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[reflect.Type]Removable, 16),
	}
}

// Register adds a store for type t. A second store for the same type replaces
// nothing and is ignored.
func (r *Registry) Register(t reflect.Type, store Removable) {
	if _, ok := r.stores[t]; ok {
		return
	}
	r.stores[t] = store
	r.order = append(r.order, t)
}

func (r *Registry) Lookup(t reflect.Type) (Removable, bool) {
	s, ok := r.stores[t]
	return s, ok
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, t := range r.order {
		r.stores[t].Remove(id)
	}
}

// Len is the number of component types seen so far.
func (r *Registry) Len() int { return len(r.order) }
