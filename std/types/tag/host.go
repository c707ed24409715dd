// Package tag stores process-local metadata on packet objects.
//
// Tags are addressed by their Go type and never encoded on the wire.
package tag

import (
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
)

var typeIds sync.Map // reflect.Type -> int
var nextTypeId atomic.Int64

// TypeId returns the process-wide id of the tag type T.
// The id is assigned on first use and never changes.
func TypeId[T any]() int {
	t := reflect.TypeFor[T]()
	if id, ok := typeIds.Load(t); ok {
		return id.(int)
	}
	id, _ := typeIds.LoadOrStore(t, int(nextTypeId.Add(1)))
	return id.(int)
}

// Host holds at most one tag of each type.
// The zero value is an empty host. A Host is not safe for concurrent use,
// but a copy made by assignment is independent of the original.
type Host struct {
	tags map[int]any
}

// Get returns the tag of type T, or nil if there is none.
func Get[T any](h *Host) *T {
	v, ok := h.tags[TypeId[T]()]
	if !ok {
		return nil
	}
	t, ok := v.(*T)
	if !ok {
		panic("[BUG] tag.Host: stored tag does not match its type id")
	}
	return t
}

// Set adds or replaces the tag of type T. A nil tag removes it.
// The tag is shared, not copied.
func Set[T any](h *Host, t *T) {
	id := TypeId[T]()
	if t == nil {
		if _, ok := h.tags[id]; ok {
			tags := maps.Clone(h.tags)
			delete(tags, id)
			h.tags = tags
		}
		return
	}
	tags := make(map[int]any, len(h.tags)+1)
	maps.Copy(tags, h.tags)
	tags[id] = t
	h.tags = tags
}

// Remove removes the tag of type T.
func Remove[T any](h *Host) {
	Set[T](h, nil)
}

// Len returns the number of stored tags.
func (h *Host) Len() int {
	return len(h.tags)
}

// Clear removes all tags.
func (h *Host) Clear() {
	h.tags = nil
}
