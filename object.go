package pjs

import (
	"context"
	"sort"
	"sync"
)

// Object is an addressable host entity. Hosts implement Object by embedding
// ObjectCore, which carries the slots that the machine manages itself: a
// private dictionary, a field store, and the open/parent/prior-selection
// bookkeeping used by tags.
type Object interface {
	Value
	Name() string
	Append(child Value) error
	Prepend(child Value) error
	objectCore() *ObjectCore
}

// Selection is the implicit receiver of selection-sensitive words.
type Selection []Object

// Document is the host side of object creation and lookup.
type Document interface {
	// Root is the object that receives commits when nothing is selected.
	Root() Object

	// Create makes a new, detached object for a tag.
	Create(name string) (Object, error)

	// Query resolves selector against the descendants of within, or against
	// the whole document when within is nil.
	Query(ctx context.Context, within Object, selector string) ([]Object, error)
}

// ObjectCore holds the machine-managed slots of an Object. The zero value is
// ready to use.
type ObjectCore struct {
	mu     sync.Mutex
	words  map[string]Handler
	fields map[string]Value

	open   bool
	prior  Selection
	parent Object
}

func (oc *ObjectCore) isValue()                {}
func (oc *ObjectCore) objectCore() *ObjectCore { return oc }

// Define installs h under name in the object's private dictionary.
func (oc *ObjectCore) Define(name string, h Handler) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if oc.words == nil {
		oc.words = make(map[string]Handler)
	}
	oc.words[name] = h
}

// Lookup finds name in the object's private dictionary.
func (oc *ObjectCore) Lookup(name string) (Handler, bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	h, ok := oc.words[name]
	return h, ok
}

// Words lists the names in the private dictionary.
func (oc *ObjectCore) Words() []string {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	names := make([]string, 0, len(oc.words))
	for name := range oc.words {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field reads a field.
func (oc *ObjectCore) Field(name string) (Value, bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	v, ok := oc.fields[name]
	return v, ok
}

// SetField writes a field.
func (oc *ObjectCore) SetField(name string, v Value) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if oc.fields == nil {
		oc.fields = make(map[string]Value)
	}
	oc.fields[name] = v
}

// IsOpen reports whether a tag has opened the object without closing it yet.
func (oc *ObjectCore) IsOpen() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.open
}

// Parent returns the object that was first in the selection when this object
// was created; it is where the object is expected to end up.
func (oc *ObjectCore) Parent() Object {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.parent
}

func (oc *ObjectCore) opened(open bool, prior Selection) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.open = open
	oc.prior = prior
	if len(prior) > 0 {
		oc.parent = prior[0]
	}
}

func (oc *ObjectCore) close() Selection {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.open = false
	return oc.prior
}
