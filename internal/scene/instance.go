package scene

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Instance is a node in the scene tree: a typed, named object with
// properties, tags, attributes and ordered children. Children and parent
// links are managed by the owning Tree; the parent link is lookup-only,
// never ownership.
type Instance struct {
	ref    Ref
	parent Ref

	Name       string
	Class      string
	Properties map[string]Value
	Tags       mapset.Set[string]
	Attributes map[string]Value

	// Source is the instigating-source metadata, nil for instances that were
	// never loaded from an artifact.
	Source *Source

	children []Ref

	// detached carries the subtree's nodes while the instance is not yet part
	// of a tree (see Tree.Clone / Tree.InsertSubtree).
	detached []*Instance
}

// BuildChild constructs a child under a detached instance. Only valid while
// the parent is not yet inserted into a tree.
func (i *Instance) BuildChild(class, name string) *Instance {
	child := NewInstance(class, name)
	child.parent = i.ref
	i.children = append(i.children, child.ref)
	i.detached = append(i.detached, child)
	return child
}

// AdoptChild attaches an already-built detached instance, with its own
// detached descendants, under this one. Only valid while both are outside
// a tree.
func (i *Instance) AdoptChild(child *Instance) {
	child.parent = i.ref
	i.children = append(i.children, child.ref)
	i.detached = append(i.detached, child)
	i.detached = append(i.detached, child.detached...)
	child.detached = nil
}

// NewInstance builds a detached instance with a fresh identity. It is not
// part of any tree until inserted.
func NewInstance(class, name string) *Instance {
	return &Instance{
		ref:        NewRef(),
		Name:       name,
		Class:      class,
		Properties: make(map[string]Value),
		Tags:       mapset.NewThreadUnsafeSet[string](),
		Attributes: make(map[string]Value),
	}
}

// Ref returns the instance's stable identity.
func (i *Instance) Ref() Ref {
	return i.ref
}

// Parent returns the identity of the owning parent, or RefNone for roots and
// detached instances.
func (i *Instance) Parent() Ref {
	return i.parent
}

// Children returns the ordered child identities. The slice is owned by the
// tree; callers must not mutate it.
func (i *Instance) Children() []Ref {
	return i.children
}

// SetProperty sets or replaces a property. A nil value removes the key.
func (i *Instance) SetProperty(name string, value Value) *Instance {
	if value == nil {
		delete(i.Properties, name)
		return i
	}
	i.Properties[name] = value
	return i
}

// SetAttribute sets or replaces an attribute. A nil value removes the key.
func (i *Instance) SetAttribute(name string, value Value) *Instance {
	if value == nil {
		delete(i.Attributes, name)
		return i
	}
	i.Attributes[name] = value
	return i
}

// AddTag adds a tag, returning the instance for chaining.
func (i *Instance) AddTag(tag string) *Instance {
	i.Tags.Add(tag)
	return i
}

// ReferenceTargets returns the non-nil targets of all reference-typed
// properties, keyed by property name.
func (i *Instance) ReferenceTargets() map[string]Ref {
	var targets map[string]Ref
	for name, value := range i.Properties {
		ref, ok := value.(Reference)
		if !ok || ref.Target.IsNone() {
			continue
		}
		if targets == nil {
			targets = make(map[string]Ref)
		}
		targets[name] = ref.Target
	}
	return targets
}

// DetachedDescendants returns the not-yet-inserted descendants accumulated
// by BuildChild or CloneFrom, in no particular order. The slice is owned by
// the instance and is consumed when it is inserted into a tree.
func (i *Instance) DetachedDescendants() []*Instance {
	return i.detached
}
