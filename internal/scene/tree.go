package scene

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("instance not found")
	ErrNotOrphan  = errors.New("instance already has a parent")
	ErrRootDelete = errors.New("cannot destroy the tree root")
)

// Provider is the read-only tree-state contract consumed by the resolver,
// matcher and reference-path subsystems. *Tree is the canonical
// implementation; the provider is treated as the sole mutator of identity
// lifetimes.
type Provider interface {
	RootRef() Ref
	Get(ref Ref) *Instance
	ChildrenOf(ref Ref) []Ref
	ParentOf(ref Ref) Ref
}

// Tree is an arena of instances addressed by Ref. It exclusively owns every
// instance in it; destroying an instance cascades through its subtree and
// nulls out any reference property elsewhere in the tree that pointed into
// the destroyed subtree.
type Tree struct {
	root  Ref
	nodes map[Ref]*Instance
}

// NewTree builds a tree owning root. Descendants are added through Insert
// or InsertSubtree.
func NewTree(root *Instance) *Tree {
	t := &Tree{
		root:  root.ref,
		nodes: make(map[Ref]*Instance),
	}
	t.nodes[root.ref] = root
	stack := root.detached
	root.detached = nil
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[node.ref] = node
		stack = append(stack, node.detached...)
		node.detached = nil
	}
	return t
}

func (t *Tree) RootRef() Ref {
	return t.root
}

// Get returns the instance for ref, or nil if it is not part of this tree.
func (t *Tree) Get(ref Ref) *Instance {
	return t.nodes[ref]
}

func (t *Tree) ChildrenOf(ref Ref) []Ref {
	inst := t.nodes[ref]
	if inst == nil {
		return nil
	}
	return inst.children
}

func (t *Tree) ParentOf(ref Ref) Ref {
	inst := t.nodes[ref]
	if inst == nil {
		return RefNone
	}
	return inst.parent
}

// Len returns the number of instances in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Insert adds a detached instance (and nothing else) under parent, at the
// end of its child list.
func (t *Tree) Insert(parent Ref, inst *Instance) (Ref, error) {
	p := t.nodes[parent]
	if p == nil {
		return RefNone, ErrNotFound
	}
	if !inst.parent.IsNone() {
		return RefNone, ErrNotOrphan
	}
	inst.parent = parent
	t.nodes[inst.ref] = inst
	p.children = append(p.children, inst.ref)
	return inst.ref, nil
}

// Destroy removes ref and its entire subtree from the tree, then nulls every
// reference property anywhere in the tree that pointed at a destroyed
// instance. The root cannot be destroyed.
func (t *Tree) Destroy(ref Ref) error {
	inst := t.nodes[ref]
	if inst == nil {
		return ErrNotFound
	}
	if ref == t.root {
		return ErrRootDelete
	}

	removed := make(map[Ref]struct{})
	t.collect(ref, removed)

	// Unlink from the parent before dropping the subtree.
	parent := t.nodes[inst.parent]
	if parent != nil {
		for i, child := range parent.children {
			if child == ref {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}

	for r := range removed {
		delete(t.nodes, r)
	}

	// References must never dangle: null out any property that pointed into
	// the destroyed subtree.
	for _, node := range t.nodes {
		for name, value := range node.Properties {
			rv, ok := value.(Reference)
			if !ok {
				continue
			}
			if _, gone := removed[rv.Target]; gone {
				node.Properties[name] = Reference{}
			}
		}
	}

	return nil
}

func (t *Tree) collect(ref Ref, into map[Ref]struct{}) {
	into[ref] = struct{}{}
	inst := t.nodes[ref]
	if inst == nil {
		return
	}
	for _, child := range inst.children {
		t.collect(child, into)
	}
}

// Descendants returns ref and every descendant in breadth-first order.
func (t *Tree) Descendants(ref Ref) []Ref {
	if t.nodes[ref] == nil {
		return nil
	}
	out := make([]Ref, 0, len(t.nodes))
	queue := []Ref{ref}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		out = append(out, next)
		queue = append(queue, t.ChildrenOf(next)...)
	}
	return out
}

// Clone deep-copies the subtree rooted at ref into a new detached instance
// with fresh identities. Reference properties inside the subtree are
// rewritten to the cloned identities; references escaping the subtree are
// kept as-is.
func (t *Tree) Clone(ref Ref) *Instance {
	mapping := make(map[Ref]Ref)
	root := t.cloneInto(ref, mapping)
	if root == nil {
		return nil
	}
	rewriteReferences(root, mapping)
	return root
}

func (t *Tree) cloneInto(ref Ref, mapping map[Ref]Ref) *Instance {
	src := t.nodes[ref]
	if src == nil {
		return nil
	}
	dst := NewInstance(src.Class, src.Name)
	mapping[src.ref] = dst.ref
	for name, value := range src.Properties {
		dst.Properties[name] = value
	}
	for name, value := range src.Attributes {
		dst.Attributes[name] = value
	}
	dst.Tags = src.Tags.Clone()
	if src.Source != nil {
		source := *src.Source
		dst.Source = &source
	}
	for _, child := range src.children {
		cloned := t.cloneInto(child, mapping)
		if cloned == nil {
			continue
		}
		cloned.parent = dst.ref
		dst.children = append(dst.children, cloned.ref)
		// Detached subtrees keep their instances reachable through a private
		// index until inserted; the tree insert below re-homes them.
		dst.detached = append(dst.detached, cloned)
		dst.detached = append(dst.detached, cloned.detached...)
		cloned.detached = nil
	}
	return dst
}

func rewriteReferences(inst *Instance, mapping map[Ref]Ref) {
	for name, value := range inst.Properties {
		rv, ok := value.(Reference)
		if !ok {
			continue
		}
		if mapped, ok := mapping[rv.Target]; ok {
			inst.Properties[name] = Reference{Target: mapped}
		}
	}
	for _, child := range inst.detached {
		for name, value := range child.Properties {
			rv, ok := value.(Reference)
			if !ok {
				continue
			}
			if mapped, ok := mapping[rv.Target]; ok {
				child.Properties[name] = Reference{Target: mapped}
			}
		}
	}
}

// InsertSubtree adds a detached instance produced by Clone (or built by
// hand with linked detached children) under parent.
func (t *Tree) InsertSubtree(parent Ref, inst *Instance) (Ref, error) {
	ref, err := t.Insert(parent, inst)
	if err != nil {
		return RefNone, err
	}
	stack := inst.detached
	inst.detached = nil
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[node.ref] = node
		stack = append(stack, node.detached...)
		node.detached = nil
	}
	return ref, nil
}

// CloneFrom deep-copies the subtree rooted at ref out of any Provider into
// a detached instance with fresh identities. Property values are copied
// verbatim, reference values included; the returned mapping from source to
// clone identities lets the caller translate them afterwards.
func CloneFrom(tree Provider, ref Ref) (*Instance, map[Ref]Ref) {
	src := tree.Get(ref)
	if src == nil {
		return nil, nil
	}
	mapping := make(map[Ref]Ref)
	return cloneFromInto(tree, src, mapping), mapping
}

func cloneFromInto(tree Provider, src *Instance, mapping map[Ref]Ref) *Instance {
	dst := NewInstance(src.Class, src.Name)
	mapping[src.ref] = dst.ref
	for name, value := range src.Properties {
		dst.Properties[name] = value
	}
	for name, value := range src.Attributes {
		dst.Attributes[name] = value
	}
	dst.Tags = src.Tags.Clone()
	if src.Source != nil {
		source := *src.Source
		dst.Source = &source
	}
	for _, childRef := range tree.ChildrenOf(src.ref) {
		child := tree.Get(childRef)
		if child == nil {
			continue
		}
		cloned := cloneFromInto(tree, child, mapping)
		cloned.parent = dst.ref
		dst.children = append(dst.children, cloned.ref)
		dst.detached = append(dst.detached, cloned)
		dst.detached = append(dst.detached, cloned.detached...)
		cloned.detached = nil
	}
	return dst
}
