package scene

import "github.com/google/uuid"

// Ref is the stable identity of an instance within a Tree. Refs are opaque,
// unique within a tree, and never reused while the tree lives.
type Ref struct {
	id uuid.UUID
}

// RefNone is the zero Ref. It identifies no instance and is used as the nil
// value of reference-typed properties.
var RefNone = Ref{}

// NewRef allocates a fresh identity.
func NewRef() Ref {
	return Ref{id: uuid.New()}
}

func (r Ref) IsNone() bool {
	return r.id == uuid.Nil
}

func (r Ref) String() string {
	if r.IsNone() {
		return "none"
	}
	return r.id.String()
}
