package recon

import "github.com/scenekit/scenesync/internal/scene"

type EditKind int

const (
	// EditCreate inserts a detached snapshot subtree under Parent.
	EditCreate EditKind = iota
	// EditUpdate applies property, tag and attribute diffs to Target.
	EditUpdate
	// EditDelete destroys Target and its subtree.
	EditDelete
)

var editKindNames = []string{
	"create",
	"update",
	"delete",
}

func (k EditKind) String() string {
	if int(k) < len(editKindNames) {
		return editKindNames[k]
	}
	return "unknown"
}

// Edit is one tree mutation produced by a reconcile pass.
type Edit struct {
	Kind EditKind

	// Create
	Parent   scene.Ref
	Snapshot *scene.Instance

	// Update and Delete
	Target scene.Ref

	// Update. NewName is set when a reference-pinned match carried a
	// rename; empty means the name is unchanged.
	NewName    string
	Properties []PropertyDiff
	Tags       TagDiff
	Attributes []PropertyDiff
}

// Rename is an artifact rename driven by dedup cleanup. It travels beside
// the tree edits, not through them, because it touches only the filesystem
// projection.
type Rename struct {
	FromPath string
	ToPath   string
}

// EditSet is everything one reconcile pass wants to change.
type EditSet struct {
	Edits   []Edit
	Renames []Rename
}

func (s *EditSet) Empty() bool {
	return len(s.Edits) == 0 && len(s.Renames) == 0
}

// Counts tallies the edit set by kind.
func (s *EditSet) Counts() (creates, updates, deletes int) {
	for _, edit := range s.Edits {
		switch edit.Kind {
		case EditCreate:
			creates++
		case EditUpdate:
			updates++
		case EditDelete:
			deletes++
		}
	}
	return
}
