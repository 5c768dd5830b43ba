package fsname

import (
	"strings"

	"github.com/scenekit/scenesync/internal/scene"
)

// NameFor returns the canonical filesystem name for an instance. An
// instigating source wins outright: the artifact name it was loaded from is
// used exactly as stored. Without one, the name derives from the class
// mapping in FormatFor, so the result is stable across runs without being
// persisted.
func NameFor(tree scene.Provider, ref scene.Ref) string {
	inst := tree.Get(ref)
	if inst == nil {
		return ""
	}
	if inst.Source != nil {
		if name := inst.Source.ArtifactName(); name != "" {
			return name
		}
	}
	format := FormatFor(inst, len(tree.ChildrenOf(ref)) > 0)
	if ext := format.Extension(); ext != "" {
		return inst.Name + "." + ext
	}
	return inst.Name
}

// NewArtifactName computes the on-disk name for an instance that has no
// artifact yet. The raw name is slugified when needed, then deduplicated
// against taken (lowercased sibling names). It returns the full artifact
// name, the bare stem to record into taken, and whether the chosen name
// differs from the instance's raw name.
func NewArtifactName(inst *scene.Instance, hasChildren bool, taken map[string]bool) (artifact, stem string, renamed bool) {
	base := inst.Name
	if NeedsSlugify(base) {
		base = Slugify(base)
	}
	stem = Deduplicate(base, taken)
	renamed = stem != inst.Name

	format := FormatFor(inst, hasChildren)
	if ext := format.Extension(); ext != "" {
		return stem + "." + ext, stem, renamed
	}
	return stem, stem, renamed
}

// InstanceByPath resolves a slash-separated filesystem path against the tree,
// starting below root. Each segment first tries an exact match on the
// children's filesystem names, then falls back to a case-insensitive match
// on the bare instance name; the fallback covers instances that never had an
// instigating source, like freshly created container services. The zero Ref
// is returned when any segment fails to resolve.
func InstanceByPath(tree scene.Provider, root scene.Ref, fsPath string) scene.Ref {
	current := root
	for _, segment := range strings.Split(fsPath, "/") {
		if segment == "" {
			continue
		}
		next := childBySegment(tree, current, segment)
		if next.IsNone() {
			return scene.RefNone
		}
		current = next
	}
	return current
}

func childBySegment(tree scene.Provider, parent scene.Ref, segment string) scene.Ref {
	children := tree.ChildrenOf(parent)
	for _, child := range children {
		if NameFor(tree, child) == segment {
			return child
		}
	}
	for _, child := range children {
		inst := tree.Get(child)
		if inst != nil && strings.EqualFold(inst.Name, segment) {
			return child
		}
	}
	return scene.RefNone
}
