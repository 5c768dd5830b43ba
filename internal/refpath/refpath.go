// Package refpath turns identity references into filesystem-path strings and
// back. Paths are built from filesystem names, never raw instance names, so
// that what round-trips through disk matches the on-disk artifacts.
package refpath

import (
	"strings"

	"github.com/scenekit/scenesync/internal/fsname"
	"github.com/scenekit/scenesync/internal/scene"
)

// RefAttributePrefix marks attributes that hold a serialized reference path
// for a same-named property. "PrimaryPart" is carried as "Ref_PrimaryPart".
const RefAttributePrefix = "Ref_"

// RefAttributeName returns the attribute name carrying the reference path
// for a property.
func RefAttributeName(property string) string {
	return RefAttributePrefix + property
}

// PropertyForRefAttribute reverses RefAttributeName. The second return is
// false when the attribute is not a reference-path attribute.
func PropertyForRefAttribute(attribute string) (string, bool) {
	return strings.CutPrefix(attribute, RefAttributePrefix)
}

// BuildReferencePath returns the absolute slash-separated path of target
// below root, each segment being the target's or ancestor's filesystem name.
// The empty string is returned for root itself; paths for refs outside
// root's tree resolve to "".
func BuildReferencePath(tree scene.Provider, root, target scene.Ref) string {
	var segments []string
	current := target
	for !current.IsNone() && current != root {
		inst := tree.Get(current)
		if inst == nil {
			return ""
		}
		segments = append(segments, fsname.NameFor(tree, current))
		current = inst.Parent()
	}
	if current != root {
		return ""
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// ResolveReferencePath resolves an absolute reference path to an identity.
// It delegates lookup to fsname.InstanceByPath; keeping a single path-walking
// implementation is what makes build and resolve agree.
func ResolveReferencePath(tree scene.Provider, root scene.Ref, refPath string) scene.Ref {
	if refPath == "" {
		return root
	}
	return fsname.InstanceByPath(tree, root, refPath)
}

// ComputeRelative rewrites an absolute target path as a path relative to the
// absolute source path:
//
//	@self           target is the source
//	@self/...       target is a descendant of the source
//	./...           target shares the source's parent
//	../...          chains climb further within the shared subtree
//	@root/...       no common prefix, or the target is an ancestor
func ComputeRelative(sourceAbs, targetAbs string) string {
	if sourceAbs == targetAbs {
		return "@self"
	}
	if rest, ok := strings.CutPrefix(targetAbs, sourceAbs+"/"); ok && sourceAbs != "" {
		return "@self/" + rest
	}

	sourceParts := strings.Split(sourceAbs, "/")
	targetParts := strings.Split(targetAbs, "/")
	common := 0
	for common < len(sourceParts) && common < len(targetParts) && sourceParts[common] == targetParts[common] {
		common++
	}
	if common == 0 || common == len(targetParts) {
		return "@root/" + targetAbs
	}

	ups := len(sourceParts) - common
	remaining := strings.Join(targetParts[common:], "/")
	if ups == 1 {
		return "./" + remaining
	}
	return strings.Repeat("../", ups-1) + remaining
}

// ResolveRelative resolves a relative reference path against the absolute
// path of the instance that carries it, returning the absolute target path.
// Bare paths pass through as already absolute. The second return is false
// when the path climbs above the root.
func ResolveRelative(refPath, sourceAbs string) (string, bool) {
	if rest, ok := strings.CutPrefix(refPath, "@root/"); ok {
		return rest, true
	}
	if refPath == "@root" {
		return "", true
	}
	if refPath == "@self" {
		return sourceAbs, true
	}

	var parts []string
	var rest string
	switch {
	case strings.HasPrefix(refPath, "@self/"):
		parts = strings.Split(sourceAbs, "/")
		rest = refPath[len("@self/"):]
	case strings.HasPrefix(refPath, "./"):
		parts = strings.Split(sourceAbs, "/")
		parts = parts[:len(parts)-1]
		rest = refPath[len("./"):]
	case strings.HasPrefix(refPath, "../"):
		parts = strings.Split(sourceAbs, "/")
		if len(parts) < 2 {
			return "", false
		}
		parts = parts[:len(parts)-2]
		rest = refPath[len("../"):]
	default:
		return refPath, true
	}

	for _, segment := range strings.Split(rest, "/") {
		switch segment {
		case "":
		case "..":
			if len(parts) == 0 {
				return "", false
			}
			parts = parts[:len(parts)-1]
		default:
			parts = append(parts, segment)
		}
	}
	return strings.Join(parts, "/"), true
}
