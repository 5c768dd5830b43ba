package project

import (
	"log/slog"

	"github.com/scenekit/scenesync/internal/refpath"
	"github.com/scenekit/scenesync/internal/scene"
)

// LinkReferences resolves every reference-path attribute in the tree into
// its same-named reference property. An attribute "Ref_PrimaryPart" holding
// the string path of another instance, absolute or in a relative form,
// yields a "PrimaryPart" reference to that instance. Unresolvable paths are
// logged and left alone so a later pass can retry after the target appears.
func LinkReferences(tree *scene.Tree) {
	root := tree.RootRef()
	for _, ref := range tree.Descendants(root) {
		inst := tree.Get(ref)
		if inst == nil || len(inst.Attributes) == 0 {
			continue
		}
		for name, value := range inst.Attributes {
			property, ok := refpath.PropertyForRefAttribute(name)
			if !ok {
				continue
			}
			raw, ok := value.(scene.String)
			if !ok {
				continue
			}

			sourceAbs := refpath.BuildReferencePath(tree, root, ref)
			targetAbs, ok := refpath.ResolveRelative(string(raw), sourceAbs)
			if !ok {
				slog.Warn("reference path climbs above the root", "attribute", name, "path", string(raw))
				continue
			}
			target := refpath.ResolveReferencePath(tree, root, targetAbs)
			if target.IsNone() {
				slog.Warn("reference path does not resolve", "attribute", name, "path", string(raw))
				continue
			}
			inst.SetProperty(property, scene.Reference{Target: target})
		}
	}
}
