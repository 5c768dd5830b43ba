package project

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/scenekit/scenesync/internal/fsname"
	"github.com/scenekit/scenesync/internal/scene"
)

// Snapshot walks a workspace directory and builds the instance tree its
// artifacts describe. Directories become container instances, script and
// text files become their classes with the extension mapping inverted, and
// dedup suffixes are stripped from instance names while the artifact name
// is kept on the instance source. Reference-path attributes are resolved
// into reference properties after the whole tree is built.
func (p *Project) Snapshot() (*scene.Tree, error) {
	root := scene.NewInstance(p.RootClass, p.Name)
	root.Source = &scene.Source{Kind: scene.SourceProjectNode, Path: p.Path}
	if err := snapshotDir(root, p.Workspace, ""); err != nil {
		return nil, err
	}
	tree := scene.NewTree(root)
	LinkReferences(tree)
	return tree, nil
}

func snapshotDir(parent *scene.Instance, dir, rel string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read workspace dir %q: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == DefaultFileName {
			continue
		}
		childRel := path.Join(rel, name)

		if entry.IsDir() {
			child := parent.BuildChild("Folder", instanceName(name))
			child.Source = &scene.Source{Kind: scene.SourceFile, Path: childRel}
			if err := snapshotDir(child, filepath.Join(dir, name), childRel); err != nil {
				return err
			}
			continue
		}

		child, err := snapshotFile(filepath.Join(dir, name), name)
		if err != nil {
			return err
		}
		if child == nil {
			continue
		}
		child.Source = &scene.Source{Kind: scene.SourceFile, Path: childRel}
		parent.AdoptChild(child)
	}
	return nil
}

func snapshotFile(fsPath, name string) (*scene.Instance, error) {
	stem, format := splitArtifact(name)
	switch format {
	case fsname.FormatServerScript, fsname.FormatClientScript, fsname.FormatModuleScript:
		data, err := os.ReadFile(fsPath)
		if err != nil {
			return nil, fmt.Errorf("read script %q: %w", fsPath, err)
		}
		inst := scene.NewInstance("Script", instanceName(stem))
		inst.SetProperty("Source", scene.String(data))
		switch format {
		case fsname.FormatServerScript:
			inst.SetProperty(fsname.RunContextProperty, scene.String("Server"))
		case fsname.FormatClientScript:
			inst.SetProperty(fsname.RunContextProperty, scene.String("Client"))
		}
		return inst, nil
	case fsname.FormatText:
		data, err := os.ReadFile(fsPath)
		if err != nil {
			return nil, fmt.Errorf("read text value %q: %w", fsPath, err)
		}
		inst := scene.NewInstance("StringValue", instanceName(stem))
		inst.SetProperty("Value", scene.String(data))
		return inst, nil
	default:
		// Structured documents carry full serialized state; decoding them
		// is out of scope, so they are skipped rather than half-read.
		slog.Debug("skipping unrecognized artifact", "path", fsPath)
		return nil, nil
	}
}

// splitArtifact strips the longest known compound extension and reports the
// format it selects. Unknown extensions map to FormatDocument.
func splitArtifact(name string) (stem string, format fsname.Format) {
	for _, f := range []fsname.Format{
		fsname.FormatServerScript,
		fsname.FormatClientScript,
		fsname.FormatDocument,
		fsname.FormatModuleScript,
		fsname.FormatText,
	} {
		suffix := "." + f.Extension()
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return strings.TrimSuffix(name, suffix), f
		}
	}
	return name, fsname.FormatDocument
}

func instanceName(stem string) string {
	return fsname.StripDedupSuffix(stem)
}
